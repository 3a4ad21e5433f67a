// Package schema defines the declarative dataset schema: an ordered set of
// attributes, each carrying a generation rule, optionally grouped into tiers.
//
// A schema is loaded once, validated eagerly, and treated as immutable for the
// duration of a generation run.
package schema

import (
	"fmt"
)

// Rule is the generation policy for one dataset column. It is a sealed tagged
// variant: RangeRule, ChoiceRule, BoolRule, or NormalRule.
type Rule interface {
	// Kind returns the rule tag as it appears in schema files.
	Kind() string

	sealed()
}

// RangeRule draws a uniform integer from [Min, Max] inclusive.
// Draws above 100000 are rounded to the nearest multiple of 1000 by the
// generator; this mirrors realistic price quoting and applies only to this
// rule form.
type RangeRule struct {
	Min int64
	Max int64
}

// Kind returns the rule tag.
func (RangeRule) Kind() string { return "min_max" }

func (RangeRule) sealed() {}

// ChoiceRule draws a uniform member of Values. Values keep the scalar types
// they had in the schema file (string, int, bool).
type ChoiceRule struct {
	Values []any
}

// Kind returns the rule tag.
func (ChoiceRule) Kind() string { return "list" }

func (ChoiceRule) sealed() {}

// BoolRule draws a uniform true/false. It is equivalent to a ChoiceRule over
// {true, false} but keeps its own tag so schema files read naturally.
type BoolRule struct{}

// Kind returns the rule tag.
func (BoolRule) Kind() string { return "bool" }

func (BoolRule) sealed() {}

// NormalRule draws one sample from a normal distribution, rounds it to the
// nearest multiple of 1000, and casts to integer. The result is unbounded and
// can be negative; the generator does not clamp.
type NormalRule struct {
	Mean float64
	SD   float64
}

// Kind returns the rule tag.
func (NormalRule) Kind() string { return "dist" }

func (NormalRule) sealed() {}

// LookupEntry is one code -> display-name pair of a lookup enumeration.
type LookupEntry struct {
	Code string
	Name string
}

// Attribute is one dataset column: a name, its generation rule, and an
// optional lookup enumeration used by the database loader to build a related
// lookup table (the generated column then holds codes, related by foreign
// key).
type Attribute struct {
	Name   string
	Rule   Rule
	Lookup []LookupEntry
}

// Tier is a named rule-set variant. In a tiered schema exactly one tier is
// chosen uniformly at random per generated row. A flat schema is represented
// as a single unnamed tier.
type Tier struct {
	Name  string
	Attrs []Attribute
}

// Attr returns the attribute with the given name, or nil.
func (t *Tier) Attr(name string) *Attribute {
	for i := range t.Attrs {
		if t.Attrs[i].Name == name {
			return &t.Attrs[i]
		}
	}
	return nil
}

// Schema is a validated, ordered dataset schema.
type Schema struct {
	// Source is the file the schema was loaded from (empty for in-memory
	// schemas). Informational only.
	Source string

	Tiers []Tier
}

// Tiered reports whether the schema has named tiers.
func (s *Schema) Tiered() bool {
	return len(s.Tiers) != 1 || s.Tiers[0].Name != ""
}

// Columns returns the union of all tier attribute names in first-seen order.
// For a flat schema this is simply the attribute order of the file.
func (s *Schema) Columns() []string {
	var cols []string
	seen := make(map[string]bool)
	for _, tier := range s.Tiers {
		for _, attr := range tier.Attrs {
			if !seen[attr.Name] {
				seen[attr.Name] = true
				cols = append(cols, attr.Name)
			}
		}
	}
	return cols
}

// RuleFor returns the generation rule of the named attribute, scanning tiers
// in order, or nil when no tier defines it. Used by the database loader to
// pick column types.
func (s *Schema) RuleFor(name string) Rule {
	for i := range s.Tiers {
		if attr := s.Tiers[i].Attr(name); attr != nil {
			return attr.Rule
		}
	}
	return nil
}

// Lookups returns every attribute carrying a lookup enumeration, across all
// tiers, keyed by attribute name. Last definition wins if tiers repeat a name.
func (s *Schema) Lookups() map[string][]LookupEntry {
	lookups := make(map[string][]LookupEntry)
	for _, tier := range s.Tiers {
		for _, attr := range tier.Attrs {
			if len(attr.Lookup) > 0 {
				lookups[attr.Name] = attr.Lookup
			}
		}
	}
	return lookups
}

// ParseError reports a malformed or incomplete schema. It is fatal: loading
// aborts before any generation happens.
type ParseError struct {
	Source  string // file path, if known
	Section string // attribute or tier the error was found in
	Msg     string
	Err     error // underlying error, if any
}

func (e *ParseError) Error() string {
	where := e.Source
	if where == "" {
		where = "schema"
	}
	if e.Section != "" {
		where += ": " + e.Section
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", where, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", where, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }
