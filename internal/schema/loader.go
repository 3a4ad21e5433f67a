package schema

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// Schema files come in three accepted shapes, all YAML:
//
//   - explicit flat: one section per attribute with a `type` tag
//     (min_max, bool, dist, list) and the fields that tag requires;
//   - tiered: one section per tier, each containing nested attribute
//     sections in the explicit form;
//   - legacy flat: no `type` tag; a "min-max" string is a numeric range and a
//     sequence is a choice list.
//
// The loader decides per section and rejects files that mix tiers with
// top-level attributes. Validation is eager: every rule must carry its
// required fields at load time, not at generation time.

// ruleSpec is the raw decoded form of an explicit rule section. Pointer
// fields distinguish "absent" from zero values so validation can report
// missing fields precisely.
type ruleSpec struct {
	Type string   `mapstructure:"type"`
	Min  *int64   `mapstructure:"min"`
	Max  *int64   `mapstructure:"max"`
	Mean *float64 `mapstructure:"mean"`
	SD   *float64 `mapstructure:"sd"`
	List []any    `mapstructure:"list"`
}

// Load reads and validates a schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from user config
	if err != nil {
		return nil, &ParseError{Source: path, Msg: "cannot read schema file", Err: err}
	}
	s, err := Parse(data)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Source = path
		}
		return nil, err
	}
	s.Source = path
	return s, nil
}

// Parse validates schema file contents.
func Parse(data []byte) (*Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Msg: "invalid YAML", Err: err}
	}
	if len(doc.Content) == 0 {
		return nil, &ParseError{Msg: "schema file is empty"}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{Msg: "schema root must be a mapping"}
	}

	var (
		flat  []Attribute
		tiers []Tier
	)
	for i := 0; i < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		name := key.Value

		if isTierNode(val) {
			attrs, err := parseTierAttrs(name, val)
			if err != nil {
				return nil, err
			}
			tiers = append(tiers, Tier{Name: name, Attrs: attrs})
			continue
		}

		attr, err := parseAttribute(name, val)
		if err != nil {
			return nil, err
		}
		flat = append(flat, attr)
	}

	switch {
	case len(tiers) > 0 && len(flat) > 0:
		return nil, &ParseError{Msg: "schema mixes tiers with top-level attributes"}
	case len(tiers) > 0:
		return &Schema{Tiers: tiers}, nil
	case len(flat) > 0:
		return &Schema{Tiers: []Tier{{Attrs: flat}}}, nil
	default:
		return nil, &ParseError{Msg: "schema defines no attributes"}
	}
}

// isTierNode reports whether a section is a tier: a mapping without a `type`
// tag whose entries are themselves rule sections.
func isTierNode(n *yaml.Node) bool {
	if n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i < len(n.Content); i += 2 {
		if n.Content[i].Value == "type" || n.Content[i].Value == "lookup" {
			return false
		}
	}
	// Every value must itself look like a rule section.
	for i := 1; i < len(n.Content); i += 2 {
		v := n.Content[i]
		if v.Kind != yaml.MappingNode && v.Kind != yaml.SequenceNode && v.Kind != yaml.ScalarNode {
			return false
		}
	}
	return len(n.Content) > 0
}

func parseTierAttrs(tier string, n *yaml.Node) ([]Attribute, error) {
	var attrs []Attribute
	for i := 0; i < len(n.Content); i += 2 {
		name := n.Content[i].Value
		attr, err := parseAttribute(tier+"."+name, n.Content[i+1])
		if err != nil {
			return nil, err
		}
		attr.Name = name
		attrs = append(attrs, attr)
	}
	if len(attrs) == 0 {
		return nil, &ParseError{Section: tier, Msg: "tier has no attributes"}
	}
	return attrs, nil
}

// parseAttribute parses one attribute section in any of the accepted shapes.
// The section argument is the qualified name used in error messages; the
// returned attribute name is the bare key.
func parseAttribute(section string, n *yaml.Node) (Attribute, error) {
	name := section
	if idx := strings.LastIndexByte(section, '.'); idx >= 0 {
		name = section[idx+1:]
	}
	attr := Attribute{Name: name}

	switch n.Kind {
	case yaml.ScalarNode:
		rule, err := parseLegacyRange(section, n.Value)
		if err != nil {
			return attr, err
		}
		attr.Rule = rule
		return attr, nil

	case yaml.SequenceNode:
		var values []any
		if err := n.Decode(&values); err != nil {
			return attr, &ParseError{Section: section, Msg: "invalid choice list", Err: err}
		}
		if len(values) == 0 {
			return attr, &ParseError{Section: section, Msg: "choice list is empty"}
		}
		attr.Rule = ChoiceRule{Values: values}
		return attr, nil

	case yaml.MappingNode:
		return parseExplicit(section, name, n)

	default:
		return attr, &ParseError{Section: section, Msg: "unrecognized rule form"}
	}
}

// parseLegacyRange parses the legacy "min-max" string encoding.
func parseLegacyRange(section, s string) (Rule, error) {
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return nil, &ParseError{Section: section, Msg: fmt.Sprintf("unrecognized rule value %q (expected \"min-max\")", s)}
	}
	minV, err := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
	if err != nil {
		return nil, &ParseError{Section: section, Msg: fmt.Sprintf("invalid range minimum %q", lo), Err: err}
	}
	maxV, err := strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
	if err != nil {
		return nil, &ParseError{Section: section, Msg: fmt.Sprintf("invalid range maximum %q", hi), Err: err}
	}
	if minV > maxV {
		return nil, &ParseError{Section: section, Msg: fmt.Sprintf("range minimum %d exceeds maximum %d", minV, maxV)}
	}
	return RangeRule{Min: minV, Max: maxV}, nil
}

// parseExplicit parses the explicit-tag form of a rule section.
func parseExplicit(section, name string, n *yaml.Node) (Attribute, error) {
	attr := Attribute{Name: name}

	// Pull the lookup enumeration out first: yaml.Node keeps the document
	// order mapstructure would lose.
	fields := make(map[string]any)
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Value == "lookup" {
			lookup, err := parseLookup(section, val)
			if err != nil {
				return attr, err
			}
			attr.Lookup = lookup
			continue
		}
		var v any
		if err := val.Decode(&v); err != nil {
			return attr, &ParseError{Section: section, Msg: fmt.Sprintf("invalid value for %q", key.Value), Err: err}
		}
		fields[key.Value] = v
	}

	var spec ruleSpec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &spec,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return attr, fmt.Errorf("building rule decoder: %w", err)
	}
	if err := dec.Decode(fields); err != nil {
		return attr, &ParseError{Section: section, Msg: "invalid rule fields", Err: err}
	}

	rule, err := spec.toRule(section)
	if err != nil {
		return attr, err
	}
	attr.Rule = rule
	return attr, nil
}

func parseLookup(section string, n *yaml.Node) ([]LookupEntry, error) {
	if n.Kind != yaml.MappingNode {
		return nil, &ParseError{Section: section, Msg: "lookup must be a code -> name mapping"}
	}
	var entries []LookupEntry
	for i := 0; i < len(n.Content); i += 2 {
		entries = append(entries, LookupEntry{
			Code: n.Content[i].Value,
			Name: n.Content[i+1].Value,
		})
	}
	if len(entries) == 0 {
		return nil, &ParseError{Section: section, Msg: "lookup mapping is empty"}
	}
	return entries, nil
}

// toRule validates the decoded fields against the rule tag and builds the
// typed variant.
func (r *ruleSpec) toRule(section string) (Rule, error) {
	switch r.Type {
	case "min_max":
		if r.Min == nil {
			return nil, &ParseError{Section: section, Msg: "min_max rule is missing required field: min"}
		}
		if r.Max == nil {
			return nil, &ParseError{Section: section, Msg: "min_max rule is missing required field: max"}
		}
		if *r.Min > *r.Max {
			return nil, &ParseError{Section: section, Msg: fmt.Sprintf("range minimum %d exceeds maximum %d", *r.Min, *r.Max)}
		}
		return RangeRule{Min: *r.Min, Max: *r.Max}, nil

	case "bool":
		return BoolRule{}, nil

	case "dist":
		if r.Mean == nil {
			return nil, &ParseError{Section: section, Msg: "dist rule is missing required field: mean"}
		}
		if r.SD == nil {
			return nil, &ParseError{Section: section, Msg: "dist rule is missing required field: sd"}
		}
		return NormalRule{Mean: *r.Mean, SD: *r.SD}, nil

	case "list":
		if len(r.List) == 0 {
			return nil, &ParseError{Section: section, Msg: "list rule is missing required field: list"}
		}
		return ChoiceRule{Values: r.List}, nil

	case "":
		return nil, &ParseError{Section: section, Msg: "rule section is missing required field: type"}

	default:
		return nil, &ParseError{Section: section, Msg: fmt.Sprintf("unrecognized rule type %q (expected min_max, bool, dist, or list)", r.Type)}
	}
}
