// Package gen produces synthetic datasets from a validated schema.
//
// Row generation is driven by an explicit randomness source so runs are
// reproducible: the same schema, row count, and seed always produce the same
// dataset.
package gen

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/leapstack-labs/housegen/internal/schema"
)

// Row maps attribute name to a generated scalar value (int64, bool, or
// string; choice rules may also carry float64 from the schema file).
type Row map[string]any

// priceRoundThreshold is the draw above which range values are rounded to the
// nearest multiple of 1000. Listings above this are quoted in round figures;
// draws at or below it are left exact. The rounding applies to range rules
// only.
const priceRoundThreshold = 100000

// GenerateRow produces exactly one row for a rule-set, drawing one value per
// attribute from rng. For tiered schemas callers pick the tier first; see
// Builder.
//
// A rule tag unknown to the generator cannot occur for a schema that passed
// validation; such a rule returns a *GenerationError.
func GenerateRow(attrs []schema.Attribute, rng *rand.Rand) (Row, error) {
	row := make(Row, len(attrs))
	for _, attr := range attrs {
		v, err := generateValue(attr, rng)
		if err != nil {
			return nil, err
		}
		row[attr.Name] = v
	}
	return row, nil
}

func generateValue(attr schema.Attribute, rng *rand.Rand) (any, error) {
	switch rule := attr.Rule.(type) {
	case schema.RangeRule:
		v := rule.Min + rng.Int63n(rule.Max-rule.Min+1)
		if v > priceRoundThreshold {
			v = roundToThousand(v)
		}
		return v, nil

	case schema.ChoiceRule:
		return rule.Values[rng.Intn(len(rule.Values))], nil

	case schema.BoolRule:
		return rng.Intn(2) == 1, nil

	case schema.NormalRule:
		v := rule.Mean + rule.SD*rng.NormFloat64()
		// No clamping: negative draws pass through.
		return int64(math.Round(v/1000) * 1000), nil

	default:
		return nil, &GenerationError{Attr: attr.Name, Rule: fmt.Sprintf("%T", attr.Rule)}
	}
}

// roundToThousand rounds a positive integer to the nearest multiple of 1000,
// halves up.
func roundToThousand(v int64) int64 {
	return (v + 500) / 1000 * 1000
}

// GenerationError reports a rule that reached the generator without a known
// tag. Unreachable for schemas that passed load-time validation.
type GenerationError struct {
	Attr string
	Rule string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("attribute %q: no generator for rule %s", e.Attr, e.Rule)
}
