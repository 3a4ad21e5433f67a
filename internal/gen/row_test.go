package gen

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/housegen/internal/schema"
)

func TestRangeRuleStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	attr := schema.Attribute{Name: "bedrooms", Rule: schema.RangeRule{Min: 1, Max: 5}}

	for i := 0; i < 10000; i++ {
		v, err := generateValue(attr, rng)
		require.NoError(t, err)
		n, ok := v.(int64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, n, int64(1))
		assert.LessOrEqual(t, n, int64(5))
	}
}

func TestRangeRuleRoundsLargeDraws(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	attr := schema.Attribute{Name: "price", Rule: schema.RangeRule{Min: 150000, Max: 900000}}

	for i := 0; i < 10000; i++ {
		v, err := generateValue(attr, rng)
		require.NoError(t, err)
		n := v.(int64)
		assert.Zero(t, n%1000, "draws above 100000 must land on multiples of 1000, got %d", n)
	}
}

func TestRangeRuleRoundingMayCrossMax(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	// Max sits just below a thousand boundary, so draws in the top half of
	// the last thousand round past it.
	attr := schema.Attribute{Name: "price", Rule: schema.RangeRule{Min: 249000, Max: 249700}}

	crossed := false
	for i := 0; i < 1000; i++ {
		v, err := generateValue(attr, rng)
		require.NoError(t, err)
		n := v.(int64)
		assert.LessOrEqual(t, n, int64(250000), "rounding overshoots by less than 500")
		if n > 249700 {
			crossed = true
		}
	}
	assert.True(t, crossed)
}

func TestRangeRuleSmallDrawsNotRounded(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	attr := schema.Attribute{Name: "size", Rule: schema.RangeRule{Min: 50, Max: 350}}

	sawOffThousand := false
	for i := 0; i < 1000; i++ {
		v, err := generateValue(attr, rng)
		require.NoError(t, err)
		if v.(int64)%1000 != 0 {
			sawOffThousand = true
		}
	}
	assert.True(t, sawOffThousand, "draws at or below 100000 must stay exact")
}

func TestChoiceRuleMembership(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	values := []any{"gas", "electric", "heat_pump"}
	attr := schema.Attribute{Name: "heating", Rule: schema.ChoiceRule{Values: values}}

	seen := make(map[any]int)
	for i := 0; i < 3000; i++ {
		v, err := generateValue(attr, rng)
		require.NoError(t, err)
		assert.Contains(t, values, v)
		seen[v]++
	}
	// Uniform choice over 3 values: every member appears.
	assert.Len(t, seen, 3)
}

func TestBoolRuleBothSides(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	attr := schema.Attribute{Name: "garage", Rule: schema.BoolRule{}}

	trues := 0
	const n = 10000
	for i := 0; i < n; i++ {
		v, err := generateValue(attr, rng)
		require.NoError(t, err)
		if v.(bool) {
			trues++
		}
	}
	assert.InDelta(t, n/2, trues, n/20, "bool draws should be roughly balanced")
}

func TestNormalRuleDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	const (
		mean = 450000.0
		sd   = 150000.0
		n    = 100000
	)
	attr := schema.Attribute{Name: "valuation", Rule: schema.NormalRule{Mean: mean, SD: sd}}

	var sum, sumSq float64
	for i := 0; i < n; i++ {
		v, err := generateValue(attr, rng)
		require.NoError(t, err)
		f := float64(v.(int64))
		assert.Zero(t, v.(int64)%1000, "normal draws round to the nearest 1000")
		sum += f
		sumSq += f * f
	}

	gotMean := sum / n
	gotSD := math.Sqrt(sumSq/n - gotMean*gotMean)
	assert.InDelta(t, mean, gotMean, sd*0.02, "sample mean should track the configured mean")
	assert.InDelta(t, sd, gotSD, sd*0.02, "sample sd should track the configured sd")
}

func TestNormalRuleAllowsNegatives(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	attr := schema.Attribute{Name: "delta", Rule: schema.NormalRule{Mean: 0, SD: 50000}}

	sawNegative := false
	for i := 0; i < 1000; i++ {
		v, err := generateValue(attr, rng)
		require.NoError(t, err)
		if v.(int64) < 0 {
			sawNegative = true
			break
		}
	}
	assert.True(t, sawNegative, "normal draws are not clamped at zero")
}

func TestGenerateRowCoversAllAttrs(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	attrs := []schema.Attribute{
		{Name: "bedrooms", Rule: schema.RangeRule{Min: 1, Max: 5}},
		{Name: "garage", Rule: schema.BoolRule{}},
		{Name: "heating", Rule: schema.ChoiceRule{Values: []any{"gas"}}},
	}

	row, err := GenerateRow(attrs, rng)
	require.NoError(t, err)
	assert.Len(t, row, 3)
	assert.Contains(t, row, "bedrooms")
	assert.Contains(t, row, "garage")
	assert.Equal(t, "gas", row["heating"])
}

func TestGenerateRowUnknownRule(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	attrs := []schema.Attribute{{Name: "broken", Rule: nil}}

	_, err := GenerateRow(attrs, rng)
	require.Error(t, err)

	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "broken", gerr.Attr)
}

func TestRoundToThousand(t *testing.T) {
	tests := []struct {
		in   int64
		want int64
	}{
		{100499, 100000},
		{100500, 101000},
		{101000, 101000},
		{999999, 1000000},
		{250499, 250000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roundToThousand(tt.in), "roundToThousand(%d)", tt.in)
	}
}
