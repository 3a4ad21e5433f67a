package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExplicitFlat(t *testing.T) {
	data := []byte(`price:
  type: min_max
  min: 50000
  max: 800000
valuation:
  type: dist
  mean: 450000
  sd: 150000
garage:
  type: bool
heating:
  type: list
  list: [gas, electric]
  lookup:
    gas: Gas boiler
    electric: Electric radiators
`)

	s, err := Parse(data)
	require.NoError(t, err)
	assert.False(t, s.Tiered())
	assert.Equal(t, []string{"price", "valuation", "garage", "heating"}, s.Columns())

	attrs := s.Tiers[0].Attrs
	require.Len(t, attrs, 4)

	assert.Equal(t, RangeRule{Min: 50000, Max: 800000}, attrs[0].Rule)
	assert.Equal(t, NormalRule{Mean: 450000, SD: 150000}, attrs[1].Rule)
	assert.Equal(t, BoolRule{}, attrs[2].Rule)

	choice, ok := attrs[3].Rule.(ChoiceRule)
	require.True(t, ok)
	assert.Equal(t, []any{"gas", "electric"}, choice.Values)
	assert.Equal(t, []LookupEntry{
		{Code: "gas", Name: "Gas boiler"},
		{Code: "electric", Name: "Electric radiators"},
	}, attrs[3].Lookup)
}

func TestParseLegacyFlat(t *testing.T) {
	data := []byte(`price: 60000-2500000
bedrooms: 1-6
heating: [gas, electric, heat_pump]
`)

	s, err := Parse(data)
	require.NoError(t, err)
	assert.False(t, s.Tiered())

	attrs := s.Tiers[0].Attrs
	require.Len(t, attrs, 3)
	assert.Equal(t, RangeRule{Min: 60000, Max: 2500000}, attrs[0].Rule)
	assert.Equal(t, RangeRule{Min: 1, Max: 6}, attrs[1].Rule)
	assert.Equal(t, ChoiceRule{Values: []any{"gas", "electric", "heat_pump"}}, attrs[2].Rule)
}

func TestParseTiered(t *testing.T) {
	data := []byte(`starter:
  price:
    type: min_max
    min: 60000
    max: 250000
  garage:
    type: bool
luxury:
  price:
    type: dist
    mean: 1500000
    sd: 400000
  pool:
    type: bool
`)

	s, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, s.Tiered())
	require.Len(t, s.Tiers, 2)
	assert.Equal(t, "starter", s.Tiers[0].Name)
	assert.Equal(t, "luxury", s.Tiers[1].Name)

	// Column order is the first-seen union across tiers.
	assert.Equal(t, []string{"price", "garage", "pool"}, s.Columns())

	// RuleFor scans tiers in order.
	assert.Equal(t, RangeRule{Min: 60000, Max: 250000}, s.RuleFor("price"))
	assert.Equal(t, BoolRule{}, s.RuleFor("pool"))
	assert.Nil(t, s.RuleFor("missing"))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		errSubstr string
	}{
		{"empty file", "", "empty"},
		{"root not mapping", "- a\n- b\n", "must be a mapping"},
		{"missing min", "price:\n  type: min_max\n  max: 10\n", "missing required field: min"},
		{"missing max", "price:\n  type: min_max\n  min: 10\n", "missing required field: max"},
		{"missing mean", "price:\n  type: dist\n  sd: 10\n", "missing required field: mean"},
		{"missing sd", "price:\n  type: dist\n  mean: 10\n", "missing required field: sd"},
		{"missing list", "heating:\n  type: list\n", "missing required field: list"},
		{"unknown type", "price:\n  type: gaussian\n", `unrecognized rule type "gaussian"`},
		{"min above max", "price:\n  type: min_max\n  min: 10\n  max: 5\n", "exceeds maximum"},
		{"legacy min above max", "price: 10-5\n", "exceeds maximum"},
		{"legacy not a range", "price: cheap\n", "unrecognized rule value"},
		{"empty choice list", "heating: []\n", "choice list is empty"},
		{"mixed tiers and attributes", "starter:\n  price:\n    type: bool\nprice: 1-5\n", "mixes tiers"},
		{"empty lookup", "heating:\n  type: list\n  list: [gas]\n  lookup: {}\n", "lookup mapping is empty"},
		{"unknown rule field", "price:\n  type: min_max\n  min: 1\n  max: 5\n  step: 2\n", "invalid rule fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
		})
	}
}

func TestParseErrorNamesSection(t *testing.T) {
	_, err := Parse([]byte("starter:\n  price:\n    type: min_max\n    min: 9\n    max: 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starter.price")
}

func TestLoadSetsSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bedrooms: 1-5\n"), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Source)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Source, "nope.yaml")
}

func TestLookupsAcrossTiers(t *testing.T) {
	data := []byte(`a:
  heating:
    type: list
    list: [gas]
    lookup:
      gas: Gas boiler
b:
  cooling:
    type: list
    list: [ac]
    lookup:
      ac: Air conditioning
`)

	s, err := Parse(data)
	require.NoError(t, err)

	lookups := s.Lookups()
	assert.Len(t, lookups, 2)
	assert.Equal(t, []LookupEntry{{Code: "gas", Name: "Gas boiler"}}, lookups["heating"])
	assert.Equal(t, []LookupEntry{{Code: "ac", Name: "Air conditioning"}}, lookups["cooling"])
}
