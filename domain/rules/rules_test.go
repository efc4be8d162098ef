package rules

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goclean/domain/core"
)

func ruleNamed(t *testing.T, name string) Rule {
	t.Helper()
	rs, err := DefaultConsistencyRules().Only(name)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	return rs[0]
}

func TestDefaultRulesAreValid(t *testing.T) {
	rs := DefaultConsistencyRules()
	require.NoError(t, rs.Validate())
	assert.Len(t, rs, 8)
	assert.Contains(t, rs.Columns(), "carbohydrates_100g")
}

// Each default rule is evaluated in isolation.
func TestDefaultRuleSemantics(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		rule     string
		value    float64
		other    float64
		violated bool
	}{
		{"saturated-fat-within-fat", 10, 5, true},
		{"saturated-fat-within-fat", 3, 5, false},
		{"saturated-fat-within-fat", 5, 5, false},
		{"saturated-fat-within-fat", nan, 5, false},
		{"saturated-fat-within-fat", 10, nan, false},
		{"sodium-within-salt", 2, 1, true},
		{"added-sugars-within-sugars", 4, 3, true},
		{"sugars-within-carbohydrates", 30, 40, false},
		{"energy-ceiling", 4000, 0, true},
		{"energy-ceiling", 3700, 0, false},
		{"energy-from-fat-ceiling", 3701, 0, true},
		{"energy-kcal-ceiling", 901, 0, true},
		{"energy-kcal-ceiling", 900, 0, false},
		{"ph-range", -0.1, 0, true},
		{"ph-range", 14.5, 0, true},
		{"ph-range", 7, 0, false},
		{"ph-range", nan, 0, false},
	}
	for _, tt := range tests {
		r := ruleNamed(t, tt.rule)
		assert.Equal(t, tt.violated, r.Violated(tt.value, tt.other), "%s(%v, %v)", r, tt.value, tt.other)
	}
}

func TestRuleValidation(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
	}{
		{"missing name", Rule{Column: "a", Relation: LessOrEqual, Max: bound(1)}},
		{"unknown relation", Rule{Name: "r", Column: "a", Relation: "gt"}},
		{"column relation without other", Rule{Name: "r", Column: "a", Relation: LessOrEqualColumn}},
		{"ceiling without max", Rule{Name: "r", Column: "a", Relation: LessOrEqual}},
		{"between without min", Rule{Name: "r", Column: "a", Relation: Between, Max: bound(1)}},
		{"inverted bounds", Rule{Name: "r", Column: "a", Relation: Between, Min: bound(2), Max: bound(1)}},
		{"unknown action", Rule{Name: "r", Column: "a", Relation: LessOrEqual, Max: bound(1), Action: "clip"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			require.Error(t, err)
			assert.True(t, core.IsInvalidArgument(err))
		})
	}
}

func TestLoadRuleSet(t *testing.T) {
	doc := `
rules:
  - name: fiber-within-carbohydrates
    column: fiber_100g
    relation: lte_column
    other: carbohydrates_100g
  - name: alcohol-range
    column: alcohol_100g
    relation: between
    min: 0
    max: 100
`
	rs, err := LoadRuleSet(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, []string{"fiber-within-carbohydrates", "alcohol-range"}, rs.Names())
	assert.Equal(t, []string{"fiber_100g", "carbohydrates_100g", "alcohol_100g"}, rs.Columns())
	assert.True(t, rs[1].Violated(101, 0))
}

func TestLoadRuleSetRejectsBadDocuments(t *testing.T) {
	tests := map[string]string{
		"unknown field":  "rules:\n  - name: a\n    column: b\n    relation: lte\n    max: 1\n    severity: high\n",
		"invalid rule":   "rules:\n  - name: a\n    column: b\n    relation: lte\n",
		"duplicate name": "rules:\n  - {name: a, column: b, relation: lte, max: 1}\n  - {name: a, column: c, relation: lte, max: 1}\n",
		"not yaml":       "rules: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadRuleSet(strings.NewReader(doc))
			require.Error(t, err)
			assert.True(t, core.IsInvalidArgument(err))
		})
	}
}

func TestOnlyRejectsUnknownNames(t *testing.T) {
	_, err := DefaultConsistencyRules().Only("energy-ceiling", "nope")
	assert.True(t, core.IsInvalidArgument(err))
}

func TestRangeSpec(t *testing.T) {
	spec := DefaultRangeSpec()
	require.NoError(t, spec.Validate())

	assert.True(t, spec.Matches("fat_100g"))
	assert.False(t, spec.Matches("energy_100g"))
	assert.False(t, spec.Matches("product_name"))

	assert.True(t, spec.Outside(-1))
	assert.True(t, spec.Outside(100.5))
	assert.False(t, spec.Outside(100))
	assert.False(t, spec.Outside(math.NaN()))

	assert.Error(t, RangeSpec{Min: 5, Max: 1}.Validate())
}
