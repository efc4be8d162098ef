package rules

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"goclean/domain/core"
)

// Relation is the comparison a rule asserts for each row.
type Relation string

const (
	// LessOrEqualColumn asserts column <= other column (a part never exceeds
	// its total).
	LessOrEqualColumn Relation = "lte_column"
	// LessOrEqual asserts column <= Max (a physical ceiling).
	LessOrEqual Relation = "lte"
	// Between asserts Min <= column <= Max (a bounded quantity).
	Between Relation = "between"
)

// Action is what happens to a row that violates a rule.
type Action string

const (
	ActionDropRow Action = "drop_row"
)

// Rule is one named row-level assertion over a column, optionally relative
// to a second column.
type Rule struct {
	Name     string   `yaml:"name" json:"name" validate:"required"`
	Column   string   `yaml:"column" json:"column" validate:"required"`
	Relation Relation `yaml:"relation" json:"relation" validate:"oneof=lte_column lte between"`
	Other    string   `yaml:"other,omitempty" json:"other,omitempty" validate:"required_if=Relation lte_column"`
	Min      *float64 `yaml:"min,omitempty" json:"min,omitempty" validate:"required_if=Relation between"`
	Max      *float64 `yaml:"max,omitempty" json:"max,omitempty" validate:"required_if=Relation lte,required_if=Relation between"`
	Action   Action   `yaml:"action,omitempty" json:"action,omitempty" validate:"omitempty,oneof=drop_row"`
}

// Columns returns the columns the rule reads.
func (r Rule) Columns() []string {
	if r.Relation == LessOrEqualColumn {
		return []string{r.Column, r.Other}
	}
	return []string{r.Column}
}

// Violated reports whether a row fails the rule. other is only read for
// LessOrEqualColumn rules. A missing (NaN) operand never violates a rule.
func (r Rule) Violated(value, other float64) bool {
	if math.IsNaN(value) {
		return false
	}
	switch r.Relation {
	case LessOrEqualColumn:
		return !math.IsNaN(other) && value > other
	case LessOrEqual:
		return value > *r.Max
	case Between:
		return value < *r.Min || value > *r.Max
	}
	return false
}

// String describes the assertion, e.g. "saturated-fat_100g <= fat_100g".
func (r Rule) String() string {
	switch r.Relation {
	case LessOrEqualColumn:
		return fmt.Sprintf("%s <= %s", r.Column, r.Other)
	case LessOrEqual:
		return fmt.Sprintf("%s <= %g", r.Column, *r.Max)
	case Between:
		return fmt.Sprintf("%g <= %s <= %g", *r.Min, r.Column, *r.Max)
	}
	return r.Name
}

var validate = validator.New()

// Validate checks the rule descriptor.
func (r Rule) Validate() error {
	if err := validate.Struct(r); err != nil {
		return core.NewInvalidArgumentError("rule "+r.Name, err.Error())
	}
	if r.Relation == Between && *r.Min > *r.Max {
		return core.NewInvalidArgumentError("rule "+r.Name, fmt.Sprintf("min %g exceeds max %g", *r.Min, *r.Max))
	}
	return nil
}

// RuleSet is an ordered list of rules; rules are evaluated in order.
type RuleSet []Rule

// Validate checks every rule and the uniqueness of rule names.
func (rs RuleSet) Validate() error {
	seen := make(map[string]struct{}, len(rs))
	for _, r := range rs {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, dup := seen[r.Name]; dup {
			return core.NewInvalidArgumentError("rules", fmt.Sprintf("duplicate rule name %q", r.Name))
		}
		seen[r.Name] = struct{}{}
	}
	return nil
}

// Columns returns every column read by the rule set, in first-use order.
func (rs RuleSet) Columns() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range rs {
		for _, c := range r.Columns() {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				out = append(out, c)
			}
		}
	}
	return out
}

// Names returns the rule names in order.
func (rs RuleSet) Names() []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name
	}
	return names
}

// Only returns the rules with the given names, keeping rule-set order.
func (rs RuleSet) Only(names ...string) (RuleSet, error) {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	var out RuleSet
	for _, r := range rs {
		if _, ok := want[r.Name]; ok {
			out = append(out, r)
			delete(want, r.Name)
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for n := range want {
			missing = append(missing, n)
		}
		return nil, core.NewInvalidArgumentError("rules", "unknown rule names: "+strings.Join(missing, ", "))
	}
	return out, nil
}

type ruleFile struct {
	Rules RuleSet `yaml:"rules"`
}

// LoadRuleSet parses a YAML document of the form
//
//	rules:
//	  - name: saturated-fat-within-fat
//	    column: saturated-fat_100g
//	    relation: lte_column
//	    other: fat_100g
//
// and validates every rule.
func LoadRuleSet(r io.Reader) (RuleSet, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file ruleFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, core.NewInvalidArgumentError("rules", fmt.Sprintf("malformed rule document: %v", err))
	}
	if err := file.Rules.Validate(); err != nil {
		return nil, err
	}
	return file.Rules, nil
}

func bound(v float64) *float64 { return &v }

// DefaultConsistencyRules returns the nutrition-table assertions: component
// nutrients never exceed their totals, energies stay under their physical
// ceilings and pH stays within [0, 14].
func DefaultConsistencyRules() RuleSet {
	return RuleSet{
		{Name: "saturated-fat-within-fat", Column: "saturated-fat_100g", Relation: LessOrEqualColumn, Other: "fat_100g", Action: ActionDropRow},
		{Name: "sodium-within-salt", Column: "sodium_100g", Relation: LessOrEqualColumn, Other: "salt_100g", Action: ActionDropRow},
		{Name: "added-sugars-within-sugars", Column: "added-sugars_100g", Relation: LessOrEqualColumn, Other: "sugars_100g", Action: ActionDropRow},
		{Name: "sugars-within-carbohydrates", Column: "sugars_100g", Relation: LessOrEqualColumn, Other: "carbohydrates_100g", Action: ActionDropRow},
		{Name: "energy-ceiling", Column: "energy_100g", Relation: LessOrEqual, Max: bound(3700), Action: ActionDropRow},
		{Name: "energy-from-fat-ceiling", Column: "energy-from-fat_100g", Relation: LessOrEqual, Max: bound(3700), Action: ActionDropRow},
		{Name: "energy-kcal-ceiling", Column: "energy-kcal_100g", Relation: LessOrEqual, Max: bound(900), Action: ActionDropRow},
		{Name: "ph-range", Column: "ph_100g", Relation: Between, Min: bound(0), Max: bound(14), Action: ActionDropRow},
	}
}
