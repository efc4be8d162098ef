package rules

import (
	"fmt"
	"strings"

	"goclean/domain/core"
)

// DefaultRangeExclusions are per-100g columns whose unit is not grams, so the
// [0, 100] domain does not apply to them.
var DefaultRangeExclusions = []string{
	"energy_100g",
	"energy-kj_100g",
	"energy-kcal_100g",
	"energy-from-fat_100g",
	"ph_100g",
}

// RangeSpec selects columns by name suffix and gives their valid domain.
type RangeSpec struct {
	Suffix  string   `yaml:"suffix" json:"suffix"`
	Min     float64  `yaml:"min" json:"min"`
	Max     float64  `yaml:"max" json:"max"`
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// DefaultRangeSpec is the grams-per-100g domain.
func DefaultRangeSpec() RangeSpec {
	return RangeSpec{
		Suffix:  "_100g",
		Min:     0,
		Max:     100,
		Exclude: append([]string(nil), DefaultRangeExclusions...),
	}
}

// Validate checks the bounds.
func (s RangeSpec) Validate() error {
	if s.Min > s.Max {
		return core.NewInvalidArgumentError("range", fmt.Sprintf("min %g exceeds max %g", s.Min, s.Max))
	}
	return nil
}

// Matches reports whether the named column is range-checked.
func (s RangeSpec) Matches(name string) bool {
	if !strings.HasSuffix(name, s.Suffix) {
		return false
	}
	for _, ex := range s.Exclude {
		if ex == name {
			return false
		}
	}
	return true
}

// Outside reports whether v lies outside [Min, Max]. NaN is never outside.
func (s RangeSpec) Outside(v float64) bool {
	return v < s.Min || v > s.Max
}
