// Package selection picks columns by semantic type and missing rate.
package selection

import (
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"goclean/domain/core"
	"goclean/domain/table"
	"goclean/internal/config"
	"goclean/internal/logging"
)

// Type is the semantic family of columns to select.
type Type string

const (
	TypeNumber      Type = "number"
	TypeOrdinal     Type = "ordinal"
	TypeNonOrdinal  Type = "non-ordinal"
	TypeCategorical Type = "categorical"
)

// Options configures Filter.
type Options struct {
	Type Type `validate:"oneof=number ordinal non-ordinal categorical"`
	// CategoryCount caps the distinct levels of a non-ordinal column.
	CategoryCount int `validate:"gt=0"`
	// NaNPercent is the highest missing percentage a selected column may have.
	NaNPercent float64 `validate:"gte=0,lte=100"`
	// OrdinalNames lists the ordinal columns. nil selects nothing.
	OrdinalNames []string

	Logger zerolog.Logger `validate:"-"`
}

// DefaultOptions selects numeric columns without missing values.
func DefaultOptions() Options {
	return Options{
		Type:          TypeNumber,
		CategoryCount: 100,
		NaNPercent:    0,
		OrdinalNames:  []string{"ecoscore_grade", "nutriscore_grade"},
		Logger:        zerolog.Nop(),
	}
}

// OptionsFromConfig returns DefaultOptions with the configured thresholds.
func OptionsFromConfig(cfg config.FilterConfig) Options {
	opts := DefaultOptions()
	opts.CategoryCount = cfg.CategoryCount
	opts.NaNPercent = cfg.NaNPercent
	return opts
}

var validate = validator.New()

// Filter returns a new table holding the columns of the requested type whose
// missing percentage does not exceed NaNPercent, in table order (ordinal
// columns in OrdinalNames order).
func Filter(t *table.Table, opts Options) (*table.Table, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, core.NewInvalidArgumentError("selection", err.Error())
	}
	logger := logging.Component(opts.Logger, "column_filter")

	candidates, err := candidates(t, opts)
	if err != nil {
		return nil, err
	}

	var keep []string
	for _, c := range candidates {
		pct := c.MissingRate() * 100
		if pct > opts.NaNPercent {
			logger.Debug().Str("column", c.Name()).Float64("missing_pct", pct).Msg("too many missing values")
			continue
		}
		keep = append(keep, c.Name())
	}

	logger.Info().
		Str("type", string(opts.Type)).
		Int("candidates", len(candidates)).
		Int("selected", len(keep)).
		Msg("selected columns")
	return t.Select(keep...)
}

func candidates(t *table.Table, opts Options) ([]*table.Column, error) {
	if opts.Type == TypeOrdinal {
		// Ordinal columns come back in the order they were named.
		seen := make(map[string]struct{}, len(opts.OrdinalNames))
		var out []*table.Column
		for _, name := range opts.OrdinalNames {
			c, err := t.Column(name)
			if err != nil {
				return nil, err
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, c)
		}
		return out, nil
	}

	var out []*table.Column
	for _, c := range t.Columns() {
		switch opts.Type {
		case TypeNumber:
			if c.Kind().IsNumeric() {
				out = append(out, c)
			}
		case TypeCategorical:
			if c.Kind().IsCategorical() {
				out = append(out, c)
			}
		case TypeNonOrdinal:
			if c.Kind() == table.KindNominal && c.NUnique() <= opts.CategoryCount {
				out = append(out, c)
			}
		}
	}
	return out, nil
}
