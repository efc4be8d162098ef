package imputation

import (
	"errors"
	"math"

	"goclean/domain/core"
	"goclean/domain/table"
	"goclean/internal/profiling"
)

// numericTargets resolves cols (all columns when empty) and requires every
// one of them to be numeric.
func numericTargets(t *table.Table, cols []string) ([]*table.Column, error) {
	if len(cols) == 0 {
		cols = t.Names()
	}
	targets, err := t.Lookup(cols...)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(targets))
	out := targets[:0]
	for _, c := range targets {
		if !c.DType().IsNumeric() {
			return nil, core.NewTypeMismatchError(c.Name(), string(c.DType()))
		}
		if _, dup := seen[c.Name()]; dup {
			continue
		}
		seen[c.Name()] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// Univariate fills the missing values of each column from that column alone.
type Univariate struct {
	s settings
}

// NewUnivariate creates an imputer using the mean strategy.
func NewUnivariate(opts ...Option) (*Univariate, error) {
	s, err := newSettings("univariate_imputer", opts)
	if err != nil {
		return nil, err
	}
	return &Univariate{s: s}, nil
}

// Apply returns a new table with missing values of cols filled. Columns with
// no observed value are left untouched, except by the constant strategy.
func (u *Univariate) Apply(t *table.Table, cols []string) (*table.Table, error) {
	targets, err := numericTargets(t, cols)
	if err != nil {
		return nil, err
	}

	var filled []*table.Column
	for _, c := range targets {
		missing := c.MissingCount()
		if missing == 0 {
			continue
		}
		values := c.Floats()
		fill, err := u.statistic(values)
		if errors.Is(err, core.ErrEmptyColumn) {
			u.s.logger.Warn().Str("column", c.Name()).Msg("no observed values, column left missing")
			continue
		}
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			if math.IsNaN(v) {
				values[i] = fill
			}
		}
		next, err := c.WithFloats(values)
		if err != nil {
			return nil, err
		}
		filled = append(filled, next)
		u.s.logger.Debug().Str("column", c.Name()).Int("cells", missing).Float64("value", fill).Msg("imputed")
	}
	return t.Replace(filled...)
}

func (u *Univariate) statistic(values []float64) (float64, error) {
	switch u.s.Strategy {
	case StrategyMedian:
		return profiling.Median(values)
	case StrategyMostFrequent:
		return profiling.Mode(values)
	case StrategyConstant:
		return u.s.Fill, nil
	}
	return profiling.Mean(values)
}
