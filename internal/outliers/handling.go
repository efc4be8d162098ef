package outliers

import (
	"errors"
	"math"

	"github.com/rs/zerolog"

	"goclean/domain/core"
	"goclean/domain/table"
	"goclean/internal/profiling"
)

// targets resolves the target columns, defaulting to DefaultColumns and
// requiring numeric dtypes. Duplicate names are collapsed.
func targets(t *table.Table, names []string) ([]*table.Column, error) {
	if len(names) == 0 {
		names = DefaultColumns
	}
	seen := make(map[string]struct{}, len(names))
	var out []*table.Column
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		if !c.DType().IsNumeric() {
			return nil, core.NewTypeMismatchError(name, string(c.DType()))
		}
		out = append(out, c)
	}
	return out, nil
}

func names(cols []*table.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name()
	}
	return out
}

// iqrMask flags values outside the Tukey fences of each column. Columns
// without observed values flag nothing.
func iqrMask(t *table.Table, cols []*table.Column, k float64, logger zerolog.Logger) (Mask, error) {
	mask := newMask(t.NumRows())
	for _, c := range cols {
		flags := make([]bool, c.Len())
		summary, err := profiling.Summarize(c.Floats())
		switch {
		case errors.Is(err, core.ErrEmptyColumn):
			logger.Warn().Str("column", c.Name()).Msg("no observed values, nothing to detect")
		case err != nil:
			return Mask{}, err
		default:
			lower, upper := summary.Fences(k)
			for i := range flags {
				v := c.Float(i)
				flags[i] = v < lower || v > upper
			}
			logger.Debug().
				Str("column", c.Name()).
				Float64("q1", summary.Q1).
				Float64("q3", summary.Q3).
				Float64("lower", lower).
				Float64("upper", upper).
				Msg("quantile bounds")
		}
		mask.set(c.Name(), flags)
	}
	return mask, nil
}

// fillWithMedian replaces missing target values with the column median. t is
// returned as is when nothing was filled.
func fillWithMedian(t *table.Table, cols []*table.Column) (*table.Table, []*table.Column, error) {
	filled := make([]*table.Column, len(cols))
	changed := false
	for i, c := range cols {
		filled[i] = c
		if c.MissingCount() == 0 {
			continue
		}
		values := c.Floats()
		median, err := profiling.Median(values)
		if errors.Is(err, core.ErrEmptyColumn) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		for j, v := range values {
			if math.IsNaN(v) {
				values[j] = median
			}
		}
		if filled[i], err = c.WithFloats(values); err != nil {
			return nil, nil, err
		}
		changed = true
	}
	if !changed {
		return t, cols, nil
	}
	out, err := t.Replace(filled...)
	if err != nil {
		return nil, nil, err
	}
	return out, filled, nil
}

// handle applies a policy to the cells flagged by mask.
func handle(t *table.Table, mask Mask, policy Policy, logger zerolog.Logger) (*table.Table, error) {
	if policy == PolicyDrop {
		out, err := t.FilterRows(mask.Keep())
		if err != nil {
			return nil, err
		}
		logger.Info().
			Int("rows_before", t.NumRows()).
			Int("rows_dropped", t.NumRows()-out.NumRows()).
			Msg("dropped outlier rows")
		return out, nil
	}

	replaced := make([]*table.Column, 0, len(mask.Columns))
	for _, name := range mask.Columns {
		flags := mask.Flags[name]
		if mask.Count(name) == 0 {
			continue
		}
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		values := c.Floats()

		fill := math.NaN()
		if policy != PolicyNaN {
			inliers := make([]float64, 0, len(values))
			for i, v := range values {
				if !flags[i] {
					inliers = append(inliers, v)
				}
			}
			if policy == PolicyMedian {
				fill, err = profiling.Median(inliers)
			} else {
				fill, err = profiling.Mean(inliers)
			}
			if errors.Is(err, core.ErrEmptyColumn) {
				logger.Warn().Str("column", name).Msg("no inliers to compute a replacement, column left unchanged")
				continue
			}
			if err != nil {
				return nil, err
			}
		}

		for i := range values {
			if flags[i] {
				values[i] = fill
			}
		}
		next, err := c.WithFloats(values)
		if err != nil {
			return nil, err
		}
		replaced = append(replaced, next)
		logger.Info().
			Str("column", name).
			Str("policy", string(policy)).
			Int("cells", mask.Count(name)).
			Msg("replaced outlier cells")
	}
	return t.Replace(replaced...)
}
