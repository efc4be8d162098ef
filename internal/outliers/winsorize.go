package outliers

import (
	"errors"
	"math"

	"goclean/domain/core"
	"goclean/domain/table"
	"goclean/internal/profiling"
)

// Winsorizer limits target columns to their [lower, upper] percentile band,
// either by clipping or by dropping rows outside the band.
type Winsorizer struct {
	s settings
}

// NewWinsorizer creates a winsorizer clipping to the 1st and 99th
// percentiles.
func NewWinsorizer(opts ...Option) (*Winsorizer, error) {
	s, err := newSettings("winsorizer", opts)
	if err != nil {
		return nil, err
	}
	return &Winsorizer{s: s}, nil
}

// band returns the percentile bounds of a column. ok is false when the
// column has no observed values.
func (w *Winsorizer) band(c *table.Column) (lo, hi float64, ok bool, err error) {
	values := c.Floats()
	if lo, err = profiling.Percentile(values, w.s.Lower); err != nil {
		if errors.Is(err, core.ErrEmptyColumn) {
			return 0, 0, false, nil
		}
		return 0, 0, false, err
	}
	if hi, err = profiling.Percentile(values, w.s.Upper); err != nil {
		return 0, 0, false, err
	}
	w.s.logger.Debug().Str("column", c.Name()).Float64("low", lo).Float64("high", hi).Msg("percentile band")
	return lo, hi, true, nil
}

// Apply returns a new table with the target columns winsorized. Missing
// values pass through.
//
// In the drop variant columns are processed in order and each column's band
// is computed over the rows kept by the previous columns.
func (w *Winsorizer) Apply(t *table.Table, cols []string) (*table.Table, error) {
	targetCols, err := targets(t, cols)
	if err != nil {
		return nil, err
	}
	if w.s.DropRows {
		return w.dropOutside(t, names(targetCols))
	}

	clipped := make([]*table.Column, 0, len(targetCols))
	for _, c := range targetCols {
		lo, hi, ok, err := w.band(c)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		values := c.Floats()
		changed := 0
		for i, v := range values {
			switch {
			case v < lo:
				values[i] = lo
				changed++
			case v > hi:
				values[i] = hi
				changed++
			}
		}
		next, err := c.WithFloats(values)
		if err != nil {
			return nil, err
		}
		clipped = append(clipped, next)
		w.s.logger.Info().Str("column", c.Name()).Int("cells", changed).Msg("clipped values")
	}
	return t.Replace(clipped...)
}

func (w *Winsorizer) dropOutside(t *table.Table, cols []string) (*table.Table, error) {
	cur := t
	for _, name := range cols {
		c, err := cur.Column(name)
		if err != nil {
			return nil, err
		}
		lo, hi, ok, err := w.band(c)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		keep := make([]bool, c.Len())
		for i := range keep {
			v := c.Float(i)
			keep[i] = math.IsNaN(v) || (v >= lo && v <= hi)
		}
		before := cur.NumRows()
		if cur, err = cur.FilterRows(keep); err != nil {
			return nil, err
		}
		w.s.logger.Info().Str("column", name).Int("rows_dropped", before-cur.NumRows()).Msg("dropped rows outside band")
	}
	if cur == t {
		return t.Replace()
	}
	return cur, nil
}
