package nutrition

import (
	"errors"

	"goclean/domain/core"
	"goclean/domain/table"
	"goclean/internal/profiling"
)

// RangeCorrector replaces per-100g values outside their physical domain with
// the column median.
type RangeCorrector struct {
	s settings
}

// NewRangeCorrector creates a corrector for columns ending in "_100g" with
// the [0, 100] domain and the default exclusions.
func NewRangeCorrector(opts ...Option) (*RangeCorrector, error) {
	s := newSettings("range_corrector", opts)
	if err := s.spec.Validate(); err != nil {
		return nil, err
	}
	return &RangeCorrector{s: s}, nil
}

// Apply returns a new table where every out-of-range value of a matching
// numeric column is replaced by that column's median. The median is taken
// once over the full column, out-of-range values included.
func (rc *RangeCorrector) Apply(t *table.Table) (*table.Table, error) {
	var corrected []*table.Column
	for _, c := range t.Columns() {
		if !rc.s.spec.Matches(c.Name()) {
			continue
		}
		if !c.DType().IsNumeric() {
			rc.s.logger.Debug().Str("column", c.Name()).Str("dtype", string(c.DType())).Msg("skipping non-numeric column")
			continue
		}

		values := c.Floats()
		median, err := profiling.Median(values)
		if errors.Is(err, core.ErrEmptyColumn) {
			continue
		}
		if err != nil {
			return nil, err
		}

		replaced := 0
		for i, v := range values {
			if rc.s.spec.Outside(v) {
				values[i] = median
				replaced++
			}
		}
		if replaced == 0 {
			continue
		}
		next, err := c.WithFloats(values)
		if err != nil {
			return nil, err
		}
		corrected = append(corrected, next)
		rc.s.logger.Info().
			Str("column", c.Name()).
			Int("cells", replaced).
			Float64("median", median).
			Msg("replaced out-of-range values")
	}
	return t.Replace(corrected...)
}

// DropOutOfRange returns a new table without the rows where any of cols lies
// outside the domain. Missing values never cause a drop.
func (rc *RangeCorrector) DropOutOfRange(t *table.Table, cols []string) (*table.Table, error) {
	targets, err := t.Lookup(cols...)
	if err != nil {
		return nil, err
	}
	for _, c := range targets {
		if !c.DType().IsNumeric() {
			return nil, core.NewTypeMismatchError(c.Name(), string(c.DType()))
		}
	}

	keep := make([]bool, t.NumRows())
	for i := range keep {
		keep[i] = true
		for _, c := range targets {
			if rc.s.spec.Outside(c.Float(i)) {
				keep[i] = false
				break
			}
		}
	}
	out, err := t.FilterRows(keep)
	if err != nil {
		return nil, err
	}
	rc.s.logger.Info().Int("rows_dropped", t.NumRows()-out.NumRows()).Msg("dropped out-of-range rows")
	return out, nil
}
