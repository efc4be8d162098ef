package outliers

import (
	"goclean/domain/table"
)

// QuantileFilter flags cells outside [Q1 - k*IQR, Q3 + k*IQR] and handles
// them according to its policy.
type QuantileFilter struct {
	s settings
}

// NewQuantileFilter creates a filter with k = 1.5, the drop policy and the
// median pre-fill enabled.
func NewQuantileFilter(opts ...Option) (*QuantileFilter, error) {
	s, err := newSettings("quantile_filter", opts)
	if err != nil {
		return nil, err
	}
	return &QuantileFilter{s: s}, nil
}

// Detect returns the outlier mask of the target columns without changing
// anything. Missing values are never flagged.
func (f *QuantileFilter) Detect(t *table.Table, cols []string) (Mask, error) {
	targetCols, err := targets(t, cols)
	if err != nil {
		return Mask{}, err
	}
	return iqrMask(t, targetCols, f.s.Multiplier, f.s.logger)
}

// Apply returns a new table with the outliers of the target columns handled.
// When the pre-fill is enabled, missing target values are first replaced by
// the column median.
func (f *QuantileFilter) Apply(t *table.Table, cols []string) (*table.Table, error) {
	targetCols, err := targets(t, cols)
	if err != nil {
		return nil, err
	}
	work := t
	if f.s.FillMissing {
		if work, targetCols, err = fillWithMedian(t, targetCols); err != nil {
			return nil, err
		}
	}
	mask, err := iqrMask(work, targetCols, f.s.Multiplier, f.s.logger)
	if err != nil {
		return nil, err
	}
	return handle(work, mask, f.s.Policy, f.s.logger)
}
