package outliers

import (
	"fmt"
	"math"

	"goclean/adapters/anomaly/iforest"
	"goclean/domain/table"
	"goclean/internal/config"
)

// Detector finds outliers with either the quantile backend or a per-column
// anomaly model, then applies its handling policy.
type Detector struct {
	s settings
}

// NewDetector creates a detector using the quantile backend and the drop
// policy. The model backend defaults to an isolation forest.
func NewDetector(opts ...Option) (*Detector, error) {
	s, err := newSettings("outlier_detector", opts)
	if err != nil {
		return nil, err
	}
	if s.factory == nil {
		s.factory = iforest.Factory(iforest.WithLogger(s.logger))
	}
	return &Detector{s: s}, nil
}

// ConfigOptions maps the outlier and forest configuration to options.
func ConfigOptions(cfg *config.Config) []Option {
	return []Option{
		WithMultiplier(cfg.Outliers.IQRMultiplier),
		WithPercentiles(cfg.Outliers.WinsorLower, cfg.Outliers.WinsorUpper),
		WithModelFactory(iforest.Factory(
			iforest.WithTrees(cfg.Forest.Trees),
			iforest.WithMaxSamples(cfg.Forest.MaxSamples),
			iforest.WithSeed(cfg.Forest.Seed),
		)),
	}
}

// Apply detects and handles outliers.
//
// The quantile backend evaluates every numeric column of the table and
// ignores cols. The model backend first drops rows with a missing value in
// any target column, then fits a fresh model to each target column on its
// own.
func (d *Detector) Apply(t *table.Table, cols []string) (*table.Table, error) {
	switch d.s.Backend {
	case BackendQuantile:
		numeric, err := t.Lookup(t.NumericNames()...)
		if err != nil {
			return nil, err
		}
		mask, err := iqrMask(t, numeric, d.s.Multiplier, d.s.logger)
		if err != nil {
			return nil, err
		}
		return handle(t, mask, d.s.Policy, d.s.logger)
	default:
		targetCols, err := targets(t, cols)
		if err != nil {
			return nil, err
		}
		work, err := dropIncomplete(t, names(targetCols))
		if err != nil {
			return nil, err
		}
		mask, err := d.modelMask(work, names(targetCols))
		if err != nil {
			return nil, err
		}
		return handle(work, mask, d.s.Policy, d.s.logger)
	}
}

func (d *Detector) modelMask(t *table.Table, cols []string) (Mask, error) {
	mask := newMask(t.NumRows())
	for _, name := range cols {
		c, err := t.Column(name)
		if err != nil {
			return Mask{}, err
		}
		if c.Len() == 0 {
			mask.set(name, nil)
			continue
		}
		values := c.Floats()
		model := d.s.factory()
		if err := model.Fit(values); err != nil {
			return Mask{}, fmt.Errorf("fit anomaly model on %q: %w", name, err)
		}
		flags, err := model.Predict(values)
		if err != nil {
			return Mask{}, fmt.Errorf("predict anomalies on %q: %w", name, err)
		}
		if len(flags) != len(values) {
			return Mask{}, fmt.Errorf("anomaly model returned %d flags for %d values of %q", len(flags), len(values), name)
		}
		mask.set(name, flags)
		d.s.logger.Debug().Str("column", name).Int("outliers", mask.Count(name)).Msg("model detection")
	}
	return mask, nil
}

// dropIncomplete removes rows with a missing value in any of cols.
func dropIncomplete(t *table.Table, cols []string) (*table.Table, error) {
	targetCols, err := t.Lookup(cols...)
	if err != nil {
		return nil, err
	}
	keep := make([]bool, t.NumRows())
	for i := range keep {
		keep[i] = true
		for _, c := range targetCols {
			if math.IsNaN(c.Float(i)) {
				keep[i] = false
				break
			}
		}
	}
	return t.FilterRows(keep)
}
