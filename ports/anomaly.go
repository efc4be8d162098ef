package ports

// AnomalyModel is a univariate outlier detector. Implementations are fitted
// once per column and must not retain the slice passed to Fit.
type AnomalyModel interface {
	// Fit learns the distribution of values. values contains no NaN.
	Fit(values []float64) error

	// Predict flags each value; true marks an outlier.
	Predict(values []float64) ([]bool, error)
}

// AnomalyModelFactory creates a fresh, unfitted model.
type AnomalyModelFactory func() AnomalyModel
