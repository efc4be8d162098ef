package profiling

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"goclean/domain/core"
)

// Summary holds the per-call statistics of one numeric column. Statistics
// are computed over non-missing values only and are never cached.
type Summary struct {
	Count   int
	Missing int
	Min     float64
	Max     float64
	Mean    float64
	Median  float64
	Q1      float64
	Q3      float64
	IQR     float64
}

// Summarize computes the summary statistics of values, ignoring NaN.
func Summarize(values []float64) (Summary, error) {
	observed := Observed(values)
	summary := Summary{Count: len(observed), Missing: len(values) - len(observed)}
	if len(observed) == 0 {
		return summary, core.ErrEmptyColumn
	}

	sorted := append([]float64(nil), observed...)
	sort.Float64s(sorted)

	mean, err := stats.Mean(sorted)
	if err != nil {
		return summary, err
	}
	median, err := stats.Median(sorted)
	if err != nil {
		return summary, err
	}

	summary.Min = floats.Min(sorted)
	summary.Max = floats.Max(sorted)
	summary.Mean = mean
	summary.Median = median
	summary.Q1 = quantileSorted(sorted, 0.25)
	summary.Q3 = quantileSorted(sorted, 0.75)
	summary.IQR = summary.Q3 - summary.Q1
	return summary, nil
}

// Fences returns the Tukey fences [Q1 - k*IQR, Q3 + k*IQR].
func (s Summary) Fences(k float64) (lower, upper float64) {
	return s.Q1 - k*s.IQR, s.Q3 + k*s.IQR
}

// Observed returns the non-NaN values in order.
func Observed(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Quantile returns the q-th quantile (0 <= q <= 1) of the non-NaN values,
// interpolating linearly between the two closest ranks.
func Quantile(values []float64, q float64) (float64, error) {
	if q < 0 || q > 1 || math.IsNaN(q) {
		return 0, core.NewInvalidArgumentError("quantile", fmt.Sprintf("%v is outside [0, 1]", q))
	}
	sorted := Observed(values)
	if len(sorted) == 0 {
		return 0, core.ErrEmptyColumn
	}
	sort.Float64s(sorted)
	return quantileSorted(sorted, q), nil
}

// Percentile is Quantile with p expressed in [0, 100].
func Percentile(values []float64, p float64) (float64, error) {
	return Quantile(values, p/100)
}

func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	rank := q * float64(n-1)
	lower := int(math.Floor(rank))
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}
	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

// Mean returns the mean of the non-NaN values.
func Mean(values []float64) (float64, error) {
	observed := Observed(values)
	if len(observed) == 0 {
		return 0, core.ErrEmptyColumn
	}
	return stats.Mean(observed)
}

// Median returns the median of the non-NaN values.
func Median(values []float64) (float64, error) {
	observed := Observed(values)
	if len(observed) == 0 {
		return 0, core.ErrEmptyColumn
	}
	return stats.Median(observed)
}

// Mode returns the most frequent non-NaN value; ties resolve to the smallest
// value.
func Mode(values []float64) (float64, error) {
	sorted := Observed(values)
	if len(sorted) == 0 {
		return 0, core.ErrEmptyColumn
	}
	sort.Float64s(sorted)

	mode, best := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > best {
			mode, best = sorted[i], j-i
		}
		i = j
	}
	return mode, nil
}
