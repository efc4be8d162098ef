package profiling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goclean/domain/core"
)

func TestSummarize(t *testing.T) {
	values := []float64{1, 2, 3, 4, math.NaN(), 100}

	s, err := Summarize(values)
	require.NoError(t, err)

	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 1, s.Missing)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 100.0, s.Max)
	assert.InDelta(t, 22.0, s.Mean, 1e-12)
	assert.Equal(t, 3.0, s.Median)
	assert.Equal(t, 2.0, s.Q1)
	assert.Equal(t, 4.0, s.Q3)
	assert.Equal(t, 2.0, s.IQR)

	lower, upper := s.Fences(1.5)
	assert.Equal(t, -1.0, lower)
	assert.Equal(t, 7.0, upper)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize([]float64{math.NaN(), math.NaN()})
	assert.ErrorIs(t, err, core.ErrEmptyColumn)
}

func TestQuantileLinearInterpolation(t *testing.T) {
	values := []float64{10, 20, 30, 40}

	tests := []struct {
		q    float64
		want float64
	}{
		{0, 10},
		{0.25, 17.5},
		{0.5, 25},
		{0.75, 32.5},
		{1, 40},
		{0.01, 10.3},
		{0.99, 39.7},
	}
	for _, tt := range tests {
		got, err := Quantile(values, tt.q)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9, "q=%v", tt.q)
	}

	p, err := Percentile(values, 50)
	require.NoError(t, err)
	assert.Equal(t, 25.0, p)

	_, err = Quantile(values, 1.5)
	assert.True(t, core.IsInvalidArgument(err))
}

func TestMode(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"single winner", []float64{1, 2, 2, 3}, 2},
		{"tie resolves to smallest", []float64{3, 3, 1, 1, 2}, 1},
		{"all unique", []float64{5, 4, 9}, 4},
		{"ignores missing", []float64{math.NaN(), math.NaN(), 7}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Mode(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMeanMedianIgnoreMissing(t *testing.T) {
	mean, err := Mean([]float64{1, math.NaN(), 3})
	require.NoError(t, err)
	assert.Equal(t, 2.0, mean)

	median, err := Median([]float64{math.NaN(), 4, 1, 10})
	require.NoError(t, err)
	assert.Equal(t, 4.0, median)

	_, err = Median(nil)
	assert.ErrorIs(t, err, core.ErrEmptyColumn)
}
