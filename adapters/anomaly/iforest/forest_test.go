package iforest

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goclean/domain/core"
	"goclean/ports"
)

var _ ports.AnomalyModel = (*Forest)(nil)

func gaussianSample(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		values[i] = 50 + 5*rng.NormFloat64()
	}
	return values
}

func TestForestFlagsInjectedExtreme(t *testing.T) {
	values := append(gaussianSample(500, 1), 500)

	f := New(WithSeed(42))
	require.NoError(t, f.Fit(values))

	flags, err := f.Predict(values)
	require.NoError(t, err)
	require.Len(t, flags, len(values))
	assert.True(t, flags[len(values)-1], "extreme value must be flagged")

	flagged := 0
	for _, fl := range flags[:len(flags)-1] {
		if fl {
			flagged++
		}
	}
	assert.Less(t, flagged, len(values)/4)

	scores, err := f.Score([]float64{50, 500})
	require.NoError(t, err)
	assert.Less(t, scores[0], scores[1])
	assert.Less(t, scores[0], Threshold)
}

func TestForestIsDeterministicForSeed(t *testing.T) {
	values := gaussianSample(300, 7)
	probe := []float64{20, 35, 50, 65, 80}

	a := New(WithSeed(3), WithTrees(50))
	b := New(WithSeed(3), WithTrees(50))
	require.NoError(t, a.Fit(values))
	require.NoError(t, b.Fit(values))

	sa, err := a.Score(probe)
	require.NoError(t, err)
	sb, err := b.Score(probe)
	require.NoError(t, err)
	assert.Equal(t, sa, sb)
}

func TestForestErrors(t *testing.T) {
	t.Run("predict before fit", func(t *testing.T) {
		_, err := New().Predict([]float64{1})
		assert.ErrorIs(t, err, ErrNotFitted)
	})
	t.Run("empty input", func(t *testing.T) {
		assert.True(t, core.IsInvalidArgument(New().Fit(nil)))
	})
	t.Run("missing value", func(t *testing.T) {
		assert.True(t, core.IsInvalidArgument(New().Fit([]float64{1, math.NaN()})))
	})
	t.Run("no trees", func(t *testing.T) {
		assert.True(t, core.IsInvalidArgument(New(WithTrees(0)).Fit([]float64{1, 2})))
	})
	t.Run("sample size of one", func(t *testing.T) {
		assert.True(t, core.IsInvalidArgument(New(WithMaxSamples(1)).Fit([]float64{1, 2})))
	})
}

func TestForestDegenerateSamples(t *testing.T) {
	f := New(WithSeed(1))
	require.NoError(t, f.Fit([]float64{4, 4, 4, 4}))
	flags, err := f.Predict([]float64{4, 4})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, flags)

	single := New()
	require.NoError(t, single.Fit([]float64{9}))
	flags, err = single.Predict([]float64{9, math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, flags)
}

func TestAveragePath(t *testing.T) {
	assert.Equal(t, 0.0, averagePath(1))
	assert.Equal(t, 1.0, averagePath(2))
	assert.InDelta(t, 2*(math.Log(255)+eulerGamma)-2*255.0/256, averagePath(256), 1e-12)
}
