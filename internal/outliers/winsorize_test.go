package outliers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goclean/domain/core"
	"goclean/domain/table"
)

func oneToHundred() []float64 {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}
	return values
}

func TestWinsorizerClips(t *testing.T) {
	tbl := table.MustNew(table.NewFloatColumn("a", append(oneToHundred(), nan)))
	w, err := NewWinsorizer()
	require.NoError(t, err)

	out, err := w.Apply(tbl, []string{"a"})
	require.NoError(t, err)
	require.Equal(t, 101, out.NumRows())

	got := floats(t, out, "a")
	assert.InDelta(t, 1.99, got[0], 1e-9)
	assert.Equal(t, 50.0, got[49])
	assert.InDelta(t, 99.01, got[99], 1e-9)
	assert.True(t, math.IsNaN(got[100]), "missing values pass through")
}

func TestWinsorizerClipsIntegerColumn(t *testing.T) {
	values := make([]int64, 100)
	for i := range values {
		values[i] = int64(i + 1)
	}
	tbl := table.MustNew(table.NewIntColumn("n", values))
	w, err := NewWinsorizer(WithPercentiles(0, 50))
	require.NoError(t, err)

	out, err := w.Apply(tbl, []string{"n"})
	require.NoError(t, err)
	c, err := out.Column("n")
	require.NoError(t, err)
	assert.Equal(t, table.Float64, c.DType(), "fractional bounds promote to float64")
	assert.Equal(t, 50.5, c.Float(99))
}

func TestWinsorizerDropsSequentially(t *testing.T) {
	b := make([]float64, 100)
	for i := range b {
		b[i] = 5
	}
	b[50] = 1000

	tbl := table.MustNew(
		table.NewFloatColumn("a", append(oneToHundred(), nan)),
		table.NewFloatColumn("b", append(b, 5)),
	)
	w, err := NewWinsorizer(WithDropRows(true))
	require.NoError(t, err)

	out, err := w.Apply(tbl, []string{"a", "b"})
	require.NoError(t, err)

	// a drops rows 0 and 99; b's band is then computed over the remaining rows
	// and excludes 1000. The row missing a value in a survives.
	assert.Equal(t, 98, out.NumRows())
	index := out.Index()
	assert.NotContains(t, index, 0)
	assert.NotContains(t, index, 50)
	assert.NotContains(t, index, 99)
	assert.Contains(t, index, 100)
}

func TestWinsorizerErrors(t *testing.T) {
	_, err := NewWinsorizer(WithPercentiles(99, 1))
	assert.True(t, core.IsInvalidArgument(err))

	_, err = NewWinsorizer(WithPercentiles(-1, 99))
	assert.True(t, core.IsInvalidArgument(err))

	w, err := NewWinsorizer()
	require.NoError(t, err)
	_, err = w.Apply(table.MustNew(table.NewFloatColumn("a", []float64{1})), []string{"b"})
	assert.True(t, core.IsColumnNotFound(err))
}

func TestHandle(t *testing.T) {
	tbl := table.MustNew(table.NewFloatColumn("a", append(oneToHundred(), 1000)))

	tests := []struct {
		name   string
		method Method
		remove bool
		rows   int
		check  func(t *testing.T, got []float64)
	}{
		{"standard drop", MethodStandard, true, 100, nil},
		{"standard mask", MethodStandard, false, 101, func(t *testing.T, got []float64) {
			assert.True(t, math.IsNaN(got[100]))
		}},
		{"winsorize drop", MethodWinsorize, true, 99, nil},
		{"winsorize clip", MethodWinsorize, false, 101, func(t *testing.T, got []float64) {
			assert.Less(t, got[100], 1000.0)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Handle(tbl, tt.method, []string{"a"}, tt.remove)
			require.NoError(t, err)
			assert.Equal(t, tt.rows, out.NumRows())
			if tt.check != nil {
				tt.check(t, floats(t, out, "a"))
			}
		})
	}

	_, err := Handle(tbl, "zscore", []string{"a"}, true)
	assert.True(t, core.IsInvalidArgument(err))
}

func TestWinsorizerSecondPassOnWholeRanks(t *testing.T) {
	// With 101 values the 1st and 99th percentiles fall on whole positions,
	// so the second pass finds the same band.
	values := make([]float64, 101)
	for i := range values {
		values[i] = float64(i)
	}
	w, err := NewWinsorizer()
	require.NoError(t, err)

	once, err := w.Apply(table.MustNew(table.NewFloatColumn("a", values)), []string{"a"})
	require.NoError(t, err)
	twice, err := w.Apply(once, []string{"a"})
	require.NoError(t, err)

	first := floats(t, once, "a")
	assert.Equal(t, 1.0, first[0])
	assert.Equal(t, 99.0, first[100])
	assert.Equal(t, first, floats(t, twice, "a"))
}

func TestWinsorizerSecondPassNarrowsInterpolatedBand(t *testing.T) {
	tbl := table.MustNew(table.NewFloatColumn("a", []float64{0, 10, 20, 30, 40}))
	w, err := NewWinsorizer()
	require.NoError(t, err)

	once, err := w.Apply(tbl, []string{"a"})
	require.NoError(t, err)
	twice, err := w.Apply(once, []string{"a"})
	require.NoError(t, err)

	first := floats(t, once, "a")
	assert.InDelta(t, 0.4, first[0], 1e-9)
	assert.Equal(t, []float64{10, 20, 30}, first[1:4])
	assert.InDelta(t, 39.6, first[4], 1e-9)

	// The band is recomputed from the clipped values and moves inward; it
	// never leaves the first band and inner values stay put.
	second := floats(t, twice, "a")
	assert.InDelta(t, 0.784, second[0], 1e-9)
	assert.Equal(t, []float64{10, 20, 30}, second[1:4])
	assert.InDelta(t, 39.216, second[4], 1e-9)
}

func TestHandleFillsMissingTargets(t *testing.T) {
	tbl := table.MustNew(
		table.NewFloatColumn("a", append(oneToHundred(), nan)),
		table.NewFloatColumn("other", append(make([]float64, 100), nan)),
	)

	tests := []struct {
		name   string
		method Method
		remove bool
		rows   int
	}{
		{"standard mask", MethodStandard, false, 101},
		{"winsorize clip", MethodWinsorize, false, 101},
		{"winsorize drop", MethodWinsorize, true, 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Handle(tbl, tt.method, []string{"a"}, tt.remove)
			require.NoError(t, err)
			require.Equal(t, tt.rows, out.NumRows())

			a, err := out.Column("a")
			require.NoError(t, err)
			assert.Zero(t, a.MissingCount())
			assert.Equal(t, 50.5, a.Float(tt.rows-1), "median of 1..100")
			assert.Contains(t, out.Index(), 100)

			other, err := out.Column("other")
			require.NoError(t, err)
			assert.Equal(t, 1, other.MissingCount(), "columns not targeted keep their gaps")
		})
	}
}
