package outliers

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goclean/domain/core"
	"goclean/domain/table"
)

var nan = math.NaN()

func floats(t *testing.T, tbl *table.Table, name string) []float64 {
	t.Helper()
	c, err := tbl.Column(name)
	require.NoError(t, err)
	return c.Floats()
}

func TestQuantileDetect(t *testing.T) {
	tbl := table.MustNew(
		table.NewFloatColumn("a", []float64{1, 2, 3, 4, 100}),
		table.NewFloatColumn("b", []float64{5, 5, 5, 5, 5}),
	)
	f, err := NewQuantileFilter()
	require.NoError(t, err)

	mask, err := f.Detect(tbl, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, mask.Columns)
	assert.Equal(t, []bool{false, false, false, false, true}, mask.Flags["a"])
	assert.Equal(t, 1, mask.Count("a"))
	assert.Equal(t, 0, mask.Count("b"))
	assert.Equal(t, 1, mask.Total())
	assert.Equal(t, []bool{true, true, true, true, false}, mask.Keep())
}

func TestQuantileDetectIsStrict(t *testing.T) {
	// Q1 = 2, Q3 = 4, k = 0 puts the fences on the quartiles themselves.
	tbl := table.MustNew(table.NewFloatColumn("a", []float64{1, 2, 3, 4, 5}))
	f, err := NewQuantileFilter(WithMultiplier(0))
	require.NoError(t, err)

	mask, err := f.Detect(tbl, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false, false, true}, mask.Flags["a"])
}

func TestQuantileApplyPolicies(t *testing.T) {
	input := func() *table.Table {
		return table.MustNew(
			table.NewFloatColumn("a", []float64{1, 2, 3, 10, 100}),
			table.NewObjectColumn("label", []any{"p", "q", "r", "s", "t"}),
		)
	}

	tests := []struct {
		policy Policy
		rows   int
		want   []float64
	}{
		{PolicyDrop, 4, []float64{1, 2, 3, 10}},
		{PolicyNaN, 5, []float64{1, 2, 3, 10, nan}},
		{PolicyMedian, 5, []float64{1, 2, 3, 10, 2.5}},
		{PolicyMean, 5, []float64{1, 2, 3, 10, 4}},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			tbl := input()
			before := tbl.Fingerprint()

			f, err := NewQuantileFilter(WithPolicy(tt.policy))
			require.NoError(t, err)
			out, err := f.Apply(tbl, []string{"a"})
			require.NoError(t, err)

			assert.Equal(t, tt.rows, out.NumRows())
			got := floats(t, out, "a")
			for i := range tt.want {
				if math.IsNaN(tt.want[i]) {
					assert.True(t, math.IsNaN(got[i]))
					continue
				}
				assert.Equal(t, tt.want[i], got[i])
			}
			assert.Equal(t, before, tbl.Fingerprint(), "input must not change")
			assert.Equal(t, tbl.ID(), out.Parent())
		})
	}
}

func TestQuantileNaNPolicyPromotesIntegers(t *testing.T) {
	tbl := table.MustNew(table.NewIntColumn("n", []int64{1, 2, 3, 4, 100}))
	f, err := NewQuantileFilter(WithPolicy(PolicyNaN))
	require.NoError(t, err)

	out, err := f.Apply(tbl, []string{"n"})
	require.NoError(t, err)
	c, err := out.Column("n")
	require.NoError(t, err)
	assert.Equal(t, table.Float64, c.DType())
	assert.Equal(t, 1, c.MissingCount())
}

func TestQuantileMedianPrefill(t *testing.T) {
	tbl := table.MustNew(table.NewFloatColumn("a", []float64{1, nan, 3, 4, 100}))

	t.Run("filled", func(t *testing.T) {
		// Median 3.5 fills row 1; the tighter quartiles then flag 1 and 100.
		f, err := NewQuantileFilter()
		require.NoError(t, err)
		out, err := f.Apply(tbl, []string{"a"})
		require.NoError(t, err)
		assert.Equal(t, []float64{3.5, 3, 4}, floats(t, out, "a"))
		assert.Equal(t, []int{1, 2, 3}, out.Index())
	})

	t.Run("not filled", func(t *testing.T) {
		f, err := NewQuantileFilter(WithFillMissing(false))
		require.NoError(t, err)
		out, err := f.Apply(tbl, []string{"a"})
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2, 3}, out.Index())
		assert.True(t, math.IsNaN(floats(t, out, "a")[1]))
	})
}

func TestQuantileDefaultColumns(t *testing.T) {
	tbl := table.MustNew(
		table.NewFloatColumn("energy_100g", []float64{100, 110, 120, 130, 9000}),
		table.NewFloatColumn("fat_100g", []float64{1, 2, 3, 4, 5}),
		table.NewFloatColumn("carbohydrates_100g", []float64{10, 20, 30, 40, 50}),
		table.NewFloatColumn("proteins_100g", []float64{3, 3, 3, 3, 3}),
		table.NewFloatColumn("salt_100g", []float64{0, 0, 0, 0, 500}),
	)
	f, err := NewQuantileFilter()
	require.NoError(t, err)

	mask, err := f.Detect(tbl, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultColumns, mask.Columns)
	assert.Equal(t, 1, mask.Total())
}

func TestQuantileErrors(t *testing.T) {
	tbl := table.MustNew(
		table.NewFloatColumn("a", []float64{1, 2}),
		table.NewCategoricalColumn("grade", []string{"a", "b"}, nil, true),
	)

	t.Run("unsupported policy", func(t *testing.T) {
		_, err := NewQuantileFilter(WithPolicy("clip"))
		assert.True(t, core.IsInvalidArgument(err))
	})
	t.Run("negative multiplier", func(t *testing.T) {
		_, err := NewQuantileFilter(WithMultiplier(-1))
		assert.True(t, core.IsInvalidArgument(err))
	})
	t.Run("unknown column", func(t *testing.T) {
		f, err := NewQuantileFilter()
		require.NoError(t, err)
		_, err = f.Apply(tbl, []string{"missing"})
		assert.True(t, core.IsColumnNotFound(err))
	})
	t.Run("non-numeric column", func(t *testing.T) {
		f, err := NewQuantileFilter()
		require.NoError(t, err)
		_, err = f.Detect(tbl, []string{"grade"})
		assert.True(t, core.IsTypeMismatch(err))
	})
}

func TestParsePolicy(t *testing.T) {
	tests := map[string]Policy{"drop": PolicyDrop, " NaN ": PolicyNaN, "Median": PolicyMedian, "mean": PolicyMean}
	for in, want := range tests {
		got, err := ParsePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParsePolicy("winsorize")
	assert.True(t, core.IsInvalidArgument(err))
}

func TestAllMissingColumnFlagsNothing(t *testing.T) {
	tbl := table.MustNew(table.NewFloatColumn("a", []float64{nan, nan}))
	f, err := NewQuantileFilter(WithFillMissing(false))
	require.NoError(t, err)

	out, err := f.Apply(tbl, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.NumRows())
}

// Drop removes exactly the rows with at least one flagged cell, for any k.
func TestQuantileDropRemovesExactlyFlaggedRows(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	cols := []string{"a", "b", "c"}

	for trial := 0; trial < 10; trial++ {
		columns := make([]*table.Column, len(cols))
		for j, name := range cols {
			values := make([]float64, 40)
			for i := range values {
				switch r := rng.Float64(); {
				case r < 0.05:
					values[i] = nan
				case r < 0.1:
					values[i] = rng.NormFloat64() * 500
				default:
					values[i] = rng.NormFloat64() * 10
				}
			}
			columns[j] = table.NewFloatColumn(name, values)
		}
		tbl := table.MustNew(columns...)

		for _, k := range []float64{0, 0.5, 1.5, 3} {
			f, err := NewQuantileFilter(WithMultiplier(k), WithFillMissing(false))
			require.NoError(t, err)
			mask, err := f.Detect(tbl, cols)
			require.NoError(t, err)
			out, err := f.Apply(tbl, cols)
			require.NoError(t, err)

			kept := make(map[int]bool, out.NumRows())
			for _, label := range out.Index() {
				kept[label] = true
			}
			flagged := mask.Rows()
			for i := 0; i < tbl.NumRows(); i++ {
				assert.Equal(t, !flagged[i], kept[i], "trial %d k=%v row %d", trial, k, i)
			}
			assert.Equal(t, tbl.NumRows()-mask.Total(), out.NumRows())
		}
	}
}
