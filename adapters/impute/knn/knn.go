// Package knn implements ports.NeighborImputer with NaN-aware Euclidean
// distances.
package knn

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"goclean/domain/core"
	"goclean/ports"
)

// Imputer fills each missing cell from the k nearest rows that observe the
// cell's column.
type Imputer struct {
	logger zerolog.Logger
}

// New returns an imputer that logs through logger.
func New(logger zerolog.Logger) *Imputer {
	return &Imputer{logger: logger.With().Str("component", "knn_imputer").Logger()}
}

// FitTransform returns a copy of x with every NaN cell imputed. Columns
// without any observed value are returned unchanged.
func (im *Imputer) FitTransform(x *mat.Dense, k int, w ports.Weighting) (*mat.Dense, error) {
	if k <= 0 {
		return nil, core.NewInvalidArgumentError("neighbors", fmt.Sprintf("must be positive, got %d", k))
	}
	if !w.Valid() {
		return nil, core.NewInvalidArgumentError("weights", fmt.Sprintf("unsupported weighting %q", w))
	}

	rows, cols := x.Dims()
	out := mat.DenseCopyOf(x)
	means := columnMeans(x)

	for i := 0; i < rows; i++ {
		missing := missingColumns(x, i)
		if len(missing) == 0 {
			continue
		}
		dist := distancesFrom(x, i)
		for _, j := range missing {
			if math.IsNaN(means[j]) {
				continue
			}
			donors := nearestDonors(x, dist, i, j, k)
			if len(donors) == 0 {
				im.logger.Warn().Int("row", i).Int("column", j).Msg("no donors, using column mean")
				out.Set(i, j, means[j])
				continue
			}
			out.Set(i, j, combine(x, donors, j, w))
		}
	}

	im.logger.Debug().Int("rows", rows).Int("columns", cols).Int("k", k).Str("weights", string(w)).Msg("imputed matrix")
	return out, nil
}

type donor struct {
	row  int
	dist float64
}

func missingColumns(x *mat.Dense, i int) []int {
	_, cols := x.Dims()
	var out []int
	for j := 0; j < cols; j++ {
		if math.IsNaN(x.At(i, j)) {
			out = append(out, j)
		}
	}
	return out
}

// distancesFrom computes the NaN-aware Euclidean distance from row i to
// every row: sqrt(p/present * sum of squared differences) over coordinates
// observed in both rows. Rows sharing no coordinate are at NaN distance.
func distancesFrom(x *mat.Dense, i int) []float64 {
	rows, cols := x.Dims()
	a := x.RawRowView(i)
	dist := make([]float64, rows)
	for r := 0; r < rows; r++ {
		b := x.RawRowView(r)
		var sum float64
		present := 0
		for j := 0; j < cols; j++ {
			if math.IsNaN(a[j]) || math.IsNaN(b[j]) {
				continue
			}
			d := a[j] - b[j]
			sum += d * d
			present++
		}
		if present == 0 {
			dist[r] = math.NaN()
			continue
		}
		dist[r] = math.Sqrt(float64(cols) / float64(present) * sum)
	}
	return dist
}

// nearestDonors returns up to k rows other than i that observe column j and
// have a defined distance to i, nearest first. Ties keep row order.
func nearestDonors(x *mat.Dense, dist []float64, i, j, k int) []donor {
	rows, _ := x.Dims()
	var donors []donor
	for r := 0; r < rows; r++ {
		if r == i || math.IsNaN(x.At(r, j)) || math.IsNaN(dist[r]) {
			continue
		}
		donors = append(donors, donor{row: r, dist: dist[r]})
	}
	sort.SliceStable(donors, func(a, b int) bool { return donors[a].dist < donors[b].dist })
	if len(donors) > k {
		donors = donors[:k]
	}
	return donors
}

func combine(x *mat.Dense, donors []donor, j int, w ports.Weighting) float64 {
	values := make([]float64, len(donors))
	for n, d := range donors {
		values[n] = x.At(d.row, j)
	}
	if w == ports.WeightUniform {
		return stat.Mean(values, nil)
	}

	// Donors at distance zero take all the weight.
	var exact []float64
	for n, d := range donors {
		if d.dist == 0 {
			exact = append(exact, values[n])
		}
	}
	if len(exact) > 0 {
		return stat.Mean(exact, nil)
	}
	weights := make([]float64, len(donors))
	for n, d := range donors {
		weights[n] = 1 / d.dist
	}
	return stat.Mean(values, weights)
}

func columnMeans(x *mat.Dense) []float64 {
	rows, cols := x.Dims()
	means := make([]float64, cols)
	for j := 0; j < cols; j++ {
		var observed []float64
		for i := 0; i < rows; i++ {
			if v := x.At(i, j); !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			means[j] = math.NaN()
			continue
		}
		means[j] = stat.Mean(observed, nil)
	}
	return means
}
