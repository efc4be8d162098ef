package ports

import "gonum.org/v1/gonum/mat"

// Weighting selects how neighbour values are combined.
type Weighting string

const (
	WeightUniform  Weighting = "uniform"
	WeightDistance Weighting = "distance"
)

// Valid reports whether w is a known weighting.
func (w Weighting) Valid() bool {
	return w == WeightUniform || w == WeightDistance
}

// NeighborImputer fills missing cells (NaN) of a samples-by-features matrix
// from the k most similar rows.
type NeighborImputer interface {
	// FitTransform returns a new matrix; x is not modified.
	FitTransform(x *mat.Dense, k int, w Weighting) (*mat.Dense, error)
}
