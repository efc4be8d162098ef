package imputation

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"goclean/domain/table"
)

// KNN fills missing values from the most similar rows, comparing rows over
// the target columns.
type KNN struct {
	s settings
}

// NewKNN creates an imputer using 5 uniformly weighted neighbours.
func NewKNN(opts ...Option) (*KNN, error) {
	s, err := newSettings("knn_imputer", opts)
	if err != nil {
		return nil, err
	}
	return &KNN{s: s}, nil
}

// Apply returns a new table with missing values of cols imputed.
func (k *KNN) Apply(t *table.Table, cols []string) (*table.Table, error) {
	targets, err := numericTargets(t, cols)
	if err != nil {
		return nil, err
	}
	if t.NumRows() == 0 || len(targets) == 0 {
		return t.Replace()
	}

	x := mat.NewDense(t.NumRows(), len(targets), nil)
	for j, c := range targets {
		x.SetCol(j, c.Floats())
	}

	imputed, err := k.s.imputer.FitTransform(x, k.s.Neighbors, k.s.Weights)
	if err != nil {
		return nil, fmt.Errorf("nearest-neighbour imputation: %w", err)
	}
	if r, c := imputed.Dims(); r != t.NumRows() || c != len(targets) {
		return nil, fmt.Errorf("nearest-neighbour imputation returned a %dx%d matrix, want %dx%d", r, c, t.NumRows(), len(targets))
	}

	var filled []*table.Column
	for j, c := range targets {
		if c.MissingCount() == 0 {
			continue
		}
		next, err := c.WithFloats(mat.Col(nil, j, imputed))
		if err != nil {
			return nil, err
		}
		filled = append(filled, next)
	}
	k.s.logger.Info().Int("columns", len(filled)).Int("k", k.s.Neighbors).Msg("imputed missing values")
	return t.Replace(filled...)
}
