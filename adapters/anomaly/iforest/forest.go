// Package iforest implements a univariate isolation forest satisfying
// ports.AnomalyModel.
package iforest

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"goclean/domain/core"
	"goclean/ports"
)

const eulerGamma = 0.5772156649015329

// Threshold is the anomaly score above which a value is an outlier.
const Threshold = 0.5

// ErrNotFitted is returned when scoring before Fit.
var ErrNotFitted = errors.New("isolation forest is not fitted")

// Forest is an ensemble of isolation trees over one feature.
type Forest struct {
	params params
	seed   int64
	logger zerolog.Logger

	trees []*node
	psi   int
}

type params struct {
	Trees      int `validate:"gt=0"`
	MaxSamples int `validate:"gt=1"`
}

// Option configures a Forest.
type Option func(*Forest)

// WithTrees sets the number of trees.
func WithTrees(n int) Option {
	return func(f *Forest) { f.params.Trees = n }
}

// WithMaxSamples sets the sub-sample size drawn for each tree. It is capped
// at the number of fitted values.
func WithMaxSamples(n int) Option {
	return func(f *Forest) { f.params.MaxSamples = n }
}

// WithSeed sets the base seed; tree i uses seed+i.
func WithSeed(seed int64) Option {
	return func(f *Forest) { f.seed = seed }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Forest) { f.logger = logger.With().Str("component", "iforest").Logger() }
}

// New creates an unfitted forest with 100 trees of up to 256 samples.
func New(opts ...Option) *Forest {
	f := &Forest{
		params: params{Trees: 100, MaxSamples: 256},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Factory returns a ports.AnomalyModelFactory producing forests built with
// opts.
func Factory(opts ...Option) ports.AnomalyModelFactory {
	return func() ports.AnomalyModel { return New(opts...) }
}

var validate = validator.New()

// Fit grows the trees concurrently. Each tree draws its sub-sample without
// replacement from its own seeded source, so results do not depend on
// scheduling.
func (f *Forest) Fit(values []float64) error {
	if err := validate.Struct(f.params); err != nil {
		return core.NewInvalidArgumentError("iforest", err.Error())
	}
	if len(values) == 0 {
		return core.NewInvalidArgumentError("values", "cannot fit on an empty sample")
	}
	for i, v := range values {
		if math.IsNaN(v) {
			return core.NewInvalidArgumentError("values", fmt.Sprintf("missing value at position %d", i))
		}
	}

	data := append([]float64(nil), values...)
	psi := f.params.MaxSamples
	if psi > len(data) {
		psi = len(data)
	}
	limit := int(math.Ceil(math.Log2(float64(max(psi, 2)))))

	trees := make([]*node, f.params.Trees)
	var g errgroup.Group
	for i := range trees {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(f.seed + int64(i)))
			sample := make([]float64, psi)
			for j, p := range rng.Perm(len(data))[:psi] {
				sample[j] = data[p]
			}
			trees[i] = grow(rng, sample, 0, limit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("grow isolation trees: %w", err)
	}

	f.trees, f.psi = trees, psi
	f.logger.Debug().
		Int("trees", len(trees)).
		Int("samples", psi).
		Int("height_limit", limit).
		Msg("forest fitted")
	return nil
}

// Score returns the anomaly score 2^(-E[h(x)]/c(psi)) of each value. Scores
// near 1 are anomalies; NaN values score NaN.
func (f *Forest) Score(values []float64) ([]float64, error) {
	if f.trees == nil {
		return nil, ErrNotFitted
	}
	norm := averagePath(f.psi)
	scores := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			scores[i] = math.NaN()
			continue
		}
		if norm == 0 {
			scores[i] = Threshold
			continue
		}
		var total float64
		for _, t := range f.trees {
			total += t.pathLength(v, 0)
		}
		scores[i] = math.Pow(2, -(total/float64(len(f.trees)))/norm)
	}
	return scores, nil
}

// Predict flags values whose score exceeds Threshold.
func (f *Forest) Predict(values []float64) ([]bool, error) {
	scores, err := f.Score(values)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(scores))
	for i, s := range scores {
		out[i] = s > Threshold
	}
	return out, nil
}

type node struct {
	split       float64
	left, right *node
	size        int
}

func grow(rng *rand.Rand, sample []float64, depth, limit int) *node {
	if depth >= limit || len(sample) <= 1 {
		return &node{size: len(sample)}
	}
	lo, hi := sample[0], sample[0]
	for _, v := range sample[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return &node{size: len(sample)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right []float64
	for _, v := range sample {
		if v < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}
	return &node{
		split: split,
		left:  grow(rng, left, depth+1, limit),
		right: grow(rng, right, depth+1, limit),
	}
}

func (n *node) pathLength(v float64, depth int) float64 {
	if n.left == nil {
		return float64(depth) + averagePath(n.size)
	}
	if v < n.split {
		return n.left.pathLength(v, depth+1)
	}
	return n.right.pathLength(v, depth+1)
}

// averagePath is c(n), the mean path length of an unsuccessful search in a
// binary search tree of n points.
func averagePath(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	m := float64(n)
	return 2*(math.Log(m-1)+eulerGamma) - 2*(m-1)/m
}
