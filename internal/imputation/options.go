// Package imputation fills missing numeric values and drops columns that are
// mostly missing.
package imputation

import (
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"goclean/adapters/impute/knn"
	"goclean/domain/core"
	"goclean/internal/config"
	"goclean/internal/logging"
	"goclean/ports"
)

// Strategy is the univariate fill statistic.
type Strategy string

const (
	StrategyMean         Strategy = "mean"
	StrategyMedian       Strategy = "median"
	StrategyMostFrequent Strategy = "most_frequent"
	StrategyConstant     Strategy = "constant"
)

type settings struct {
	Strategy  Strategy        `validate:"oneof=mean median most_frequent constant"`
	Fill      float64         `validate:"-"`
	Neighbors int             `validate:"gt=0"`
	Weights   ports.Weighting `validate:"oneof=uniform distance"`

	imputer ports.NeighborImputer
	logger  zerolog.Logger
}

// Option configures a Univariate or KNN imputer.
type Option func(*settings)

// WithStrategy sets the univariate statistic.
func WithStrategy(s Strategy) Option {
	return func(st *settings) { st.Strategy = s }
}

// WithFillValue sets the value used by the constant strategy.
func WithFillValue(v float64) Option {
	return func(st *settings) { st.Fill = v }
}

// WithNeighbors sets the number of neighbours.
func WithNeighbors(k int) Option {
	return func(st *settings) { st.Neighbors = k }
}

// WithWeights sets how neighbour values are combined.
func WithWeights(w ports.Weighting) Option {
	return func(st *settings) { st.Weights = w }
}

// WithImputer replaces the nearest-neighbour implementation.
func WithImputer(im ports.NeighborImputer) Option {
	return func(st *settings) { st.imputer = im }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(st *settings) { st.logger = logger }
}

// ConfigOptions maps the imputation configuration to options.
func ConfigOptions(cfg config.ImputationConfig) []Option {
	return []Option{
		WithNeighbors(cfg.Neighbors),
		WithWeights(ports.Weighting(cfg.Weights)),
	}
}

var validate = validator.New()

func newSettings(component string, opts []Option) (settings, error) {
	s := settings{
		Strategy:  StrategyMean,
		Neighbors: 5,
		Weights:   ports.WeightUniform,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if err := validate.Struct(s); err != nil {
		return s, core.NewInvalidArgumentError(component, err.Error())
	}
	s.logger = logging.Component(s.logger, component)
	if s.imputer == nil {
		s.imputer = knn.New(s.logger)
	}
	return s, nil
}
