package outliers

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"goclean/domain/core"
	"goclean/internal/logging"
	"goclean/ports"
)

// Policy is how detected outlier cells are handled.
type Policy string

const (
	PolicyDrop   Policy = "drop"
	PolicyNaN    Policy = "nan"
	PolicyMedian Policy = "median"
	PolicyMean   Policy = "mean"
)

// ParsePolicy maps a policy name to a Policy.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PolicyDrop, PolicyNaN, PolicyMedian, PolicyMean:
		return p, nil
	}
	return "", core.NewInvalidArgumentError("policy", fmt.Sprintf("unsupported policy %q", s))
}

// Backend selects how the Detector finds outliers.
type Backend string

const (
	BackendQuantile Backend = "quantile"
	BackendModel    Backend = "model"
)

// DefaultColumns are the targets used when no columns are given.
var DefaultColumns = []string{"energy_100g", "fat_100g", "carbohydrates_100g", "proteins_100g"}

// settings is shared by every transform in the package; each reads the
// fields it needs.
type settings struct {
	Multiplier  float64 `validate:"gte=0"`
	Policy      Policy  `validate:"oneof=drop nan median mean"`
	FillMissing bool
	Lower       float64 `validate:"gte=0,lte=100,ltfield=Upper"`
	Upper       float64 `validate:"gte=0,lte=100"`
	DropRows    bool
	Backend     Backend `validate:"oneof=quantile model"`

	factory ports.AnomalyModelFactory
	logger  zerolog.Logger
}

func defaultSettings() settings {
	return settings{
		Multiplier:  1.5,
		Policy:      PolicyDrop,
		FillMissing: true,
		Lower:       1,
		Upper:       99,
		Backend:     BackendQuantile,
		logger:      zerolog.Nop(),
	}
}

// Option configures a QuantileFilter, Winsorizer or Detector.
type Option func(*settings)

// WithMultiplier sets the IQR multiplier k.
func WithMultiplier(k float64) Option {
	return func(s *settings) { s.Multiplier = k }
}

// WithPolicy sets the handling policy.
func WithPolicy(p Policy) Option {
	return func(s *settings) { s.Policy = p }
}

// WithFillMissing controls whether target missing values are filled with the
// column median before detection.
func WithFillMissing(fill bool) Option {
	return func(s *settings) { s.FillMissing = fill }
}

// WithPercentiles sets the winsorizing band in percent.
func WithPercentiles(lower, upper float64) Option {
	return func(s *settings) { s.Lower, s.Upper = lower, upper }
}

// WithDropRows makes the Winsorizer drop rows outside the band instead of
// clipping.
func WithDropRows(drop bool) Option {
	return func(s *settings) { s.DropRows = drop }
}

// WithBackend selects the Detector backend.
func WithBackend(b Backend) Option {
	return func(s *settings) { s.Backend = b }
}

// WithModelFactory sets the anomaly model used by the model backend.
func WithModelFactory(f ports.AnomalyModelFactory) Option {
	return func(s *settings) { s.factory = f }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

var validate = validator.New()

func newSettings(component string, opts []Option) (settings, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if err := validate.Struct(s); err != nil {
		return s, core.NewInvalidArgumentError(component, err.Error())
	}
	s.logger = logging.Component(s.logger, component)
	return s, nil
}
