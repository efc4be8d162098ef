package config

import (
	"errors"
	"io/fs"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"goclean/domain/core"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GOCLEAN"

// Config represents the complete cleaning configuration. It only supplies
// defaults to the transform constructors; transforms never read the
// environment themselves.
type Config struct {
	Outliers   OutlierConfig    `envconfig:"OUTLIERS"`
	Imputation ImputationConfig `envconfig:"IMPUTATION"`
	Forest     ForestConfig     `envconfig:"FOREST"`
	Filter     FilterConfig     `envconfig:"FILTER"`
	Logging    LoggingConfig    `envconfig:"LOGGING"`
}

// OutlierConfig holds the quantile filter and winsorizer settings
type OutlierConfig struct {
	IQRMultiplier float64 `envconfig:"IQR_MULTIPLIER" default:"1.5" validate:"gte=0"`
	WinsorLower   float64 `envconfig:"WINSOR_LOWER" default:"1" validate:"gte=0,lte=100,ltfield=WinsorUpper"`
	WinsorUpper   float64 `envconfig:"WINSOR_UPPER" default:"99" validate:"gte=0,lte=100"`
}

// ImputationConfig holds the imputer settings
type ImputationConfig struct {
	Neighbors        int     `envconfig:"NEIGHBORS" default:"5" validate:"gt=0"`
	Weights          string  `envconfig:"WEIGHTS" default:"uniform" validate:"oneof=uniform distance"`
	MissingThreshold float64 `envconfig:"MISSING_THRESHOLD" default:"0.3" validate:"gte=0,lte=1"`
}

// ForestConfig holds the isolation forest settings
type ForestConfig struct {
	Trees      int   `envconfig:"TREES" default:"100" validate:"gt=0"`
	MaxSamples int   `envconfig:"MAX_SAMPLES" default:"256" validate:"gt=1"`
	Seed       int64 `envconfig:"SEED" default:"42"`
}

// FilterConfig holds the column selection settings
type FilterConfig struct {
	CategoryCount int     `envconfig:"CATEGORY_COUNT" default:"100" validate:"gt=0"`
	NaNPercent    float64 `envconfig:"NAN_PERCENT" default:"0" validate:"gte=0,lte=100"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `envconfig:"LEVEL" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `envconfig:"FORMAT" default:"console" validate:"oneof=console json"`
}

// Default returns the built-in defaults without reading the environment.
func Default() *Config {
	return &Config{
		Outliers: OutlierConfig{
			IQRMultiplier: 1.5,
			WinsorLower:   1,
			WinsorUpper:   99,
		},
		Imputation: ImputationConfig{
			Neighbors:        5,
			Weights:          "uniform",
			MissingThreshold: 0.3,
		},
		Forest: ForestConfig{
			Trees:      100,
			MaxSamples: 256,
			Seed:       42,
		},
		Filter: FilterConfig{
			CategoryCount: 100,
			NaNPercent:    0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads an optional .env file, then environment variables prefixed with
// GOCLEAN_, and validates the result.
func Load() (*Config, error) {
	// A missing .env file is fine; system environment variables still apply
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, core.NewConfigError("failed to read .env file", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, core.NewConfigError("failed to load config from env", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return core.NewConfigError("configuration validation failed", err)
	}
	return nil
}
