// Package nutrition holds the domain-specific cleaning steps for per-100g
// nutrition tables: the [0, 100] range corrector and the cross-column
// consistency filter.
package nutrition

import (
	"github.com/rs/zerolog"

	"goclean/domain/rules"
	"goclean/internal/logging"
)

type settings struct {
	spec        rules.RangeSpec
	rules       rules.RuleSet
	skipMissing bool
	logger      zerolog.Logger
}

func newSettings(component string, opts []Option) settings {
	s := settings{
		spec:   rules.DefaultRangeSpec(),
		rules:  rules.DefaultConsistencyRules(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	s.logger = logging.Component(s.logger, component)
	return s
}

// Option configures a RangeCorrector or ConsistencyFilter.
type Option func(*settings)

// WithSuffix sets the column-name suffix selecting range-checked columns.
func WithSuffix(suffix string) Option {
	return func(s *settings) { s.spec.Suffix = suffix }
}

// WithBounds sets the valid domain of range-checked columns.
func WithBounds(min, max float64) Option {
	return func(s *settings) { s.spec.Min, s.spec.Max = min, max }
}

// WithExclusions replaces the list of columns exempt from the range check.
func WithExclusions(names ...string) Option {
	return func(s *settings) { s.spec.Exclude = append([]string(nil), names...) }
}

// WithRangeSpec replaces the whole RangeSpec.
func WithRangeSpec(spec rules.RangeSpec) Option {
	return func(s *settings) { s.spec = spec }
}

// WithRules replaces the consistency rules.
func WithRules(rs rules.RuleSet) Option {
	return func(s *settings) { s.rules = rs }
}

// WithSkipMissingColumns makes the consistency filter skip rules whose
// columns are absent instead of failing.
func WithSkipMissingColumns(skip bool) Option {
	return func(s *settings) { s.skipMissing = skip }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}
