package nutrition

import (
	"math"

	"goclean/domain/core"
	"goclean/domain/rules"
	"goclean/domain/table"
)

// Report counts, per rule name, the rows that violated the rule. A row
// violating several rules is counted under each of them.
type Report struct {
	Violations map[string]int
	Skipped    []string
	Dropped    int
}

// ConsistencyFilter drops rows failing any cross-column rule.
type ConsistencyFilter struct {
	s settings
}

// NewConsistencyFilter creates a filter using the default nutrition rules.
func NewConsistencyFilter(opts ...Option) (*ConsistencyFilter, error) {
	s := newSettings("consistency_filter", opts)
	if err := s.rules.Validate(); err != nil {
		return nil, err
	}
	return &ConsistencyFilter{s: s}, nil
}

// Apply returns a new table without the rows that fail at least one rule.
func (f *ConsistencyFilter) Apply(t *table.Table) (*table.Table, error) {
	out, _, err := f.ApplyWithReport(t)
	return out, err
}

type boundRule struct {
	rule  rules.Rule
	value *table.Column
	other *table.Column
}

// ApplyWithReport is Apply plus the per-rule violation counts. Every rule
// column is resolved before any row is evaluated.
func (f *ConsistencyFilter) ApplyWithReport(t *table.Table) (*table.Table, Report, error) {
	report := Report{Violations: make(map[string]int, len(f.s.rules))}

	bound := make([]boundRule, 0, len(f.s.rules))
	for _, r := range f.s.rules {
		cols, err := t.Lookup(r.Columns()...)
		if core.IsColumnNotFound(err) && f.s.skipMissing {
			f.s.logger.Debug().Str("rule", r.Name).Err(err).Msg("skipping rule")
			report.Skipped = append(report.Skipped, r.Name)
			continue
		}
		if err != nil {
			return nil, Report{}, err
		}
		for _, c := range cols {
			if !c.DType().IsNumeric() {
				return nil, Report{}, core.NewTypeMismatchError(c.Name(), string(c.DType()))
			}
		}
		b := boundRule{rule: r, value: cols[0]}
		if len(cols) > 1 {
			b.other = cols[1]
		}
		bound = append(bound, b)
	}

	keep := make([]bool, t.NumRows())
	for i := range keep {
		keep[i] = true
		for _, b := range bound {
			other := math.NaN()
			if b.other != nil {
				other = b.other.Float(i)
			}
			if b.rule.Violated(b.value.Float(i), other) {
				report.Violations[b.rule.Name]++
				keep[i] = false
			}
		}
	}

	out, err := t.FilterRows(keep)
	if err != nil {
		return nil, Report{}, err
	}
	report.Dropped = t.NumRows() - out.NumRows()

	event := f.s.logger.Info().Int("rows_dropped", report.Dropped)
	for name, n := range report.Violations {
		event = event.Int(name, n)
	}
	event.Msg("applied consistency rules")
	return out, report, nil
}
