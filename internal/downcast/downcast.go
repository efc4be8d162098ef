// Package downcast narrows column storage to reduce memory.
package downcast

import (
	"fmt"
	"math"
	"reflect"

	"github.com/apache/arrow/go/v7/arrow/float16"
	"github.com/rs/zerolog"

	"goclean/domain/core"
	"goclean/domain/table"
	"goclean/internal/logging"
)

// FloatPolicy controls how float64 columns are narrowed.
type FloatPolicy string

const (
	// FloatUnconditional stores every float64 column as float16. Precision is
	// lost and magnitudes above 65504 become infinite.
	FloatUnconditional FloatPolicy = "unconditional"
	// FloatLossless picks float16, then float32, only when every value
	// survives the conversion unchanged.
	FloatLossless FloatPolicy = "lossless"
)

// Change records the conversion of one column.
type Change struct {
	From   table.DType
	To     table.DType
	Before int64
	After  int64
}

// Report summarises the memory effect of a downcast.
type Report struct {
	Before  int64
	After   int64
	Saved   int64
	Changes map[string]Change
}

// Downcaster converts columns to the narrowest suitable representation.
type Downcaster struct {
	floats FloatPolicy
	logger zerolog.Logger
}

// Option configures a Downcaster.
type Option func(*Downcaster)

// WithFloatPolicy sets the float64 policy.
func WithFloatPolicy(p FloatPolicy) Option {
	return func(d *Downcaster) { d.floats = p }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Downcaster) { d.logger = logger }
}

// New creates a downcaster with the unconditional float policy.
func New(opts ...Option) (*Downcaster, error) {
	d := &Downcaster{floats: FloatUnconditional, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	if d.floats != FloatUnconditional && d.floats != FloatLossless {
		return nil, core.NewInvalidArgumentError("float policy", fmt.Sprintf("unsupported policy %q", d.floats))
	}
	d.logger = logging.Component(d.logger, "downcaster")
	return d, nil
}

// Apply returns a new table with the given columns (all columns when cols is
// empty) narrowed:
//   - object columns whose values share one runtime type become categories
//   - int64 columns take the smallest integer dtype holding their range
//   - float64 columns follow the float policy
//
// Other dtypes are left alone, so applying the downcaster twice is the same
// as applying it once.
func (d *Downcaster) Apply(t *table.Table, cols []string) (*table.Table, Report, error) {
	if len(cols) == 0 {
		cols = t.Names()
	}
	targets, err := t.Lookup(cols...)
	if err != nil {
		return nil, Report{}, err
	}

	report := Report{Before: t.MemoryUsage(), Changes: make(map[string]Change)}
	var narrowed []*table.Column
	for _, c := range targets {
		if _, done := report.Changes[c.Name()]; done {
			continue
		}
		next, err := d.column(c)
		if err != nil {
			return nil, Report{}, err
		}
		if next == nil {
			continue
		}
		narrowed = append(narrowed, next)
		report.Changes[c.Name()] = Change{
			From:   c.DType(),
			To:     next.DType(),
			Before: c.MemoryUsage(),
			After:  next.MemoryUsage(),
		}
	}

	out, err := t.Replace(narrowed...)
	if err != nil {
		return nil, Report{}, err
	}
	report.After = out.MemoryUsage()
	report.Saved = report.Before - report.After

	d.logger.Info().
		Int64("before_bytes", report.Before).
		Int64("after_bytes", report.After).
		Int64("saved_bytes", report.Saved).
		Int("columns", len(report.Changes)).
		Msg("downcast memory")
	return out, report, nil
}

// column returns the narrowed column, or nil when c stays as it is.
func (d *Downcaster) column(c *table.Column) (*table.Column, error) {
	switch c.DType() {
	case table.Object:
		if !singleType(c) {
			d.logger.Debug().Str("column", c.Name()).Msg("mixed value types, left as object")
			return nil, nil
		}
		return c.AsCategorical()
	case table.Int64:
		min, max, ok := c.IntRange()
		if !ok {
			return nil, nil
		}
		dtype, ok := SmallestIntType(min, max)
		if !ok || dtype == c.DType() {
			return nil, nil
		}
		return c.Cast(dtype)
	case table.Float64:
		dtype := d.floatTarget(c)
		if dtype == c.DType() {
			return nil, nil
		}
		return c.Cast(dtype)
	}
	return nil, nil
}

func (d *Downcaster) floatTarget(c *table.Column) table.DType {
	if d.floats == FloatUnconditional {
		return table.Float16
	}
	values := c.Observed()
	if fitsFloat16(values) {
		return table.Float16
	}
	if fitsFloat32(values) {
		return table.Float32
	}
	return table.Float64
}

func fitsFloat16(values []float64) bool {
	for _, v := range values {
		if float64(float16.New(float32(v)).Float32()) != v {
			return false
		}
	}
	return true
}

func fitsFloat32(values []float64) bool {
	for _, v := range values {
		if float64(float32(v)) != v {
			return false
		}
	}
	return true
}

func singleType(c *table.Column) bool {
	var first reflect.Type
	for i := 0; i < c.Len(); i++ {
		v := c.Value(i)
		if v == nil {
			continue
		}
		typ := reflect.TypeOf(v)
		if first == nil {
			first = typ
			continue
		}
		if typ != first {
			return false
		}
	}
	return true
}

// widths pairs the unsigned and signed dtype of each width, narrowest first.
var widths = [][2]table.DType{
	{table.Uint8, table.Int8},
	{table.Uint16, table.Int16},
	{table.Uint32, table.Int32},
	{table.Uint64, table.Int64},
}

// SmallestIntType returns the narrowest integer dtype holding [min, max].
// Unsigned types are only eligible when min >= 0 and are preferred over the
// signed type of the same width.
func SmallestIntType(min, max int64) (table.DType, bool) {
	if min > max {
		return "", false
	}
	for _, w := range widths {
		unsigned, signed := w[0], w[1]
		if min >= 0 && unsigned.Holds(min, max) {
			return unsigned, true
		}
		if signed.Holds(min, max) {
			return signed, true
		}
	}
	return "", false
}

// Ratio returns the saving as a fraction of the original size, rounded to
// three decimals.
func (r Report) Ratio() float64 {
	if r.Before == 0 {
		return 0
	}
	return math.Round(float64(r.Saved)/float64(r.Before)*1000) / 1000
}
