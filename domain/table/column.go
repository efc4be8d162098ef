package table

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/apache/arrow/go/v7/arrow/float16"

	"goclean/domain/core"
)

// Column is an immutable, named sequence of values of one dtype.
//
// Integer columns hold int64 values and can never contain missing values.
// Float columns hold float64 values rounded to their width, with NaN marking a
// missing value. Category columns hold level codes (-1 = missing) and object
// columns hold arbitrary values (nil = missing).
type Column struct {
	name    string
	dtype   DType
	ordered bool

	ints   []int64
	nums   []float64
	codes  []int32
	levels []string
	objs   []any
}

// NewFloatColumn returns a float64 column. NaN marks missing values.
func NewFloatColumn(name string, values []float64) *Column {
	return &Column{name: name, dtype: Float64, nums: append([]float64(nil), values...)}
}

// NewIntColumn returns an int64 column.
func NewIntColumn(name string, values []int64) *Column {
	return &Column{name: name, dtype: Int64, ints: append([]int64(nil), values...)}
}

// NewTypedColumn returns a numeric column of the given dtype. Integer dtypes
// reject missing, fractional and out-of-range values; float16 and float32
// values are rounded to their width.
func NewTypedColumn(name string, dtype DType, values []float64) (*Column, error) {
	switch {
	case dtype.IsInteger():
		ints := make([]int64, len(values))
		for i, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
				return nil, core.NewInvalidArgumentError(name, fmt.Sprintf("value %v at row %d is not an integer", v, i))
			}
			if v < -9.223372036854775808e18 || v >= 9.223372036854775808e18 {
				return nil, core.NewInvalidArgumentError(name, fmt.Sprintf("value %v at row %d overflows int64", v, i))
			}
			n := int64(v)
			if !dtype.Holds(n, n) {
				return nil, core.NewInvalidArgumentError(name, fmt.Sprintf("value %v at row %d overflows %s", v, i, dtype))
			}
			ints[i] = n
		}
		return &Column{name: name, dtype: dtype, ints: ints}, nil
	case dtype.IsFloat():
		nums := make([]float64, len(values))
		for i, v := range values {
			nums[i] = roundTo(dtype, v)
		}
		return &Column{name: name, dtype: dtype, nums: nums}, nil
	}
	return nil, core.NewInvalidArgumentError(name, fmt.Sprintf("dtype %s is not numeric", dtype))
}

// NewCategoricalColumn returns a category column. An empty string marks a
// missing value. When levels is nil the sorted distinct values are used;
// values absent from an explicit level list become missing.
func NewCategoricalColumn(name string, values []string, levels []string, ordered bool) *Column {
	if levels == nil {
		seen := make(map[string]struct{})
		for _, v := range values {
			if v == "" {
				continue
			}
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				levels = append(levels, v)
			}
		}
		sort.Strings(levels)
	}
	pos := make(map[string]int32, len(levels))
	for i, l := range levels {
		pos[l] = int32(i)
	}
	codes := make([]int32, len(values))
	for i, v := range values {
		code, ok := pos[v]
		if !ok || v == "" {
			code = -1
		}
		codes[i] = code
	}
	return &Column{
		name:    name,
		dtype:   Category,
		ordered: ordered,
		codes:   codes,
		levels:  append([]string(nil), levels...),
	}
}

// NewObjectColumn returns an object column. nil marks a missing value.
func NewObjectColumn(name string, values []any) *Column {
	return &Column{name: name, dtype: Object, objs: append([]any(nil), values...)}
}

func roundTo(dtype DType, v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	switch dtype {
	case Float16:
		return float64(float16.New(float32(v)).Float32())
	case Float32:
		return float64(float32(v))
	}
	return v
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// DType returns the storage dtype.
func (c *Column) DType() DType { return c.dtype }

// Ordered reports whether a category column has a meaningful level order.
func (c *Column) Ordered() bool { return c.ordered }

// Kind returns the semantic type of the column.
func (c *Column) Kind() Kind {
	switch {
	case c.dtype.IsInteger():
		return KindInteger
	case c.dtype.IsFloat():
		return KindFloat
	case c.dtype == Category && c.ordered:
		return KindOrdinal
	case c.dtype == Category:
		return KindNominal
	}
	return KindObject
}

// Len returns the number of rows.
func (c *Column) Len() int {
	switch {
	case c.dtype.IsInteger():
		return len(c.ints)
	case c.dtype.IsFloat():
		return len(c.nums)
	case c.dtype == Category:
		return len(c.codes)
	}
	return len(c.objs)
}

// Float returns row i as a float64. Missing and non-numeric values are NaN.
func (c *Column) Float(i int) float64 {
	switch {
	case c.dtype.IsInteger():
		return float64(c.ints[i])
	case c.dtype.IsFloat():
		return c.nums[i]
	}
	return math.NaN()
}

// Floats returns a copy of the column as float64 values.
func (c *Column) Floats() []float64 {
	out := make([]float64, c.Len())
	for i := range out {
		out[i] = c.Float(i)
	}
	return out
}

// Observed returns the non-missing values of a numeric column.
func (c *Column) Observed() []float64 {
	out := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v := c.Float(i); !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// IntRange returns the minimum and maximum of an integer column. ok is false
// for empty or non-integer columns.
func (c *Column) IntRange() (min, max int64, ok bool) {
	if !c.dtype.IsInteger() || len(c.ints) == 0 {
		return 0, 0, false
	}
	min, max = c.ints[0], c.ints[0]
	for _, v := range c.ints[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, true
}

// IsMissing reports whether row i holds no value.
func (c *Column) IsMissing(i int) bool {
	switch {
	case c.dtype.IsInteger():
		return false
	case c.dtype.IsFloat():
		return math.IsNaN(c.nums[i])
	case c.dtype == Category:
		return c.codes[i] < 0
	}
	return c.objs[i] == nil
}

// MissingCount returns the number of missing rows.
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// MissingRate returns the fraction of missing rows, 0 for an empty column.
func (c *Column) MissingRate() float64 {
	if c.Len() == 0 {
		return 0
	}
	return float64(c.MissingCount()) / float64(c.Len())
}

// Value returns row i as int64, float64, string or the raw object, and nil
// when the value is missing.
func (c *Column) Value(i int) any {
	if c.IsMissing(i) {
		return nil
	}
	switch {
	case c.dtype.IsInteger():
		return c.ints[i]
	case c.dtype.IsFloat():
		return c.nums[i]
	case c.dtype == Category:
		return c.levels[c.codes[i]]
	}
	return c.objs[i]
}

// String formats row i; missing values format as "NaN".
func (c *Column) String(i int) string {
	v := c.Value(i)
	switch x := v.(type) {
	case nil:
		return "NaN"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	}
	return fmt.Sprint(v)
}

// Levels returns a copy of the category levels.
func (c *Column) Levels() []string {
	return append([]string(nil), c.levels...)
}

// NUnique returns the number of distinct non-missing values.
func (c *Column) NUnique() int {
	seen := make(map[string]struct{})
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		seen[fmt.Sprintf("%T:%s", c.Value(i), c.String(i))] = struct{}{}
	}
	return len(seen)
}

// codeWidth mirrors the smallest signed integer able to index the levels.
func (c *Column) codeWidth() int {
	switch n := len(c.levels); {
	case n < math.MaxInt8:
		return 1
	case n < math.MaxInt16:
		return 2
	}
	return 4
}

// MemoryUsage estimates the bytes held by the column values, including the
// payload of strings and objects.
func (c *Column) MemoryUsage() int64 {
	switch {
	case c.dtype.IsNumeric():
		return int64(c.dtype.Width() * c.Len())
	case c.dtype == Category:
		total := int64(c.codeWidth() * len(c.codes))
		for _, l := range c.levels {
			total += int64(len(l)) + stringHeader
		}
		return total
	}
	var total int64
	for _, v := range c.objs {
		total += pointerSize + objectSize(v)
	}
	return total
}

const (
	pointerSize  = 8
	stringHeader = 16
)

func objectSize(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case string:
		return stringHeader + int64(len(x))
	case bool, int8, uint8:
		return 1
	case int16, uint16:
		return 2
	case int32, uint32, float32:
		return 4
	case int, int64, uint, uint64, float64:
		return 8
	}
	return 16
}

// Take returns the rows at the given positions, in order.
func (c *Column) Take(rows []int) *Column {
	out := &Column{name: c.name, dtype: c.dtype, ordered: c.ordered, levels: c.levels}
	switch {
	case c.dtype.IsInteger():
		out.ints = make([]int64, len(rows))
		for i, r := range rows {
			out.ints[i] = c.ints[r]
		}
	case c.dtype.IsFloat():
		out.nums = make([]float64, len(rows))
		for i, r := range rows {
			out.nums[i] = c.nums[r]
		}
	case c.dtype == Category:
		out.codes = make([]int32, len(rows))
		for i, r := range rows {
			out.codes[i] = c.codes[r]
		}
	default:
		out.objs = make([]any, len(rows))
		for i, r := range rows {
			out.objs[i] = c.objs[r]
		}
	}
	return out
}

// WithFloats returns a numeric column with the same name holding values.
// An integer column keeps its dtype when every value still fits it and is
// promoted to float64 otherwise; float columns keep their width.
func (c *Column) WithFloats(values []float64) (*Column, error) {
	if !c.dtype.IsNumeric() {
		return nil, core.NewTypeMismatchError(c.name, string(c.dtype))
	}
	if len(values) != c.Len() {
		return nil, core.NewInvalidArgumentError(c.name, fmt.Sprintf("got %d values for %d rows", len(values), c.Len()))
	}
	if c.dtype.IsInteger() {
		if out, err := NewTypedColumn(c.name, c.dtype, values); err == nil {
			return out, nil
		}
		return NewFloatColumn(c.name, values), nil
	}
	return NewTypedColumn(c.name, c.dtype, values)
}

// Cast converts a numeric column to another numeric dtype. Integer targets
// must hold every value.
func (c *Column) Cast(dtype DType) (*Column, error) {
	if !c.dtype.IsNumeric() {
		return nil, core.NewTypeMismatchError(c.name, string(c.dtype))
	}
	if dtype.IsInteger() && c.dtype.IsInteger() {
		min, max, ok := c.IntRange()
		if ok && !dtype.Holds(min, max) {
			return nil, core.NewInvalidArgumentError(c.name, fmt.Sprintf("range [%d, %d] does not fit %s", min, max, dtype))
		}
		return &Column{name: c.name, dtype: dtype, ints: append([]int64(nil), c.ints...)}, nil
	}
	return NewTypedColumn(c.name, dtype, c.Floats())
}

// AsCategorical converts an object column to a category column whose levels
// are the sorted string forms of the observed values.
func (c *Column) AsCategorical() (*Column, error) {
	if c.dtype == Category {
		return c, nil
	}
	if c.dtype != Object {
		return nil, core.NewInvalidArgumentError(c.name, fmt.Sprintf("cannot convert %s to category", c.dtype))
	}
	// Only nil is missing here; an empty string is a level of its own.
	strs := make([]string, len(c.objs))
	seen := make(map[string]struct{})
	var levels []string
	for i, v := range c.objs {
		if v == nil {
			continue
		}
		strs[i] = fmt.Sprint(v)
		if _, ok := seen[strs[i]]; !ok {
			seen[strs[i]] = struct{}{}
			levels = append(levels, strs[i])
		}
	}
	sort.Strings(levels)
	pos := make(map[string]int32, len(levels))
	for i, l := range levels {
		pos[l] = int32(i)
	}
	codes := make([]int32, len(c.objs))
	for i, v := range c.objs {
		if v == nil {
			codes[i] = -1
			continue
		}
		codes[i] = pos[strs[i]]
	}
	return &Column{name: c.name, dtype: Category, codes: codes, levels: levels}, nil
}
