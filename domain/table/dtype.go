package table

import (
	"math"
)

// DType is the storage representation of a column.
type DType string

const (
	Int8     DType = "int8"
	Int16    DType = "int16"
	Int32    DType = "int32"
	Int64    DType = "int64"
	Uint8    DType = "uint8"
	Uint16   DType = "uint16"
	Uint32   DType = "uint32"
	Uint64   DType = "uint64"
	Float16  DType = "float16"
	Float32  DType = "float32"
	Float64  DType = "float64"
	Category DType = "category"
	Object   DType = "object"
)

// Kind is the semantic type of a column, derived from its dtype and, for
// categorical columns, its orderedness.
type Kind string

const (
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
	KindOrdinal Kind = "ordinal"
	KindNominal Kind = "nominal"
	KindObject  Kind = "object"
)

// IsNumeric reports whether the kind holds numbers.
func (k Kind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat
}

// IsCategorical reports whether the kind holds category levels.
func (k Kind) IsCategorical() bool {
	return k == KindOrdinal || k == KindNominal
}

// IsInteger reports whether d is a fixed-width integer type.
func (d DType) IsInteger() bool {
	switch d {
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// IsUnsigned reports whether d is an unsigned integer type.
func (d DType) IsUnsigned() bool {
	switch d {
	case Uint8, Uint16, Uint32, Uint64:
		return true
	}
	return false
}

// IsFloat reports whether d is a floating-point type.
func (d DType) IsFloat() bool {
	return d == Float16 || d == Float32 || d == Float64
}

// IsNumeric reports whether d stores numbers.
func (d DType) IsNumeric() bool {
	return d.IsInteger() || d.IsFloat()
}

// Valid reports whether d is one of the known dtypes.
func (d DType) Valid() bool {
	return d.IsNumeric() || d == Category || d == Object
}

// Width returns the number of bytes one value occupies. Category and object
// columns have no fixed width and report 0.
func (d DType) Width() int {
	switch d {
	case Int8, Uint8:
		return 1
	case Int16, Uint16, Float16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	}
	return 0
}

// IntBounds returns the inclusive range of an integer dtype. ok is false for
// non-integer dtypes.
func (d DType) IntBounds() (lo int64, hi uint64, ok bool) {
	switch d {
	case Int8:
		return math.MinInt8, math.MaxInt8, true
	case Int16:
		return math.MinInt16, math.MaxInt16, true
	case Int32:
		return math.MinInt32, math.MaxInt32, true
	case Int64:
		return math.MinInt64, math.MaxInt64, true
	case Uint8:
		return 0, math.MaxUint8, true
	case Uint16:
		return 0, math.MaxUint16, true
	case Uint32:
		return 0, math.MaxUint32, true
	case Uint64:
		return 0, math.MaxUint64, true
	}
	return 0, 0, false
}

// Holds reports whether every integer in [min, max] is representable by d.
func (d DType) Holds(min, max int64) bool {
	lo, hi, ok := d.IntBounds()
	if !ok || min > max {
		return false
	}
	if min < lo {
		return false
	}
	return max < 0 || uint64(max) <= hi
}

// IntegerCandidates lists the integer dtypes from narrowest to widest.
// Signed and unsigned types of one width are adjacent, signed first.
var IntegerCandidates = []DType{Int8, Uint8, Int16, Uint16, Int32, Uint32, Int64, Uint64}
