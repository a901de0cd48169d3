package engine

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/quillql/quill-wasm/errors"
)

// Type is the engine's scalar type lattice. TypeAny unifies with every type
// and only arises from NULL literals during inference.
type Type uint8

const (
	TypeAny Type = iota
	TypeInt
	TypeFloat
	TypeString
	TypeBool
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	default:
		return "any"
	}
}

// Value is one scalar during row-wise evaluation. The zero Value is NULL.
type Value struct {
	t     Type
	i     int64
	f     float64
	s     string
	b     bool
	valid bool // false means NULL
}

// Null returns the NULL value.
func Null() Value { return Value{} }

// Int returns an integer value.
func Int(v int64) Value { return Value{t: TypeInt, i: v, valid: true} }

// Float returns a floating-point value.
func Float(v float64) Value { return Value{t: TypeFloat, f: v, valid: true} }

// Str returns a string value.
func Str(v string) Value { return Value{t: TypeString, s: v, valid: true} }

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{t: TypeBool, b: v, valid: true} }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return !v.valid }

// Type returns the value's type; NULL values report TypeAny.
func (v Value) Type() Type {
	if !v.valid {
		return TypeAny
	}
	return v.t
}

// IntVal returns the integer payload. Valid only when Type is TypeInt.
func (v Value) IntVal() int64 { return v.i }

// FloatVal returns the float payload, coercing integers.
func (v Value) FloatVal() float64 {
	if v.t == TypeInt {
		return float64(v.i)
	}
	return v.f
}

// StrVal returns the string payload.
func (v Value) StrVal() string { return v.s }

// BoolVal returns the boolean payload.
func (v Value) BoolVal() bool { return v.b }

// Any returns the value as a plain Go value (nil for NULL), the shape handed
// to hosts and transfer encoders.
func (v Value) Any() any {
	if !v.valid {
		return nil
	}
	switch v.t {
	case TypeInt:
		return v.i
	case TypeFloat:
		return v.f
	case TypeString:
		return v.s
	case TypeBool:
		return v.b
	}
	return nil
}

func (v Value) String() string {
	if !v.valid {
		return "NULL"
	}
	return fmt.Sprintf("%v", v.Any())
}

// typeOfArrow maps an arrow column type onto the engine lattice. The engine
// reads more widths than it writes: narrow integers and float32 coming from
// CSV or IPC sources widen to int/float.
func typeOfArrow(dt arrow.DataType) (Type, error) {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32:
		return TypeInt, nil
	case arrow.FLOAT32, arrow.FLOAT64:
		return TypeFloat, nil
	case arrow.STRING, arrow.LARGE_STRING:
		return TypeString, nil
	case arrow.BOOL:
		return TypeBool, nil
	default:
		return TypeAny, errors.Plan("query", "unsupported column type %s", dt.Name())
	}
}

// arrowOf maps an engine type to the arrow type used for output columns.
func arrowOf(t Type) arrow.DataType {
	switch t {
	case TypeInt:
		return arrow.PrimitiveTypes.Int64
	case TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case TypeBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		// TypeString and all-NULL projections materialize as strings.
		return arrow.BinaryTypes.String
	}
}

// valueAt reads one cell from an arrow column.
func valueAt(col arrow.Array, i int) Value {
	if col.IsNull(i) {
		return Null()
	}
	switch arr := col.(type) {
	case *array.Int8:
		return Int(int64(arr.Value(i)))
	case *array.Int16:
		return Int(int64(arr.Value(i)))
	case *array.Int32:
		return Int(int64(arr.Value(i)))
	case *array.Int64:
		return Int(arr.Value(i))
	case *array.Uint8:
		return Int(int64(arr.Value(i)))
	case *array.Uint16:
		return Int(int64(arr.Value(i)))
	case *array.Uint32:
		return Int(int64(arr.Value(i)))
	case *array.Float32:
		return Float(float64(arr.Value(i)))
	case *array.Float64:
		return Float(arr.Value(i))
	case *array.String:
		return Str(arr.Value(i))
	case *array.LargeString:
		return Str(arr.Value(i))
	case *array.Boolean:
		return Bool(arr.Value(i))
	}
	return Null()
}
