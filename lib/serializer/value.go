package serializer

import (
	"fmt"
	"math"
	"strconv"
)

// --------------------------------------------------------------------------
// Value Kinds
// --------------------------------------------------------------------------

// Kind identifies the primitive type a value was written as
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt          // signed 32-bit integer
	KindLong         // signed 64-bit integer (doubles are stored as their IEEE-754 bits)
	KindFloat        // single precision float
	KindBool         // boolean
	KindString       // UTF-8 string
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// ParseKind converts a kind name (as returned by Kind.String) back to a Kind.
// "bool" is accepted as an alias for "boolean".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "int":
		return KindInt, nil
	case "long":
		return KindLong, nil
	case "float":
		return KindFloat, nil
	case "boolean", "bool":
		return KindBool, nil
	case "string":
		return KindString, nil
	default:
		return KindInvalid, fmt.Errorf("unknown value type %q (expected one of int, long, float, boolean, string)", s)
	}
}

// --------------------------------------------------------------------------
// Value Type
// --------------------------------------------------------------------------

// Value is a tagged primitive as stored in a namespace.
// Numeric and boolean payloads live in bits, strings in str.
type Value struct {
	kind Kind
	bits uint64
	str  string
}

func Int(v int32) Value     { return Value{kind: KindInt, bits: uint64(uint32(v))} }
func Long(v int64) Value    { return Value{kind: KindLong, bits: uint64(v)} }
func Float(v float32) Value { return Value{kind: KindFloat, bits: uint64(math.Float32bits(v))} }
func String(v string) Value { return Value{kind: KindString, str: v} }

func Bool(v bool) Value {
	if v {
		return Value{kind: KindBool, bits: 1}
	}
	return Value{kind: KindBool}
}

// Double stores a float64 as a long holding its IEEE-754 bit pattern.
// This is the on-disk representation of doubles; read it back with AsDouble.
func Double(v float64) Value {
	return Long(int64(math.Float64bits(v)))
}

// Kind returns the kind of the value
func (v Value) Kind() Kind {
	return v.kind
}

// IsValid reports whether the value carries one of the known kinds
func (v Value) IsValid() bool {
	return v.kind >= KindInt && v.kind <= KindString
}

func (v Value) AsInt() (int32, bool) {
	return int32(uint32(v.bits)), v.kind == KindInt
}

func (v Value) AsLong() (int64, bool) {
	return int64(v.bits), v.kind == KindLong
}

func (v Value) AsFloat() (float32, bool) {
	return math.Float32frombits(uint32(v.bits)), v.kind == KindFloat
}

// AsDouble reinterprets a long value's bits as a float64
func (v Value) AsDouble() (float64, bool) {
	return math.Float64frombits(v.bits), v.kind == KindLong
}

func (v Value) AsBool() (bool, bool) {
	return v.bits != 0, v.kind == KindBool
}

func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// Interface returns the value as int32, int64, float32, bool or string
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		i, _ := v.AsInt()
		return i
	case KindLong:
		l, _ := v.AsLong()
		return l
	case KindFloat:
		f, _ := v.AsFloat()
		return f
	case KindBool:
		b, _ := v.AsBool()
		return b
	case KindString:
		return v.str
	default:
		return nil
	}
}

// Equal compares kind and exact payload. Floats are compared bitwise, so NaN
// equals NaN with the same payload and 0 differs from -0.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.bits == o.bits && v.str == o.str
}

func (v Value) String() string {
	switch v.kind {
	case KindInt, KindLong:
		return fmt.Sprintf("%d", v.Interface())
	case KindFloat:
		f, _ := v.AsFloat()
		return strconv.FormatFloat(float64(f), 'g', -1, 32)
	case KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b)
	case KindString:
		return v.str
	default:
		return "<invalid>"
	}
}

// Parse converts the textual form s into a value of the given kind.
// Use ParseDouble for doubles.
func Parse(kind Kind, s string) (Value, error) {
	switch kind {
	case KindInt:
		i, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return Value{}, err
		}
		return Int(int32(i)), nil
	case KindLong:
		l, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, err
		}
		return Long(l), nil
	case KindFloat:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return Value{}, err
		}
		return Float(float32(f)), nil
	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case KindString:
		return String(s), nil
	default:
		return Value{}, fmt.Errorf("cannot parse value of kind %s", kind)
	}
}

// ParseDouble parses s as a float64 and stores it as a double
func ParseDouble(s string) (Value, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, err
	}
	return Double(f), nil
}
