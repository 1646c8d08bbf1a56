package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// --------------------------------------------------------------------------
// Kinds
// --------------------------------------------------------------------------

// Kind identifies the type of a Value
type Kind uint8

const (
	KindEmpty Kind = iota // No value stored (hole)
	KindUndefined
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Value
// --------------------------------------------------------------------------

// Value is a script value. The zero Value is the empty slot.
type Value struct {
	kind Kind
	num  float64 // number payload, 1 or 0 for booleans
	str  string
	obj  *Object
}

var (
	Empty     = Value{}
	Undefined = Value{kind: KindUndefined}
	Null      = Value{kind: KindNull}
	True      = Value{kind: KindBool, num: 1}
	False     = Value{kind: KindBool}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

func Int(i int) Value {
	return Number(float64(i))
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// FromObject wraps an object. A nil object yields Null.
func FromObject(o *Object) Value {
	if o == nil {
		return Null
	}
	return Value{kind: KindObject, obj: o}
}

func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v is the empty slot
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// IsDefined reports whether v holds something other than a hole or undefined
func (v Value) IsDefined() bool { return v.kind > KindUndefined }

func (v Value) Object() *Object {
	return v.obj
}

// Same reports identity: same kind and payload, objects compared by pointer.
// NaN is the same as NaN so that round trips of stored numbers can be checked.
func Same(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindBool:
		return a.num == b.num
	case KindNumber:
		if math.IsNaN(a.num) && math.IsNaN(b.num) {
			return true
		}
		return a.num == b.num && math.Signbit(a.num) == math.Signbit(b.num)
	case KindString:
		return a.str == b.str
	case KindObject:
		return a.obj == b.obj
	default:
		return true
	}
}

// String renders v for diagnostics. Unlike ToString it never fails and
// distinguishes holes and strings.
func (v Value) String() string {
	switch v.kind {
	case KindEmpty:
		return "<empty>"
	case KindString:
		return strconv.Quote(v.str)
	case KindObject:
		return fmt.Sprintf("[object %s]", v.obj.Class)
	default:
		s, _ := ToString(v)
		return s
	}
}

// --------------------------------------------------------------------------
// Objects
// --------------------------------------------------------------------------

// Object is a heap allocated value with identity.
// Objects are created by a Heap and are only reclaimed by its Collect pass.
type Object struct {
	Class string

	// ToStringFunc overrides the default "[object Class]" conversion. It is the
	// host hook used by the string sort and may fail.
	ToStringFunc func() (string, error)

	// Inner is traced when the object is marked, e.g. an array instance.
	Inner Marker

	marked bool
	heap   *Heap
}

// Marked reports whether the object survived the current mark phase
func (o *Object) Marked() bool {
	return o.marked
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	ErrNotSerializable = errors.New("value: object values cannot be serialized")
	ErrInvalidEncoding = errors.New("value: invalid encoding")
)
