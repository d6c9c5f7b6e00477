package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which of Value's fields is meaningful.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is the tagged union every tansy expression evaluates to: nil,
// boolean, double-precision number, or a heap object reference. See the
// value package doc comment for why this, rather than NaN-boxing, is the
// chosen representation.
type Value struct {
	kind Kind
	num  float64 // boolean stored as 0/1, number stored as-is
	obj  Obj
}

var Nil = Value{kind: KindNil}

func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, num: 1}
	}
	return Value{kind: KindBool, num: 0}
}

func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

func FromObj(o Obj) Value { return Value{kind: KindObj, obj: o} }

func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObj() bool    { return v.kind == KindObj }

func (v Value) AsBool() bool     { return v.num != 0 }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsObj() Obj        { return v.obj }

func (v Value) ObjKind() (ObjKind, bool) {
	if v.kind != KindObj {
		return 0, false
	}
	return v.obj.Kind(), true
}

// Is reports whether v holds an object of the given kind.
func (v Value) Is(k ObjKind) bool {
	kind, ok := v.ObjKind()
	return ok && kind == k
}

// Falsey implements tansy truthiness: nil and false are falsey, everything
// else (including 0 and "") is truthy.
func (v Value) Falsey() bool {
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return !v.AsBool()
	default:
		return false
	}
}

// Equal implements spec.md §3.1's equality: bitwise equal representations
// compare equal. For the tagged-union rendering this means: same kind,
// and (for numbers) IEEE-754 equality, (for booleans) same boolean, (for
// objects) same underlying object identity -- which for interned strings
// reduces to pointer equality per spec.md §3.3.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool, KindNumber:
		return a.num == b.num
	case KindObj:
		if as, ok := a.obj.(*String); ok {
			bs, ok := b.obj.(*String)
			return ok && as == bs
		}
		return a.obj == b.obj
	}
	return false
}

// String renders v the way `print` and string concatenation do: integer
// valued doubles print without a trailing ".0" or trailing zeros, matching
// spec.md §4.4.3.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.num)
	case KindObj:
		return v.obj.String()
	default:
		return fmt.Sprintf("<invalid value kind %d>", v.kind)
	}
}

// TypeName returns the short type-name string returned by the `type`
// native.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindObj:
		return v.obj.Kind().String()
	default:
		return "unknown"
	}
}

func formatNumber(n float64) string {
	s := strconv.FormatFloat(n, 'f', -1, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
