package value

import (
	"fmt"
	"strings"
)

// Array is the heap object backing array literals `[v, ...]`. Its
// "push"/"pop" methods (spec.md §3.2) are dispatched by name rather than
// through a populated method table: see ArrayPush/ArrayPop below and
// lang/vm's attribute-access handling.
type Array struct {
	ObjHeader
	Items []Value
}

var _ Obj = (*Array)(nil)

func NewArray(items []Value) *Array {
	return &Array{Items: items}
}

func (a *Array) Kind() ObjKind { return ObjArray }

func (a *Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a.Items {
		if i > 0 {
			sb.WriteString(", ")
		}
		if v.Is(ObjString) {
			sb.WriteByte('"')
			sb.WriteString(v.String())
			sb.WriteByte('"')
		} else {
			sb.WriteString(v.String())
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

func (a *Array) Len() int { return len(a.Items) }

// Index resolves a negative-or-positive subscript per spec.md §4.4.4
// ("allows negative indices counted from the end"). ok is false if the
// index is out of range.
func (a *Array) Index(i int) (int, bool) {
	if i < 0 {
		i += len(a.Items)
	}
	if i < 0 || i >= len(a.Items) {
		return 0, false
	}
	return i, true
}

func (a *Array) Push(v Value) { a.Items = append(a.Items, v) }

func (a *Array) Pop() (Value, bool) {
	if len(a.Items) == 0 {
		return Nil, false
	}
	v := a.Items[len(a.Items)-1]
	a.Items = a.Items[:len(a.Items)-1]
	return v, true
}

// ArrayPush and ArrayPop are the shared Native singletons bound as
// BoundMethod.Method whenever OP_DOT_GET resolves "push" or "pop" on an
// Array receiver; OP_INVOKE calls them directly without a BoundMethod.
// args[0] is always the receiver array, supplied by the VM's
// callNativeWithReceiver in both cases.
var (
	ArrayPush = &Native{Name: "push", Arity: 1, Fn: func(args []Value) (Value, error) {
		arr := args[0].AsObj().(*Array)
		arr.Push(args[1])
		return Nil, nil
	}}
	ArrayPop = &Native{Name: "pop", Arity: 0, Fn: func(args []Value) (Value, error) {
		arr := args[0].AsObj().(*Array)
		v, ok := arr.Pop()
		if !ok {
			return Nil, fmt.Errorf("pop from empty array")
		}
		return v, nil
	}}
)
