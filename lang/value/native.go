package value

import "fmt"

// NativeFn is the Go rendering of spec.md §6.3's native calling
// convention: "(argc, stack_base, &out) -> bool". Rather than hand the
// native a raw stack index, the VM slices stack[stackBase:stackBase+argc]
// once and passes it as args -- the same information, in an idiomatic Go
// shape. A returned error plays the role of the C ABI's "false" result:
// the VM reports it as a runtime error and aborts the call.
//
// For a BoundMethod wrapping a *Native (array.push/array.pop), args[0] is
// the receiver and the remaining elements are the call's real arguments;
// see lang/vm's call_value.
type NativeFn func(args []Value) (Value, error)

// Native is the heap object backing built-in functions and the methods
// pre-installed on Array values, per spec.md §3.2.
type Native struct {
	ObjHeader
	Name  string
	Arity int // -1 means variadic/unchecked
	Fn    NativeFn
}

var _ Obj = (*Native)(nil)

func (n *Native) Kind() ObjKind  { return ObjNative }
func (n *Native) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }
