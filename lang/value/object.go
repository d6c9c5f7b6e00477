// Package value implements the tansy object model: the tagged Value type
// and the heap object kinds it can point to.
//
// spec.md permits either a NaN-boxed 64-bit word or a tagged-union
// representation for Value, as long as equality semantics are preserved
// (see Value.Equal). This package takes the tagged-union route: Go gives
// no safe way to stash a live heap pointer inside the payload bits of a
// float64 the way the original C implementation did, and reaching for
// unsafe.Pointer tricks to emulate it would fight the language instead of
// working with it. DESIGN.md records this as a decided Open Question.
package value

// ObjKind identifies the concrete heap object variant behind an Obj.
type ObjKind uint8

const (
	ObjString ObjKind = iota
	ObjFunctionProto
	ObjClosure
	ObjUpvalue
	ObjClass
	ObjInstance
	ObjBoundMethod
	ObjTable
	ObjArray
	ObjNative
)

func (k ObjKind) String() string {
	switch k {
	case ObjString:
		return "string"
	case ObjFunctionProto:
		return "function"
	case ObjClosure:
		return "closure"
	case ObjUpvalue:
		return "upvalue"
	case ObjClass:
		return "class"
	case ObjInstance:
		return "instance"
	case ObjBoundMethod:
		return "bound method"
	case ObjTable:
		return "table"
	case ObjArray:
		return "array"
	case ObjNative:
		return "native"
	default:
		return "unknown"
	}
}

// Obj is implemented by every heap-allocated object kind. It is the
// Go rendering of spec.md §3.2's "shared header": every concrete type
// embeds an ObjHeader and exposes it through Header, the way the teacher's
// runtime values each implement a two-method shape (String/Type) over a
// concrete struct (lang/machine/value.go, lang/types/value.go).
type Obj interface {
	Kind() ObjKind
	String() string
	Header() *ObjHeader
}

// ObjHeader is embedded in every heap object. Next links the object into
// the VM's intrusive all-objects list (the free-traversal list the
// garbage collector sweeps); Marked is the GC's mark bit.
type ObjHeader struct {
	Next   Obj
	Marked bool
	Size   int // bytes charged against the heap's allocation budget
}

func (h *ObjHeader) Header() *ObjHeader { return h }
