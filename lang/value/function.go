package value

import "fmt"

// FunctionProto is the compiled, not-yet-closed-over form of a function:
// spec.md §3.2's "Function" heap object. It is referenced from the
// constant pool of the enclosing chunk and wrapped in a Closure each time
// OP_CLOSURE runs.
type FunctionProto struct {
	ObjHeader
	Name         *String // the compiler names the top-level script function "<script>"
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
}

var _ Obj = (*FunctionProto)(nil)

func (f *FunctionProto) Kind() ObjKind { return ObjFunctionProto }

func (f *FunctionProto) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// Upvalue is the indirection a Closure uses to share a captured variable
// with the enclosing scope it was created in, per spec.md §3.2/§4.4.2. An
// open upvalue reads and writes the live VM stack slot at StackIndex;
// closing it copies that slot's value into Closed and switches Get/Set
// to that field, so reads/writes through them are unaffected by the
// transition.
type Upvalue struct {
	ObjHeader
	StackIndex int // index into the VM stack this upvalue watches while open
	Closed     Value
	isClosed   bool
	stack      *[]Value // the VM's operand stack backing array, shared across all open upvalues
	Next       *Upvalue // next open upvalue, list sorted by descending StackIndex
}

var _ Obj = (*Upvalue)(nil)

func (u *Upvalue) Kind() ObjKind  { return ObjUpvalue }
func (u *Upvalue) String() string { return "upvalue" }

// NewOpenUpvalue creates an upvalue watching stack[index], where stack is
// a pointer to the VM's operand-stack slice (so growth via append is
// observed by Get/Set while the upvalue is open).
func NewOpenUpvalue(stack *[]Value, index int) *Upvalue {
	return &Upvalue{StackIndex: index, stack: stack}
}

func (u *Upvalue) Get() Value {
	if u.isClosed {
		return u.Closed
	}
	return (*u.stack)[u.StackIndex]
}

func (u *Upvalue) Set(v Value) {
	if u.isClosed {
		u.Closed = v
		return
	}
	(*u.stack)[u.StackIndex] = v
}

// Close copies the watched stack slot's current value into the upvalue's
// own storage and severs its dependency on the stack, per spec.md §4.4.2.
func (u *Upvalue) Close() {
	if u.isClosed {
		return
	}
	u.Closed = (*u.stack)[u.StackIndex]
	u.isClosed = true
	u.stack = nil
}

// Closure is a function value with its captured free-variable cells, per
// spec.md §3.2. Created at runtime each time OP_CLOSURE executes.
type Closure struct {
	ObjHeader
	Proto    *FunctionProto
	Upvalues []*Upvalue
}

var _ Obj = (*Closure)(nil)

func NewClosure(proto *FunctionProto) *Closure {
	return &Closure{Proto: proto, Upvalues: make([]*Upvalue, proto.UpvalueCount)}
}

func (c *Closure) Kind() ObjKind { return ObjClosure }
func (c *Closure) String() string { return c.Proto.String() }
