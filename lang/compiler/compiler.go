package compiler

import (
	"github.com/tansy-lang/tansy/lang/gc"
	tanstoken "github.com/tansy-lang/tansy/lang/token"
	"github.com/tansy-lang/tansy/lang/value"
)

// FuncType distinguishes the top-level script body from the three kinds
// of callable tansy compiles a Compiler frame for, per spec.md §4.2.6:
// plain functions, methods, and the implicit instance constructor.
type FuncType int

const (
	TypeScript FuncType = iota
	TypeFunction
	TypeMethod
	TypeInit
)

// local is one entry in a Compiler's stack-slot table, per spec.md §4.2.2.
// Depth is -1 between a local's declaration and its initializer finishing,
// so reading it inside its own initializer is a compile error.
type local struct {
	name       string
	depth      int
	isConst    bool
	isCaptured bool
}

// upvalueRef records how a Compiler's enclosing frame reaches a captured
// variable: either directly off its own locals (isLocal) or by forwarding
// one of its own upvalues.
type upvalueRef struct {
	index   uint32
	isLocal bool
}

// loopCompiler tracks the bookkeeping needed to lower continue for one
// enclosing loop, per spec.md §4.2.5. It is kept separate from
// breakCompiler because a switch inside a loop is breakable but must not
// capture a nested `continue`, which has to keep targeting the loop.
type loopCompiler struct {
	enclosing  *loopCompiler
	loopStart  int
	scopeDepth int
}

// breakCompiler tracks the enclosing breakable construct -- a loop or a
// switch -- that a `break` statement jumps out of.
type breakCompiler struct {
	enclosing  *breakCompiler
	scopeDepth int
	breakJumps []int
}

// classCompiler tracks nested class bodies so `this` and `init` can be
// validated, per spec.md §4.2.6.
type classCompiler struct {
	enclosing *classCompiler
}

// Compiler holds all per-function compilation state: its emitted chunk,
// its lexical scope of locals, and its upvalue table. Compilers form a
// linked chain through enclosing that mirrors the lexical nesting of
// function declarations, the same shape as the teacher's nested fcomp
// chain generalized from basic-block linearization to direct single-pass
// emission.
type Compiler struct {
	enclosing *Compiler

	parser *parser
	heap   *gc.Heap

	funcType FuncType
	proto    *value.FunctionProto

	locals     []local
	scopeDepth int
	upvalues   []upvalueRef

	loop  *loopCompiler
	brk   *breakCompiler
	class *classCompiler
}

func newCompiler(p *parser, heap *gc.Heap, enclosing *Compiler, ft FuncType, name string) *Compiler {
	c := &Compiler{
		enclosing: enclosing,
		parser:    p,
		heap:      heap,
		funcType:  ft,
		proto:     heap.NewFunctionProto(heap.NewString(name), 0, 0),
	}
	if enclosing != nil {
		c.class = enclosing.class
	}
	// Slot 0 is reserved: named "this" so method/init bodies resolve the
	// receiver through the ordinary local-variable path, left unnameable
	// (empty name, matches no identifier token) for plain functions and
	// the top-level script, per spec.md §4.2.2.
	self := "this"
	if ft == TypeFunction || ft == TypeScript {
		self = ""
	}
	c.locals = append(c.locals, local{name: self, depth: 0})
	return c
}

func (c *Compiler) chunk() *value.Chunk { return c.proto.Chunk }

// Compile compiles src as a complete tansy program and returns the
// top-level script function, ready to be wrapped in a closure and
// invoked by the VM with no arguments. filename is used only for
// diagnostics. Parse/compile errors are returned as a compiler.ErrorList
// (a go/scanner.ErrorList alias), matching the teacher's error-reporting
// idiom.
func Compile(filename, src string, heap *gc.Heap) (*value.FunctionProto, error) {
	p := newParser(filename, src)
	c := newCompiler(p, heap, nil, TypeScript, "<script>")

	p.advance()
	for !p.match(tanstoken.EOF) {
		c.declaration()
	}
	proto := c.endCompiler()

	if p.hadError() {
		return nil, p.errors.Err()
	}
	return proto, nil
}

// endCompiler emits the implicit trailing return and returns the proto
// this Compiler built.
func (c *Compiler) endCompiler() *value.FunctionProto {
	c.emitReturn()
	return c.proto
}

func (c *Compiler) beginScope() { c.scopeDepth++ }

// endScope pops every local declared in the scope just closed, emitting
// OP_CLOSE_UPVALUE instead of OP_POP for any local that an inner closure
// captured, per spec.md §4.4's upvalue-closing rule.
func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		last := c.locals[len(c.locals)-1]
		if last.isCaptured {
			c.emitByte(byte(OP_CLOSE_UPVALUE))
		} else {
			c.emitByte(byte(OP_POP))
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}
