// Package vm implements the stack-based bytecode interpreter described in
// spec.md §4.4: a single dispatch loop over call frames sharing one
// operand stack, open/closed upvalues, and a tracing mark-sweep heap.
package vm

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tansy-lang/tansy/lang/compiler"
	"github.com/tansy-lang/tansy/lang/gc"
	"github.com/tansy-lang/tansy/lang/value"
)

// maxCallDepth bounds the call-frame stack, per spec.md §4.4.1's "maximum
// call depth is a fixed compile-time constant".
const maxCallDepth = 255

// frame is one active call's view into the shared operand stack and its
// closure's bytecode.
type frame struct {
	closure   *value.Closure
	ip        int
	slotsBase int // index into vm.stack of this frame's slot 0
}

// VM owns the operand stack, the call-frame stack, the global namespace,
// and the heap every value is allocated from. One VM runs one program
// top to bottom; it is not safe for concurrent use, per spec.md §5's
// single-threaded execution model.
type VM struct {
	stack  []value.Value
	frames []frame

	globals *value.HashMap
	heap    *gc.Heap

	openUpvalues *value.Upvalue // sorted descending by StackIndex

	initString *value.String

	// ctx/steps are an ambient enrichment over spec.md §5 ("cancellation
	// not supported"): a long-running or runaway script can still be
	// interrupted cooperatively between instructions, the same way a
	// server request handler would be, without changing any bytecode
	// semantics. A nil ctx (the zero value) disables the check entirely.
	ctx   context.Context
	steps uint64

	stdout io.Writer
}

// New creates a VM backed by heap, whose only globals are the natives
// clock, str and type, and with `print` wired to os.Stdout. Use WithOutput (mirroring mainer.Stdio's
// injectable-stream idiom, the same discipline the CLI layer uses for
// testability) to redirect it.
func New(heap *gc.Heap) *VM {
	vm := &VM{heap: heap, globals: value.NewHashMap(), stdout: os.Stdout}
	vm.initString = heap.NewString("init")
	registerNatives(vm)
	return vm
}

// WithOutput redirects `print` output to w.
func (vm *VM) WithOutput(w io.Writer) *VM {
	vm.stdout = w
	return vm
}

func (vm *VM) printer(v value.Value) {
	fmt.Fprintln(vm.stdout, v.String())
}

// WithContext attaches ctx; the dispatch loop checks ctx.Err() every few
// thousand instructions and aborts with a runtime error if it's done.
func (vm *VM) WithContext(ctx context.Context) *VM {
	vm.ctx = ctx
	return vm
}

// Interpret compiles and runs src under filename, per the CLI's `run`
// entry point. Compile errors are returned as-is (a compiler.ErrorList);
// runtime errors are returned as *RuntimeError.
func (vm *VM) Interpret(filename, src string) error {
	proto, err := compiler.Compile(filename, src, vm.heap)
	if err != nil {
		return err
	}
	closure := vm.heap.NewClosure(proto)
	vm.push(value.FromObj(closure))
	if err := vm.callValue(value.FromObj(closure), 0); err != nil {
		return err
	}
	return vm.run()
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() value.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) resetStack() {
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	vm.openUpvalues = nil
}

func (vm *VM) currentFrame() *frame { return &vm.frames[len(vm.frames)-1] }

func (vm *VM) chunk() *value.Chunk { return vm.currentFrame().closure.Proto.Chunk }

// runtimeErrorf builds a *RuntimeError with a stack trace snapshot of
// every active frame, innermost last, per spec.md §4.4.1/§9's error
// reporting requirements. It then resets the operand stack, the frames
// and the open-upvalue list; callers unwind by returning the error up to
// Interpret.
func (vm *VM) runtimeErrorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	trace := make([]StackFrame, 0, len(vm.frames))
	for _, f := range vm.frames {
		name := "<script>"
		if f.closure.Proto.Name != nil && f.closure.Proto.Name.Chars != "" {
			name = f.closure.Proto.Name.Chars
		}
		line := 0
		if f.ip > 0 {
			line = f.closure.Proto.Chunk.GetLine(f.ip - 1)
		}
		trace = append(trace, StackFrame{Name: name, Line: line})
	}
	err := newRuntimeError(msg, trace)
	vm.resetStack()
	return err
}
