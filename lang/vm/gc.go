package vm

import (
	"github.com/tansy-lang/tansy/lang/gc"
	"github.com/tansy-lang/tansy/lang/value"
)

// collectGarbage runs one mark-and-sweep pass rooted at every live VM
// reference, per spec.md §4.5's root list: the operand stack, globals,
// open upvalues, every active frame's closure, and the interned
// constructor name.
func (vm *VM) collectGarbage() {
	vm.heap.Collect(vm.markRoots)
}

func (vm *VM) markRoots(h *gc.Heap) {
	for _, v := range vm.stack {
		h.MarkValue(v)
	}
	for _, f := range vm.frames {
		h.MarkObject(f.closure)
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.Next {
		h.MarkObject(uv)
	}
	vm.globals.Each(func(k *value.String, v value.Value) {
		h.MarkObject(k)
		h.MarkValue(v)
	})
	h.MarkObject(vm.initString)
}
