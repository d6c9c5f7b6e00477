package vm

import "github.com/tansy-lang/tansy/lang/value"

// captureUpvalue implements spec.md §4.4.2's get_from_uplist: reuse an
// existing open upvalue watching this exact stack slot, or splice a new
// one into the descending-by-index list.
func (vm *VM) captureUpvalue(stackIndex int) *value.Upvalue {
	var prev *value.Upvalue
	cur := vm.openUpvalues
	for cur != nil && cur.StackIndex > stackIndex {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && cur.StackIndex == stackIndex {
		return cur
	}

	created := vm.heap.NewUpvalue(&vm.stack, stackIndex)
	created.Next = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue whose watched slot is >= from,
// per spec.md §4.4.2: called on OP_CLOSE_UPVALUE and at frame teardown.
func (vm *VM) closeUpvalues(from int) {
	for vm.openUpvalues != nil && vm.openUpvalues.StackIndex >= from {
		uv := vm.openUpvalues
		uv.Close()
		vm.openUpvalues = uv.Next
	}
}
