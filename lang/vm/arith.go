package vm

import "github.com/tansy-lang/tansy/lang/value"

// add implements OP_ADD's overload, per spec.md §4.4.3: numeric + numeric
// adds; any combination of string/number concatenates, stringifying
// numbers via Value.String (which already matches the no-trailing-zero
// formatting the spec calls for).
func (vm *VM) add() error {
	b := vm.peek(0)
	a := vm.peek(1)

	switch {
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() + b.AsNumber()))
		return nil
	case isStringOrNumber(a) && isStringOrNumber(b):
		vm.pop()
		vm.pop()
		// The operands stay rooted on the stack while the result string is
		// allocated, and the result is pushed right after, per spec.md
		// §4.5's allocator-safety rule for transients.
		vm.push(a)
		vm.push(b)
		s := vm.heap.NewString(a.String() + b.String())
		vm.pop()
		vm.pop()
		vm.push(value.FromObj(s))
		return nil
	default:
		return vm.runtimeErrorf("operands must be numbers or strings")
	}
}

func isStringOrNumber(v value.Value) bool {
	return v.IsNumber() || v.Is(value.ObjString)
}

func (vm *VM) numericBinary(op func(a, b float64) float64) error {
	b := vm.peek(0)
	a := vm.peek(1)
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeErrorf("operands must be numbers")
	}
	vm.pop()
	vm.pop()
	vm.push(value.Number(op(a.AsNumber(), b.AsNumber())))
	return nil
}

func (vm *VM) comparisonBinary(op func(a, b float64) bool) error {
	b := vm.peek(0)
	a := vm.peek(1)
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeErrorf("operands must be numbers")
	}
	vm.pop()
	vm.pop()
	vm.push(value.Bool(op(a.AsNumber(), b.AsNumber())))
	return nil
}
