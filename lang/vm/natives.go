package vm

import (
	"time"

	"github.com/tansy-lang/tansy/lang/value"
)

// registerNatives installs the global native functions SPEC_FULL.md's
// native-library supplement adds on top of spec.md §6.3's bare ABI
// description: clock, str and type, mirroring the small always-available
// standard library every clox-family implementation ships (Lox's own
// "clock" native, generalized with a couple of conversions tansy's
// dynamic typing makes immediately useful).
func registerNatives(vm *VM) {
	heap := vm.heap

	vm.defineNative("clock", 0, func(args []value.Value) (value.Value, error) {
		return value.Number(float64(time.Now().UnixNano()) / 1e9), nil
	})

	vm.defineNative("str", 1, func(args []value.Value) (value.Value, error) {
		return value.FromObj(heap.NewString(args[0].String())), nil
	})

	vm.defineNative("type", 1, func(args []value.Value) (value.Value, error) {
		return value.FromObj(heap.NewString(args[0].TypeName())), nil
	})
}

func (vm *VM) defineNative(name string, arity int, fn value.NativeFn) {
	n := vm.heap.NewNative(&value.Native{Name: name, Arity: arity, Fn: fn})
	vm.globals.Set(vm.heap.NewString(name), value.FromObj(n))
}
