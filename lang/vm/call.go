package vm

import "github.com/tansy-lang/tansy/lang/value"

// callValue implements spec.md §4.4.1's call_value: it dispatches on the
// callee's concrete kind and either pushes a new call frame (Closure) or
// runs the call inline (Native, Class, BoundMethod).
func (vm *VM) callValue(callee value.Value, argc int) error {
	if !callee.IsObj() {
		return vm.runtimeErrorf("attempted to call non-function value")
	}
	switch obj := callee.AsObj().(type) {
	case *value.Closure:
		return vm.callClosure(obj, argc)
	case *value.Native:
		return vm.callNative(obj, argc)
	case *value.Class:
		return vm.callClass(obj, argc)
	case *value.BoundMethod:
		calleeIdx := len(vm.stack) - argc - 1
		vm.stack[calleeIdx] = obj.Receiver
		if native, ok := obj.Method.AsObj().(*value.Native); ok {
			return vm.callNativeWithReceiver(native, calleeIdx, argc)
		}
		return vm.callValue(obj.Method, argc)
	default:
		return vm.runtimeErrorf("attempted to call non-function value")
	}
}

func (vm *VM) callClosure(closure *value.Closure, argc int) error {
	if argc != closure.Proto.Arity {
		return vm.runtimeErrorf("expected %d arguments but got %d", closure.Proto.Arity, argc)
	}
	if len(vm.frames) >= maxCallDepth {
		return vm.runtimeErrorf("stack overflow")
	}
	vm.frames = append(vm.frames, frame{
		closure:   closure,
		slotsBase: len(vm.stack) - argc - 1,
	})
	return nil
}

// callNative copies the argument window (not the callee slot) off the
// operand stack, invokes fn, and replaces the callee slot and arguments
// with its result, per spec.md §6.3.
func (vm *VM) callNative(n *value.Native, argc int) error {
	if n.Arity >= 0 && argc != n.Arity {
		return vm.runtimeErrorf("expected %d arguments but got %d", n.Arity, argc)
	}
	base := len(vm.stack) - argc
	args := make([]value.Value, argc)
	copy(args, vm.stack[base:])

	result, err := n.Fn(args)
	if err != nil {
		return vm.runtimeErrorf("%s", err.Error())
	}
	vm.stack = vm.stack[:base-1]
	vm.push(result)
	return nil
}

// callNativeWithReceiver calls a Native that was resolved as a bound
// method (currently only Array's "push"/"pop", per spec.md §4.4.4):
// unlike a plain native call, the receiver occupies the callee slot and
// must be prepended to args, since NativeFn's args[0] convention expects
// it there (see value.ArrayPush/ArrayPop).
func (vm *VM) callNativeWithReceiver(n *value.Native, calleeIdx, argc int) error {
	if n.Arity >= 0 && argc != n.Arity {
		return vm.runtimeErrorf("expected %d arguments but got %d", n.Arity, argc)
	}
	args := make([]value.Value, argc+1)
	copy(args, vm.stack[calleeIdx:calleeIdx+argc+1])

	result, err := n.Fn(args)
	if err != nil {
		return vm.runtimeErrorf("%s", err.Error())
	}
	vm.stack = vm.stack[:calleeIdx]
	vm.push(result)
	return nil
}

// callClass implements instantiation: `ClassName(args)` allocates an
// Instance, replaces the callee slot with it, and -- if the class defines
// "init" -- calls it with the same arguments, per spec.md §4.4.1.
func (vm *VM) callClass(class *value.Class, argc int) error {
	instance := vm.heap.NewInstance(class)
	calleeIdx := len(vm.stack) - argc - 1
	vm.stack[calleeIdx] = value.FromObj(instance)

	if init, ok := class.Methods.Get(vm.initString); ok {
		return vm.callValue(init, argc)
	}
	if argc != 0 {
		return vm.runtimeErrorf("expected 0 arguments but got %d", argc)
	}
	return nil
}

// invoke implements spec.md §4.4.4's fused DOT_GET+CALL: it resolves
// name on the receiver at stack depth argc and, if found, calls it
// directly rather than materializing a BoundMethod first.
func (vm *VM) invoke(name *value.String, argc int) error {
	receiver := vm.peek(argc)

	if instance, ok := receiver.AsObj().(*value.Instance); ok && receiver.IsObj() {
		if field, ok := instance.Fields.Get(name); ok {
			vm.stack[len(vm.stack)-argc-1] = field
			return vm.callValue(field, argc)
		}
		return vm.invokeFromClass(instance.Class, name, argc)
	}

	if _, ok := receiver.AsObj().(*value.Array); ok && receiver.IsObj() {
		method, err := arrayMethod(name.Chars)
		if err != nil {
			return vm.runtimeErrorf("%s", err.Error())
		}
		native := method.AsObj().(*value.Native)
		return vm.callNativeWithReceiver(native, len(vm.stack)-argc-1, argc)
	}

	if tbl, ok := receiver.AsObj().(*value.TableObj); ok && receiver.IsObj() {
		field, ok := tbl.Entries.Get(name)
		if !ok {
			return vm.runtimeErrorf("table has no key %q", name.Chars)
		}
		vm.stack[len(vm.stack)-argc-1] = field
		return vm.callValue(field, argc)
	}

	return vm.runtimeErrorf("only instances, arrays and tables have methods")
}

func (vm *VM) invokeFromClass(class *value.Class, name *value.String, argc int) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeErrorf("undefined property %q", name.Chars)
	}
	return vm.callValue(method, argc)
}
