package vm

import (
	"github.com/tansy-lang/tansy/lang/compiler"
	"github.com/tansy-lang/tansy/lang/value"
)

// contextCheckInterval bounds how often the dispatch loop pays the cost
// of a context.Context cancellation check, per the ambient enrichment
// documented in vm.go's VM.ctx field.
const contextCheckInterval = 4096

// run drains call frames until the outermost one returns, executing one
// instruction per iteration of the loop spec.md §4.4 describes: read,
// switch, mutate stack/ip/frames.
func (vm *VM) run() error {
	f := vm.currentFrame()

	readByte := func() byte {
		b := f.closure.Proto.Chunk.Code[f.ip]
		f.ip++
		return b
	}
	readU16 := func() int {
		hi, lo := readByte(), readByte()
		return int(hi)<<8 | int(lo)
	}
	readU32 := func() uint32 {
		b0, b1, b2, b3 := readByte(), readByte(), readByte(), readByte()
		return uint32(b0)<<24 | uint32(b1)<<16 | uint32(b2)<<8 | uint32(b3)
	}
	readConstantLong := func() value.Value {
		return f.closure.Proto.Chunk.ConstantsLong[readU32()]
	}
	readConstant8 := func() value.Value {
		return f.closure.Proto.Chunk.Constants8[readByte()]
	}
	readStringLong := func() *value.String {
		return readConstantLong().AsObj().(*value.String)
	}

	if vm.heap.ShouldCollect() {
		vm.collectGarbage()
	}

	for {
		vm.steps++
		if vm.ctx != nil && vm.steps%contextCheckInterval == 0 {
			if err := vm.ctx.Err(); err != nil {
				return vm.runtimeErrorf("execution cancelled: %s", err.Error())
			}
		}

		op := compiler.Opcode(readByte())
		switch op {
		case compiler.OP_NOP, compiler.OP_MARK_JUMP:
			if op == compiler.OP_MARK_JUMP {
				readU16()
			}

		case compiler.OP_POP:
			vm.pop()
		case compiler.OP_TRUE:
			vm.push(value.Bool(true))
		case compiler.OP_FALSE:
			vm.push(value.Bool(false))
		case compiler.OP_NIL:
			vm.push(value.Nil)
		case compiler.OP_CONSTANT:
			vm.push(readConstant8())
		case compiler.OP_CONSTANT_LONG:
			vm.push(readConstantLong())

		case compiler.OP_ADD:
			if err := vm.add(); err != nil {
				return err
			}
		case compiler.OP_SUBTRACT:
			if err := vm.numericBinary(func(a, b float64) float64 { return a - b }); err != nil {
				return err
			}
		case compiler.OP_MULTIPLY:
			if err := vm.numericBinary(func(a, b float64) float64 { return a * b }); err != nil {
				return err
			}
		case compiler.OP_DIVIDE:
			if err := vm.numericBinary(func(a, b float64) float64 { return a / b }); err != nil {
				return err
			}
		case compiler.OP_NEGATE:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeErrorf("operand must be a number")
			}
			vm.push(value.Number(-vm.pop().AsNumber()))
		case compiler.OP_BANG:
			vm.push(value.Bool(vm.pop().Falsey()))
		case compiler.OP_GREATER:
			if err := vm.comparisonBinary(func(a, b float64) bool { return a > b }); err != nil {
				return err
			}
		case compiler.OP_LESS:
			if err := vm.comparisonBinary(func(a, b float64) bool { return a < b }); err != nil {
				return err
			}
		case compiler.OP_EQUAL_EQUAL:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case compiler.OP_TERNARY:
			elseVal := vm.pop()
			thenVal := vm.pop()
			cond := vm.pop()
			if cond.Falsey() {
				vm.push(elseVal)
			} else {
				vm.push(thenVal)
			}

		case compiler.OP_GLOBAL_VAR:
			name := readStringLong()
			vm.globals.Set(name, vm.pop())
		case compiler.OP_GET_GLOBAL:
			name := readStringLong()
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeErrorf("undefined variable %q", name.Chars)
			}
			vm.push(v)
		case compiler.OP_SET_GLOBAL:
			name := readStringLong()
			if _, ok := vm.globals.Get(name); !ok {
				return vm.runtimeErrorf("undefined variable %q", name.Chars)
			}
			vm.globals.Set(name, vm.peek(0))
		case compiler.OP_GET_LOCAL:
			slot := readU32()
			vm.push(vm.stack[f.slotsBase+int(slot)])
		case compiler.OP_SET_LOCAL:
			slot := readU32()
			vm.stack[f.slotsBase+int(slot)] = vm.peek(0)
		case compiler.OP_GET_UPVALUE:
			slot := readU32()
			vm.push(f.closure.Upvalues[slot].Get())
		case compiler.OP_SET_UPVALUE:
			slot := readU32()
			f.closure.Upvalues[slot].Set(vm.peek(0))

		case compiler.OP_JUMP:
			offset := readU16()
			f.ip += offset
		case compiler.OP_JUMP_IF_FALSE:
			offset := readU16()
			if vm.peek(0).Falsey() {
				f.ip += offset
			}
		case compiler.OP_JUMP_IF_TRUE:
			offset := readU16()
			if !vm.peek(0).Falsey() {
				f.ip += offset
			}
		case compiler.OP_LOOP:
			offset := readU16()
			f.ip -= offset

		case compiler.OP_SWITCH:
			vm.push(value.Bool(false))
		case compiler.OP_CASE_COMPARE:
			caseVal := vm.pop()
			matched := vm.pop()
			subject := vm.peek(0)
			vm.push(value.Bool(matched.AsBool() || value.Equal(subject, caseVal)))
		case compiler.OP_SWITCH_JUMP:
			// Reserved by spec.md §4.3 for a fused pop-then-jump break
			// encoding; the compiler never emits it (see DESIGN.md), so
			// this is a no-op consistent with MARK_JUMP's treatment.
			readByte()
			readByte()

		case compiler.OP_CALL:
			argc := int(readByte())
			callee := vm.peek(argc)
			if err := vm.callValue(callee, argc); err != nil {
				return err
			}
			f = vm.currentFrame()
		case compiler.OP_INVOKE:
			argc := int(readByte())
			name := readStringLong()
			if err := vm.invoke(name, argc); err != nil {
				return err
			}
			f = vm.currentFrame()
		case compiler.OP_CLOSURE:
			proto := readConstantLong().AsObj().(*value.FunctionProto)
			closure := vm.heap.NewClosure(proto)
			vm.push(value.FromObj(closure))
			for i := 0; i < proto.UpvalueCount; i++ {
				isLocal := readByte()
				index := readU32()
				if isLocal == 1 {
					closure.Upvalues[i] = vm.captureUpvalue(f.slotsBase + int(index))
				} else {
					closure.Upvalues[i] = f.closure.Upvalues[index]
				}
			}
		case compiler.OP_CLOSE_UPVALUE:
			vm.closeUpvalues(len(vm.stack) - 1)
			vm.pop()
		case compiler.OP_RETURN:
			result := vm.pop()
			closedFrom := f.slotsBase
			vm.closeUpvalues(closedFrom)
			vm.frames = vm.frames[:len(vm.frames)-1]
			vm.stack = vm.stack[:f.slotsBase]
			if len(vm.frames) == 0 {
				return nil
			}
			vm.push(result)
			f = vm.currentFrame()

		case compiler.OP_CLASS:
			name := readStringLong()
			vm.push(value.FromObj(vm.heap.NewClass(name)))
		case compiler.OP_METHOD:
			name := readStringLong()
			methodVal := vm.pop()
			class := vm.peek(0).AsObj().(*value.Class)
			class.Methods.Set(name, methodVal)
		case compiler.OP_DOT_GET:
			name := readStringLong()
			v, err := vm.getProperty(vm.peek(0), name)
			if err != nil {
				return vm.runtimeErrorf("%s", err.Error())
			}
			vm.pop()
			vm.push(v)
		case compiler.OP_DOT_SET:
			name := readStringLong()
			v := vm.pop()
			receiver := vm.pop()
			if err := vm.setProperty(receiver, name, v); err != nil {
				return vm.runtimeErrorf("%s", err.Error())
			}
			vm.push(v)
		case compiler.OP_SQR_BRACKET_GET:
			key := vm.pop()
			receiver := vm.pop()
			v, err := vm.getSubscript(receiver, key)
			if err != nil {
				return vm.runtimeErrorf("%s", err.Error())
			}
			vm.push(v)
		case compiler.OP_SQR_BRACKET_SET:
			v := vm.pop()
			key := vm.pop()
			receiver := vm.pop()
			if err := vm.setSubscript(receiver, key, v); err != nil {
				return vm.runtimeErrorf("%s", err.Error())
			}
			vm.push(v)
		case compiler.OP_DEL:
			name := readStringLong()
			receiver := vm.pop()
			if err := vm.deleteProperty(receiver, name); err != nil {
				return vm.runtimeErrorf("%s", err.Error())
			}
		case compiler.OP_TABLE:
			vm.push(value.FromObj(vm.heap.NewTableObj()))
		case compiler.OP_TABLE_ITEMS:
			n := int(readU32())
			tbl := vm.heap.NewTableObj()
			items := vm.stack[len(vm.stack)-2*n:]
			for i := 0; i < n; i++ {
				key := items[2*i].AsObj().(*value.String)
				val := items[2*i+1]
				tbl.Entries.Set(key, val)
			}
			vm.stack = vm.stack[:len(vm.stack)-2*n]
			vm.push(value.FromObj(tbl))
		case compiler.OP_ARRAY:
			vm.push(value.FromObj(vm.heap.NewArray(nil)))
		case compiler.OP_ARRAY_ITEMS:
			n := int(readU32())
			items := make([]value.Value, n)
			copy(items, vm.stack[len(vm.stack)-n:])
			vm.stack = vm.stack[:len(vm.stack)-n]
			vm.push(value.FromObj(vm.heap.NewArray(items)))
		case compiler.OP_ARRAY_PUSH:
			v := vm.pop()
			arr, ok := vm.peek(0).AsObj().(*value.Array)
			if !ok {
				return vm.runtimeErrorf("ARRAY_PUSH operand must be an array")
			}
			arr.Push(v)
		case compiler.OP_ARRAY_POP:
			arr, ok := vm.peek(0).AsObj().(*value.Array)
			if !ok {
				return vm.runtimeErrorf("ARRAY_POP operand must be an array")
			}
			v, ok := arr.Pop()
			if !ok {
				return vm.runtimeErrorf("pop from empty array")
			}
			vm.pop()
			vm.push(v)
		case compiler.OP_LEN:
			n, err := length(vm.pop())
			if err != nil {
				return vm.runtimeErrorf("%s", err.Error())
			}
			vm.push(value.Number(float64(n)))
		case compiler.OP_PRINT:
			vm.printer(vm.pop())

		default:
			return vm.runtimeErrorf("unknown opcode %d", op)
		}

		if vm.heap.ShouldCollect() {
			vm.collectGarbage()
		}
	}
}
