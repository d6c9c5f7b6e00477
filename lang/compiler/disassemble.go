package compiler

import (
	"fmt"
	"io"

	"github.com/tansy-lang/tansy/lang/value"
)

// Disassemble writes a human-readable listing of proto's chunk to w, one
// instruction per line, recursing into any nested function constants.
// It backs the `disassemble` CLI command, the same role the teacher's
// asm.go comment describes for its (never implemented) disassembler.
func Disassemble(w io.Writer, proto *value.FunctionProto) {
	name := "<script>"
	if proto.Name != nil && proto.Name.Chars != "" {
		name = proto.Name.Chars
	}
	fmt.Fprintf(w, "== %s ==\n", name)
	chunk := proto.Chunk
	for offset := 0; offset < len(chunk.Code); {
		offset = disassembleInstruction(w, chunk, offset)
	}
	for _, c := range chunk.ConstantsLong {
		if c.Is(value.ObjFunctionProto) {
			Disassemble(w, c.AsObj().(*value.FunctionProto))
		}
	}
}

func disassembleInstruction(w io.Writer, chunk *value.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	line := chunk.GetLine(offset)
	if offset > 0 && line == chunk.GetLine(offset-1) {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", line)
	}

	op := Opcode(chunk.Code[offset])
	switch {
	case op == OP_CONSTANT:
		idx := chunk.Code[offset+1]
		fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, chunk.Constants8[idx].String())
		return offset + 2
	case op == OP_CONSTANT_LONG, op == OP_CLOSURE, op == OP_GLOBAL_VAR, op == OP_GET_GLOBAL,
		op == OP_SET_GLOBAL, op == OP_DOT_GET, op == OP_DOT_SET, op == OP_DEL,
		op == OP_CLASS, op == OP_METHOD:
		idx := readU32At(chunk.Code, offset+1)
		fmt.Fprintf(w, "%-16s %4d", op, idx)
		if int(idx) < len(chunk.ConstantsLong) {
			fmt.Fprintf(w, " '%s'", chunk.ConstantsLong[idx].String())
		}
		fmt.Fprintln(w)
		next := offset + 5
		if op == OP_CLOSURE {
			if fn, ok := chunk.ConstantsLong[idx].AsObj().(*value.FunctionProto); ok {
				for i := 0; i < fn.UpvalueCount; i++ {
					isLocal := chunk.Code[next]
					index := readU32At(chunk.Code, next+1)
					kind := "upvalue"
					if isLocal == 1 {
						kind = "local"
					}
					fmt.Fprintf(w, "%04d      |                     %s %d\n", next, kind, index)
					next += 5
				}
			}
		}
		return next
	case op == OP_GET_LOCAL, op == OP_SET_LOCAL, op == OP_GET_UPVALUE, op == OP_SET_UPVALUE,
		op == OP_TABLE_ITEMS, op == OP_ARRAY_ITEMS:
		idx := readU32At(chunk.Code, offset+1)
		fmt.Fprintf(w, "%-16s %4d\n", op, idx)
		return offset + 5
	case isJump(op):
		jumpOffset := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
		dir := 1
		if op == OP_LOOP {
			dir = -1
		}
		fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, offset+3+dir*jumpOffset)
		return offset + 3
	case op == OP_CALL || op == OP_INVOKE:
		argc := chunk.Code[offset+1]
		if op == OP_CALL {
			fmt.Fprintf(w, "%-16s (%d args)\n", op, argc)
			return offset + 2
		}
		idx := readU32At(chunk.Code, offset+2)
		fmt.Fprintf(w, "%-16s (%d args) %4d '%s'\n", op, argc, idx, chunk.ConstantsLong[idx].String())
		return offset + 6
	case op == OP_SWITCH_JUMP:
		fmt.Fprintf(w, "%-16s %4d %4d\n", op, chunk.Code[offset+1], chunk.Code[offset+2])
		return offset + 3
	default:
		fmt.Fprintln(w, op)
		return offset + 1
	}
}

func readU32At(code []byte, offset int) uint32 {
	return uint32(code[offset])<<24 | uint32(code[offset+1])<<16 | uint32(code[offset+2])<<8 | uint32(code[offset+3])
}
