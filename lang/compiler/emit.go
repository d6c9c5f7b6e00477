package compiler

import "github.com/tansy-lang/tansy/lang/value"

// emitByte appends one raw byte to the current chunk at the previous
// token's line, the smallest unit every other emit helper is built from.
func (c *Compiler) emitByte(b byte) {
	c.chunk().Write(b, c.parser.previous.Line)
}

func (c *Compiler) emitBytes(bs ...byte) {
	for _, b := range bs {
		c.emitByte(b)
	}
}

func (c *Compiler) emitOp(op Opcode) { c.emitByte(byte(op)) }

// emitU32 appends a big-endian 32-bit operand, used for constant indices,
// interned name references, and item counts, per spec.md §4.3.
func (c *Compiler) emitU32(v uint32) {
	c.emitBytes(byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// emitConstant adds v to the chunk's 32-bit constant pool and emits
// OP_CONSTANT_LONG against it. Every number/string literal the expression
// compiler sees goes through this path; OP_CONSTANT and its 8-bit pool are
// kept only as the legacy opcode spec.md documents alongside it.
func (c *Compiler) emitConstant(v value.Value) {
	idx := c.chunk().AddConstantLong(v)
	c.emitOp(OP_CONSTANT_LONG)
	c.emitU32(idx)
}

// emitConstantLong adds v to the chunk's 32-bit constant pool and emits
// op against its index. No call site uses it: the opcodes with a 32-bit
// constant/name operand (OP_GLOBAL_VAR, OP_GET_GLOBAL, OP_CLASS,
// OP_METHOD, OP_DOT_GET, OP_DOT_SET, OP_DEL, OP_CLOSURE, OP_INVOKE) are
// emitted by calling AddConstantLong, emitOp and emitU32 directly.
func (c *Compiler) emitConstantLong(op Opcode, v value.Value) uint32 {
	idx := c.chunk().AddConstantLong(v)
	c.emitOp(op)
	c.emitU32(idx)
	return idx
}

// emitJump emits a forward jump instruction with a placeholder 2-byte
// operand and returns the offset of that operand, to be fixed up later by
// patchJump once the jump target is known, per spec.md §4.2.4.
func (c *Compiler) emitJump(op Opcode) int {
	c.emitOp(op)
	c.emitBytes(0xff, 0xff)
	return len(c.chunk().Code) - 2
}

// patchJump backfills the 2-byte operand at offset so the jump lands on
// the instruction about to be emitted next.
func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.parser.error("jump target too far to encode")
		return
	}
	code := c.chunk().Code
	code[offset] = byte(jump >> 8)
	code[offset+1] = byte(jump)
}

// emitLoop emits OP_LOOP with a backward offset to loopStart, for
// while/for bodies and continue, per spec.md §4.2.5.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(OP_LOOP)
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.parser.error("loop body too large to encode")
	}
	c.emitBytes(byte(offset>>8), byte(offset))
}

// emitReturn emits the implicit return every function body falls through
// to: init must hand back the receiver in slot 0 rather than nil, per
// spec.md §4.2.6.
func (c *Compiler) emitReturn() {
	if c.funcType == TypeInit {
		c.emitOp(OP_GET_LOCAL)
		c.emitU32(0)
	} else {
		c.emitOp(OP_NIL)
	}
	c.emitOp(OP_RETURN)
}
