// Package compiler implements the single-pass Pratt-style compiler
// described in spec.md §4.2: it parses tokens and emits bytecode directly
// into a value.Chunk, never building an intermediate AST.
package compiler

// Opcode identifies a single bytecode instruction. All instructions are
// variable length: an opcode byte followed by the operands documented
// per-opcode below (OP_CONSTANT takes one byte). Constant indices are
// big-endian 32-bit; jump
// offsets are big-endian 16-bit, per spec.md §4.3.
type Opcode byte

//nolint:revive
const (
	// Stack-neutral / literals.
	OP_NOP Opcode = iota
	OP_POP      //  x POP -
	OP_TRUE     //  - TRUE true
	OP_FALSE    //  - FALSE false
	OP_NIL      //  - NIL nil
	OP_CONSTANT //  - CONSTANT<u8>  value        (legacy 8-bit pool)
	OP_CONSTANT_LONG // - CONSTANT_LONG<u32>  value   (32-bit pool; what new code emits)

	// Arithmetic & logic: each pops its operands and pushes exactly one
	// result.
	OP_ADD         // a b ADD (a+b)            numeric add or string concat
	OP_SUBTRACT    // a b SUBTRACT (a-b)
	OP_MULTIPLY    // a b MULTIPLY (a*b)
	OP_DIVIDE      // a b DIVIDE (a/b)
	OP_NEGATE      //   x NEGATE -x
	OP_BANG        //   x BANG !x
	OP_GREATER     // a b GREATER (a>b)
	OP_LESS        // a b LESS (a<b)
	OP_EQUAL_EQUAL // a b EQUAL_EQUAL (a==b)
	OP_TERNARY     // c a b TERNARY (c ? a : b)

	// Variables.
	OP_GLOBAL_VAR  //  value GLOBAL_VAR<u32>  -            define global, name = constant
	OP_GET_GLOBAL  //      - GET_GLOBAL<u32>  value
	OP_SET_GLOBAL  //  value SET_GLOBAL<u32>  value        (value left on stack, assignment is an expression)
	OP_GET_LOCAL   //      - GET_LOCAL<u32>   value
	OP_SET_LOCAL   //  value SET_LOCAL<u32>   value
	OP_GET_UPVALUE //      - GET_UPVALUE<u32> value
	OP_SET_UPVALUE //  value SET_UPVALUE<u32> value

	// Control flow. Jump/loop operands are byte offsets relative to the
	// instruction immediately following the 2-byte operand.
	OP_JUMP          //    - JUMP<u16>          -
	OP_JUMP_IF_FALSE // cond JUMP_IF_FALSE<u16> cond       (does not pop; caller pops)
	OP_JUMP_IF_TRUE  // cond JUMP_IF_TRUE<u16>  cond
	OP_LOOP          //    - LOOP<u16>          -           backward jump
	OP_MARK_JUMP     //    - MARK_JUMP<u16>     -           reserved; not emitted by the compiler, the VM skips its operand
	OP_SWITCH        //  val SWITCH              val match  pushes a false match flag above the switch subject
	OP_CASE_COMPARE  // val match c CASE_COMPARE val match  val unchanged, match replaced by (match || val == c)
	OP_SWITCH_JUMP   //    - SWITCH_JUMP<u8><u8> -           reserved; not emitted (break uses JUMP), the VM skips its operands

	// Functions & calls.
	OP_CALL          // fn a1..an CALL<u8>                              result
	OP_INVOKE        // recv a1..an INVOKE<u8 argc><u32 name>           result  fused DOT_GET + CALL
	OP_CLOSURE       //    - CLOSURE<u32 fnconst>(<u8 islocal><u32 index>)*  closure
	OP_CLOSE_UPVALUE //  x CLOSE_UPVALUE  -
	OP_RETURN        //  x RETURN         -            (caller sees it pushed)

	// Objects.
	OP_CLASS           //            - CLASS<u32 name>   class
	OP_METHOD          //    class fn METHOD<u32 name>   class
	OP_DOT_GET         //            x DOT_GET<u32 name> value
	OP_DOT_SET         //          x v DOT_SET<u32 name> v
	OP_SQR_BRACKET_GET //          a i SQR_BRACKET_GET    elem
	OP_SQR_BRACKET_SET //        a i v SQR_BRACKET_SET    v
	OP_DEL             //          x - DEL<u32 name>      -
	OP_TABLE           //            - TABLE              table            empty table literal
	OP_TABLE_ITEMS     // k1 v1..kn vn TABLE_ITEMS<u32 n> table
	OP_ARRAY           //            - ARRAY              array            empty array literal
	OP_ARRAY_ITEMS     //      v1..vn ARRAY_ITEMS<u32 n>   array
	OP_ARRAY_PUSH      //          a v ARRAY_PUSH          a
	OP_ARRAY_POP       //            a ARRAY_POP           elem
	OP_LEN             //            x LEN                 (#x)
	OP_PRINT           //            x PRINT               -

	// OpcodeArgMin is the first variable-access opcode. Opcodes are not
	// grouped by operand width: OP_CONSTANT_LONG lies below it, and many
	// opcodes above it (OP_RETURN, OP_PRINT, ...) take no operand.
	OpcodeArgMin = OP_GLOBAL_VAR
)

var opcodeNames = [...]string{
	OP_NOP:             "nop",
	OP_POP:             "pop",
	OP_TRUE:            "true",
	OP_FALSE:           "false",
	OP_NIL:             "nil",
	OP_CONSTANT:        "constant",
	OP_CONSTANT_LONG:   "constant_long",
	OP_ADD:             "add",
	OP_SUBTRACT:        "subtract",
	OP_MULTIPLY:        "multiply",
	OP_DIVIDE:          "divide",
	OP_NEGATE:          "negate",
	OP_BANG:            "bang",
	OP_GREATER:         "greater",
	OP_LESS:            "less",
	OP_EQUAL_EQUAL:     "equal_equal",
	OP_TERNARY:         "ternary",
	OP_GLOBAL_VAR:      "global_var",
	OP_GET_GLOBAL:      "get_global",
	OP_SET_GLOBAL:      "set_global",
	OP_GET_LOCAL:       "get_local",
	OP_SET_LOCAL:       "set_local",
	OP_GET_UPVALUE:     "get_upvalue",
	OP_SET_UPVALUE:     "set_upvalue",
	OP_JUMP:            "jump",
	OP_JUMP_IF_FALSE:   "jump_if_false",
	OP_JUMP_IF_TRUE:    "jump_if_true",
	OP_LOOP:            "loop",
	OP_MARK_JUMP:       "mark_jump",
	OP_SWITCH:          "switch",
	OP_CASE_COMPARE:    "case_compare",
	OP_SWITCH_JUMP:     "switch_jump",
	OP_CALL:            "call",
	OP_INVOKE:          "invoke",
	OP_CLOSURE:         "closure",
	OP_CLOSE_UPVALUE:   "close_upvalue",
	OP_RETURN:          "return",
	OP_CLASS:           "class",
	OP_METHOD:          "method",
	OP_DOT_GET:         "dot_get",
	OP_DOT_SET:         "dot_set",
	OP_SQR_BRACKET_GET: "sqr_bracket_get",
	OP_SQR_BRACKET_SET: "sqr_bracket_set",
	OP_DEL:             "del",
	OP_TABLE:           "table",
	OP_TABLE_ITEMS:     "table_items",
	OP_ARRAY:           "array",
	OP_ARRAY_ITEMS:     "array_items",
	OP_ARRAY_PUSH:      "array_push",
	OP_ARRAY_POP:       "array_pop",
	OP_LEN:             "len",
	OP_PRINT:           "print",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "unknown opcode"
}

// isJump reports whether op's 2-byte operand is a jump/loop target offset
// (as opposed to a constant/name/local index), used by the disassembler.
func isJump(op Opcode) bool {
	switch op {
	case OP_JUMP, OP_JUMP_IF_FALSE, OP_JUMP_IF_TRUE, OP_LOOP, OP_MARK_JUMP:
		return true
	default:
		return false
	}
}
