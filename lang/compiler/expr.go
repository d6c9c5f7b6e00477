package compiler

import (
	"strconv"

	tok "github.com/tansy-lang/tansy/lang/token"
	"github.com/tansy-lang/tansy/lang/value"
)

func (c *Compiler) number(canAssign bool) {
	n, err := strconv.ParseFloat(c.parser.previous.Lexeme, 64)
	if err != nil {
		c.parser.error("invalid number literal")
		return
	}
	c.emitConstant(value.Number(n))
}

// stringLiteral emits the token's Lexeme as-is: the lexer already strips
// the surrounding quotes before handing it to the compiler.
func (c *Compiler) stringLiteral(canAssign bool) {
	s := c.parser.previous.Lexeme
	c.emitConstant(value.FromObj(c.heap.NewString(s)))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.parser.previous.Kind {
	case tok.FALSE:
		c.emitOp(OP_FALSE)
	case tok.TRUE:
		c.emitOp(OP_TRUE)
	case tok.NIL:
		c.emitOp(OP_NIL)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.parser.consume(tok.RPAREN, "expected ')' after expression")
}

func (c *Compiler) unary(canAssign bool) {
	opKind := c.parser.previous.Kind
	c.parsePrecedence(precUnary)
	switch opKind {
	case tok.MINUS:
		c.emitOp(OP_NEGATE)
	case tok.BANG:
		c.emitOp(OP_BANG)
	}
}

func (c *Compiler) binary(canAssign bool) {
	opKind := c.parser.previous.Kind
	rule := getRule(opKind)
	c.parsePrecedence(rule.precedence + 1)

	switch opKind {
	case tok.PLUS:
		c.emitOp(OP_ADD)
	case tok.MINUS:
		c.emitOp(OP_SUBTRACT)
	case tok.STAR:
		c.emitOp(OP_MULTIPLY)
	case tok.SLASH:
		c.emitOp(OP_DIVIDE)
	case tok.EQUAL_EQUAL:
		c.emitOp(OP_EQUAL_EQUAL)
	case tok.BANG_EQUAL:
		c.emitOp(OP_EQUAL_EQUAL)
		c.emitOp(OP_BANG)
	case tok.GREATER:
		c.emitOp(OP_GREATER)
	case tok.GREATER_EQUAL:
		c.emitOp(OP_LESS)
		c.emitOp(OP_BANG)
	case tok.LESS:
		c.emitOp(OP_LESS)
	case tok.LESS_EQUAL:
		c.emitOp(OP_GREATER)
		c.emitOp(OP_BANG)
	}
}

// and short-circuits: if the left operand is falsey, skip the right
// operand entirely and leave the falsey value as the result.
func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.emitOp(OP_POP)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

// or short-circuits the opposite way: a truthy left operand skips the
// right operand.
func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(OP_JUMP_IF_FALSE)
	endJump := c.emitJump(OP_JUMP)
	c.patchJump(elseJump)
	c.emitOp(OP_POP)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

// ternary compiles `cond ? a : b` with OP_TERNARY, which the VM evaluates
// by popping all three operands and pushing whichever branch the
// condition selects -- both branches are compiled, but OP_TERNARY
// short-circuits at the value level, not via jumps, per spec.md §4.2.3's
// decision to keep ternary a pure expression-level fusion like the
// teacher's constant-folded expressions (lang/compiler/compiler.go).
func (c *Compiler) ternary(canAssign bool) {
	c.parsePrecedence(precTernary)
	c.parser.consume(tok.COLON, "expected ':' in ternary expression")
	c.parsePrecedence(precTernary)
	c.emitOp(OP_TERNARY)
}

func (c *Compiler) lenExpr(canAssign bool) {
	c.parser.consume(tok.LPAREN, "expected '(' after 'len'")
	c.expression()
	c.parser.consume(tok.RPAREN, "expected ')' after len argument")
	c.emitOp(OP_LEN)
}

func (c *Compiler) this(canAssign bool) {
	if c.class == nil {
		c.parser.error("'this' can only be used inside a method")
		return
	}
	c.namedVariable("this", false)
}

// variable compiles a bare identifier as either a read or, when canAssign
// allows it and the next token is '=', an assignment target: one of
// GET/SET_LOCAL, GET/SET_UPVALUE, or GET/SET_GLOBAL depending on where
// name resolves, per spec.md §4.2.2/§4.4.
func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.parser.previous.Lexeme, canAssign)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp Opcode
	var arg int

	if slot := c.resolveLocal(name); slot != -1 {
		getOp, setOp, arg = OP_GET_LOCAL, OP_SET_LOCAL, slot
	} else if up := c.resolveUpvalue(name); up != -1 {
		getOp, setOp, arg = OP_GET_UPVALUE, OP_SET_UPVALUE, up
	} else {
		idx := c.chunk().AddConstantLong(value.FromObj(c.heap.NewString(name)))
		getOp, setOp, arg = OP_GET_GLOBAL, OP_SET_GLOBAL, int(idx)
	}

	if canAssign && c.parser.match(tok.EQUAL) {
		if slot := c.localIndexFor(name); slot != -1 && c.locals[slot].isConst {
			c.parser.error("cannot assign to const '" + name + "'")
		}
		c.expression()
		c.emitOp(setOp)
		c.emitU32(uint32(arg))
	} else {
		c.emitOp(getOp)
		c.emitU32(uint32(arg))
	}
}

func (c *Compiler) localIndexFor(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return i
		}
	}
	return -1
}

// call compiles a fully-parenthesized call's argument list; the callee
// expression was already left on the stack by the preceding prefix/infix
// parse, per spec.md §4.2.6.
func (c *Compiler) call(canAssign bool) {
	argc := c.argumentList()
	c.emitOp(OP_CALL)
	c.emitByte(argc)
}

func (c *Compiler) argumentList() byte {
	var argc int
	if !c.parser.check(tok.RPAREN) {
		for {
			c.expression()
			argc++
			if argc > 255 {
				c.parser.error("can't pass more than 255 arguments")
			}
			if !c.parser.match(tok.COMMA) {
				break
			}
		}
	}
	c.parser.consume(tok.RPAREN, "expected ')' after arguments")
	return byte(argc)
}

// dot compiles `.name`, `.name = value`, and the fused call form
// `.name(args)` as OP_INVOKE, per spec.md §4.2.6's field/method fusion.
func (c *Compiler) dot(canAssign bool) {
	c.parser.consume(tok.IDENTIFIER, "expected property name after '.'")
	name := c.parser.previous.Lexeme
	nameConst := c.chunk().AddConstantLong(value.FromObj(c.heap.NewString(name)))

	switch {
	case canAssign && c.parser.match(tok.EQUAL):
		c.expression()
		c.emitOp(OP_DOT_SET)
		c.emitU32(nameConst)
	case c.parser.match(tok.LPAREN):
		argc := c.argumentList()
		c.emitOp(OP_INVOKE)
		c.emitByte(argc)
		c.emitU32(nameConst)
	default:
		c.emitOp(OP_DOT_GET)
		c.emitU32(nameConst)
	}
}

// subscript compiles `a[i]` and `a[i] = v`, used for both arrays and
// tables, per spec.md §3.2's shared subscript operators.
func (c *Compiler) subscript(canAssign bool) {
	c.expression()
	c.parser.consume(tok.RBRACK, "expected ']' after subscript index")

	if canAssign && c.parser.match(tok.EQUAL) {
		c.expression()
		c.emitOp(OP_SQR_BRACKET_SET)
	} else {
		c.emitOp(OP_SQR_BRACKET_GET)
	}
}

// arrayLiteral compiles `[a, b, c]`, a prefix rule distinct from the
// postfix subscript rule bound to the same LBRACK token.
func (c *Compiler) arrayLiteral(canAssign bool) {
	var n uint32
	if !c.parser.check(tok.RBRACK) {
		for {
			c.expression()
			n++
			if !c.parser.match(tok.COMMA) {
				break
			}
		}
	}
	c.parser.consume(tok.RBRACK, "expected ']' after array literal")
	if n == 0 {
		c.emitOp(OP_ARRAY)
		return
	}
	c.emitOp(OP_ARRAY_ITEMS)
	c.emitU32(n)
}

// tableLiteral compiles `{"k": v, ...}`. Keys must be string literals,
// enforced at compile time per spec.md §6.2.
func (c *Compiler) tableLiteral(canAssign bool) {
	var n uint32
	if !c.parser.check(tok.RBRACE) {
		for {
			c.parser.consume(tok.STRING, "table literal keys must be string literals")
			c.stringLiteral(false)
			c.parser.consume(tok.COLON, "expected ':' after table key")
			c.expression()
			n++
			if !c.parser.match(tok.COMMA) {
				break
			}
		}
	}
	c.parser.consume(tok.RBRACE, "expected '}' after table literal")
	if n == 0 {
		c.emitOp(OP_TABLE)
		return
	}
	c.emitOp(OP_TABLE_ITEMS)
	c.emitU32(n)
}
