package compiler

import (
	tok "github.com/tansy-lang/tansy/lang/token"
	"github.com/tansy-lang/tansy/lang/value"
)

// declaration compiles one top-level-or-block item: a let/const binding,
// a function/class declaration, or a bare statement, per spec.md §4.1.
// On a parse error it resynchronizes to the next statement boundary
// rather than aborting the whole compile, matching the teacher's
// error-recovery strategy (lang/parser).
func (c *Compiler) declaration() {
	switch {
	case c.parser.match(tok.LET):
		c.varDeclaration(false)
	case c.parser.match(tok.CONST):
		c.varDeclaration(true)
	case c.parser.match(tok.FUN):
		c.funDeclaration()
	case c.parser.match(tok.CLASS):
		c.classDeclaration()
	default:
		c.statement()
	}

	if c.parser.panicMode {
		c.parser.synchronize()
	}
}

func (c *Compiler) varDeclaration(isConst bool) {
	c.parser.consume(tok.IDENTIFIER, "expected variable name")
	name := c.parser.previous.Lexeme

	global := c.declareVariable(name, isConst)

	if c.parser.match(tok.EQUAL) {
		c.expression()
	} else {
		if isConst {
			c.parser.error("const declaration requires an initializer")
		}
		c.emitOp(OP_NIL)
	}
	c.parser.consume(tok.SEMICOLON, "expected ';' after variable declaration")
	c.defineVariable(name, global)
}

// declareVariable records name as either a local (inside a scope) or,
// for globals, returns the 32-bit constant-pool index of its interned
// name for defineVariable to emit OP_GLOBAL_VAR against.
func (c *Compiler) declareVariable(name string, isConst bool) uint32 {
	if c.scopeDepth > 0 {
		c.declareLocal(name, isConst)
		return 0
	}
	return c.chunk().AddConstantLong(value.FromObj(c.heap.NewString(name)))
}

func (c *Compiler) defineVariable(name string, globalNameConst uint32) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOp(OP_GLOBAL_VAR)
	c.emitU32(globalNameConst)
}

func (c *Compiler) funDeclaration() {
	c.parser.consume(tok.IDENTIFIER, "expected function name")
	name := c.parser.previous.Lexeme
	global := c.declareVariable(name, false)
	if c.scopeDepth > 0 {
		c.markInitialized()
	}
	c.function(TypeFunction, name)
	c.defineVariable(name, global)
}

// function compiles one function body as a nested Compiler, emits
// OP_CLOSURE referencing the resulting FunctionProto, then emits the
// local/upvalue descriptor pairs OP_CLOSURE reads, per spec.md §4.2.6.
func (c *Compiler) function(ft FuncType, name string) {
	sub := newCompiler(c.parser, c.heap, c, ft, name)
	sub.beginScope()

	sub.parser.consume(tok.LPAREN, "expected '(' after function name")
	if !sub.parser.check(tok.RPAREN) {
		for {
			sub.proto.Arity++
			if sub.proto.Arity > 255 {
				sub.parser.error("can't have more than 255 parameters")
			}
			sub.parser.consume(tok.IDENTIFIER, "expected parameter name")
			sub.declareVariable(sub.parser.previous.Lexeme, false)
			sub.markInitialized()
			if !sub.parser.match(tok.COMMA) {
				break
			}
		}
	}
	sub.parser.consume(tok.RPAREN, "expected ')' after parameters")
	sub.parser.consume(tok.LBRACE, "expected '{' before function body")
	sub.block()

	proto := sub.endCompiler()

	idx := c.chunk().AddConstantLong(value.FromObj(proto))
	c.emitOp(OP_CLOSURE)
	c.emitU32(idx)
	for _, uv := range sub.upvalues {
		if uv.isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitU32(uv.index)
	}
}

// classDeclaration compiles `class Name { method() {...} ... }`. `init`
// is compiled as TypeInit so its implicit return yields the receiver
// instead of nil, per spec.md §4.2.6.
func (c *Compiler) classDeclaration() {
	c.parser.consume(tok.IDENTIFIER, "expected class name")
	name := c.parser.previous.Lexeme
	nameConst := c.chunk().AddConstantLong(value.FromObj(c.heap.NewString(name)))
	global := c.declareVariable(name, false)

	c.emitOp(OP_CLASS)
	c.emitU32(nameConst)
	c.defineVariable(name, global)

	enclosingClass := c.class
	c.class = &classCompiler{enclosing: enclosingClass}

	c.namedVariable(name, false) // push class back on stack for method binding

	c.parser.consume(tok.LBRACE, "expected '{' before class body")
	for !c.parser.check(tok.RBRACE) && !c.parser.check(tok.EOF) {
		c.method()
	}
	c.parser.consume(tok.RBRACE, "expected '}' after class body")
	c.emitOp(OP_POP) // drop the class reference pushed above

	c.class = enclosingClass
}

func (c *Compiler) method() {
	c.parser.consume(tok.IDENTIFIER, "expected method name")
	name := c.parser.previous.Lexeme
	nameConst := c.chunk().AddConstantLong(value.FromObj(c.heap.NewString(name)))

	ft := TypeMethod
	if name == "init" {
		ft = TypeInit
	}
	c.function(ft, name)
	c.emitOp(OP_METHOD)
	c.emitU32(nameConst)
}

// statement compiles one non-declaration statement, per spec.md §4.1.
func (c *Compiler) statement() {
	p := c.parser
	switch {
	case p.match(tok.PRINT):
		c.printStatement()
	case p.match(tok.IF):
		c.ifStatement()
	case p.match(tok.WHILE):
		c.whileStatement()
	case p.match(tok.FOR):
		c.forStatement()
	case p.match(tok.RETURN):
		c.returnStatement()
	case p.match(tok.SWITCH):
		c.switchStatement()
	case p.match(tok.BREAK):
		c.breakStatement()
	case p.match(tok.CONTINUE):
		c.continueStatement()
	case p.match(tok.DEL):
		c.delStatement()
	case p.match(tok.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

// block compiles declarations until the closing '}', which the caller
// (statement/function) is responsible for consuming.
func (c *Compiler) block() {
	for !c.parser.check(tok.RBRACE) && !c.parser.check(tok.EOF) {
		c.declaration()
	}
	c.parser.consume(tok.RBRACE, "expected '}' after block")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.parser.consume(tok.SEMICOLON, "expected ';' after value")
	c.emitOp(OP_PRINT)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.parser.consume(tok.SEMICOLON, "expected ';' after expression")
	c.emitOp(OP_POP)
}

// ifStatement compiles if/else using two forward jumps: a conditional
// jump over the then-branch and an unconditional jump from the end of the
// then-branch over the condition's second pop and the else-branch. The
// second jump is emitted even when there is no else, per spec.md §4.2.5.
func (c *Compiler) ifStatement() {
	c.parser.consume(tok.LPAREN, "expected '(' after 'if'")
	c.expression()
	c.parser.consume(tok.RPAREN, "expected ')' after condition")

	thenJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.emitOp(OP_POP)
	c.statement()

	elseJump := c.emitJump(OP_JUMP)
	c.patchJump(thenJump)
	c.emitOp(OP_POP)

	if c.parser.match(tok.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) pushLoop() *loopCompiler {
	lp := &loopCompiler{enclosing: c.loop, loopStart: len(c.chunk().Code), scopeDepth: c.scopeDepth}
	c.loop = lp
	c.brk = &breakCompiler{enclosing: c.brk, scopeDepth: c.scopeDepth}
	return lp
}

// popLoop patches every break jump recorded against the current
// breakable scope to land here, at the instruction right after the loop,
// per spec.md §4.2.5.
func (c *Compiler) popLoop() {
	for _, j := range c.brk.breakJumps {
		c.patchJump(j)
	}
	c.brk = c.brk.enclosing
	c.loop = c.loop.enclosing
}

func (c *Compiler) whileStatement() {
	lp := c.pushLoop()

	c.parser.consume(tok.LPAREN, "expected '(' after 'while'")
	c.expression()
	c.parser.consume(tok.RPAREN, "expected ')' after condition")

	exitJump := c.emitJump(OP_JUMP_IF_FALSE)
	c.emitOp(OP_POP)
	c.statement()
	c.emitLoop(lp.loopStart)

	c.patchJump(exitJump)
	c.emitOp(OP_POP)
	c.popLoop()
}

// forStatement desugars the C-style for loop into the same while-loop
// shape emitted by whileStatement, plus a trailing increment jumped
// around the body and looped back into, per spec.md §4.2.5.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.parser.consume(tok.LPAREN, "expected '(' after 'for'")

	switch {
	case c.parser.match(tok.SEMICOLON):
		// no initializer
	case c.parser.match(tok.LET):
		c.varDeclaration(false)
	default:
		c.expressionStatement()
	}

	lp := c.pushLoop()
	exitJump := -1
	if !c.parser.check(tok.SEMICOLON) {
		c.expression()
		c.parser.consume(tok.SEMICOLON, "expected ';' after loop condition")
		exitJump = c.emitJump(OP_JUMP_IF_FALSE)
		c.emitOp(OP_POP)
	} else {
		c.parser.advance()
	}

	if !c.parser.check(tok.RPAREN) {
		bodyJump := c.emitJump(OP_JUMP)
		incrementStart := len(c.chunk().Code)
		c.expression()
		c.emitOp(OP_POP)
		c.parser.consume(tok.RPAREN, "expected ')' after for clauses")

		c.emitLoop(lp.loopStart)
		lp.loopStart = incrementStart
		c.patchJump(bodyJump)
	} else {
		c.parser.advance()
	}

	c.statement()
	c.emitLoop(lp.loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(OP_POP)
	}
	c.popLoop()
	c.endScope()
}

func (c *Compiler) breakStatement() {
	if c.brk == nil {
		c.parser.error("'break' outside of a loop or switch")
		c.parser.consume(tok.SEMICOLON, "expected ';' after 'break'")
		return
	}
	c.parser.consume(tok.SEMICOLON, "expected ';' after 'break'")
	c.discardLocalsDownTo(c.brk.scopeDepth)
	j := c.emitJump(OP_JUMP)
	c.brk.breakJumps = append(c.brk.breakJumps, j)
}

func (c *Compiler) continueStatement() {
	if c.loop == nil {
		c.parser.error("'continue' outside of a loop")
		c.parser.consume(tok.SEMICOLON, "expected ';' after 'continue'")
		return
	}
	c.parser.consume(tok.SEMICOLON, "expected ';' after 'continue'")
	c.discardLocalsDownTo(c.loop.scopeDepth)
	c.emitLoop(c.loop.loopStart)
}

// discardLocalsDownTo emits the OP_POP/OP_CLOSE_UPVALUE cleanup for every
// local declared deeper than depth, without touching the Compiler's own
// locals slice -- break/continue jump out of their enclosing blocks but
// those blocks' own endScope still runs normally afterwards.
func (c *Compiler) discardLocalsDownTo(depth int) {
	for i := len(c.locals) - 1; i >= 0 && c.locals[i].depth > depth; i-- {
		if c.locals[i].isCaptured {
			c.emitOp(OP_CLOSE_UPVALUE)
		} else {
			c.emitOp(OP_POP)
		}
	}
}

func (c *Compiler) returnStatement() {
	if c.funcType == TypeScript {
		c.parser.error("can't return from top-level code")
	}
	if c.parser.match(tok.SEMICOLON) {
		c.emitReturn()
		return
	}
	if c.funcType == TypeInit {
		c.parser.error("can't return a value from an 'init' method")
	}
	c.expression()
	c.parser.consume(tok.SEMICOLON, "expected ';' after return value")
	c.emitOp(OP_RETURN)
}

// delStatement compiles `del obj.field;`, per spec.md §6.2: the target is
// always a field access, never a bare variable, so del compiles the
// receiver expression and then deletes the named field/entry off it.
func (c *Compiler) delStatement() {
	c.parser.consume(tok.IDENTIFIER, "expected a variable name before '.' in 'del'")
	c.namedVariable(c.parser.previous.Lexeme, false)
	c.parser.consume(tok.DOT, "expected '.' after 'del' target")
	c.parser.consume(tok.IDENTIFIER, "expected a field name after '.'")
	name := c.parser.previous.Lexeme
	nameConst := c.chunk().AddConstantLong(value.FromObj(c.heap.NewString(name)))
	c.parser.consume(tok.SEMICOLON, "expected ';' after 'del' target")
	c.emitOp(OP_DEL)
	c.emitU32(nameConst)
}

// switchStatement lowers `switch (e) { case v1: ...; case v2: ...; default:
// ... }` into a chain of compare-then-fallthrough blocks sharing one
// match flag, per spec.md §4.2.5: the expression and the flag occupy two
// stack slots for the whole statement; each case's OP_JUMP_IF_TRUE skips
// the comparison (and lands in the body) once the flag is already set,
// which is exactly what gives un-`break`-ed cases C-style fallthrough.
//
// The subject and flag are opened in their own scope (and registered as
// anonymous locals in it) rather than just popped at the bottom, so that
// `continue`/`break` executed from inside a case body -- which unwind via
// discardLocalsDownTo, not by falling off the end of this function --
// still know to pop them. Without this, a `continue` inside a switch
// nested in a loop would jump straight past the two explicit pops,
// permanently leaking them and desynchronizing every local slot index
// compiled after it in this frame.
func (c *Compiler) switchStatement() {
	c.parser.consume(tok.LPAREN, "expected '(' after 'switch'")
	c.expression()
	c.parser.consume(tok.RPAREN, "expected ')' after switch expression")

	c.beginScope()
	c.emitOp(OP_SWITCH) // pushes the match flag, stack: [subject, flag]
	c.locals = append(c.locals, local{depth: c.scopeDepth}, local{depth: c.scopeDepth})

	c.parser.consume(tok.LBRACE, "expected '{' before switch body")

	c.brk = &breakCompiler{enclosing: c.brk, scopeDepth: c.scopeDepth}

	var nextCompareJump = -1

	for c.parser.match(tok.CASE) || c.parser.check(tok.DEFAULT) {
		if nextCompareJump != -1 {
			c.patchJump(nextCompareJump)
			nextCompareJump = -1
		}

		if c.parser.check(tok.DEFAULT) {
			c.parser.advance()
			c.parser.consume(tok.COLON, "expected ':' after 'default'")
			c.switchCaseBody()
			continue
		}

		trueJump := c.emitJump(OP_JUMP_IF_TRUE)
		c.expression()
		c.parser.consume(tok.COLON, "expected ':' after case value")
		c.emitOp(OP_CASE_COMPARE)
		falseJump := c.emitJump(OP_JUMP_IF_FALSE)
		c.patchJump(trueJump)

		c.switchCaseBody()
		nextCompareJump = falseJump
	}

	if nextCompareJump != -1 {
		c.patchJump(nextCompareJump)
	}
	c.parser.consume(tok.RBRACE, "expected '}' after switch body")

	for _, j := range c.brk.breakJumps {
		c.patchJump(j)
	}
	c.brk = c.brk.enclosing

	c.endScope() // pops the flag, the subject, and any case-body locals
}

func (c *Compiler) switchCaseBody() {
	for !c.parser.check(tok.CASE) && !c.parser.check(tok.DEFAULT) &&
		!c.parser.check(tok.RBRACE) && !c.parser.check(tok.EOF) {
		c.declaration()
	}
}
