package compiler

// declareLocal registers name as a new local in the current scope. It is
// a compile error to redeclare a name already local to this exact scope
// depth, per spec.md §4.2.2.
func (c *Compiler) declareLocal(name string, isConst bool) {
	if c.scopeDepth == 0 {
		return
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name {
			c.parser.error("already a variable named '" + name + "' in this scope")
		}
	}
	c.addLocal(name, isConst)
}

func (c *Compiler) addLocal(name string, isConst bool) {
	c.locals = append(c.locals, local{name: name, depth: -1, isConst: isConst})
}

// markInitialized finishes the most recently declared local's declaration,
// making it visible to subsequent expressions. Top-level function/var
// declarations at scope 0 have no local slot to finish.
func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// resolveLocal returns the stack slot of name in this Compiler's own
// locals, or -1 if it isn't declared here.
func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == -1 {
				c.parser.error("can't read local '" + name + "' in its own initializer")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue searches enclosing Compilers for name, threading an
// upvalue reference through every intermediate frame so a deeply nested
// closure can reach a variable declared several functions out, per
// spec.md §4.4.
func (c *Compiler) resolveUpvalue(name string) int {
	if c.enclosing == nil {
		return -1
	}
	if local := c.enclosing.resolveLocal(name); local != -1 {
		c.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(uint32(local), true)
	}
	if up := c.enclosing.resolveUpvalue(name); up != -1 {
		return c.addUpvalue(uint32(up), false)
	}
	return -1
}

// addUpvalue interns (index, isLocal) into this Compiler's upvalue table,
// reusing an existing entry rather than duplicating it.
func (c *Compiler) addUpvalue(index uint32, isLocal bool) int {
	for i, uv := range c.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	c.upvalues = append(c.upvalues, upvalueRef{index: index, isLocal: isLocal})
	c.proto.UpvalueCount = len(c.upvalues)
	return len(c.upvalues) - 1
}
