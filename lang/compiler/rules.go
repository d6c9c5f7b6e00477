package compiler

import tok "github.com/tansy-lang/tansy/lang/token"

// precedence orders binding strength from loosest to tightest, per
// spec.md §4.2.3's precedence table.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precTernary               // ?:
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . () []
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

var rules map[tok.Kind]parseRule

func init() {
	rules = map[tok.Kind]parseRule{
		tok.LPAREN:        {prefix: (*Compiler).grouping, infix: (*Compiler).call, precedence: precCall},
		tok.LBRACK:        {prefix: (*Compiler).arrayLiteral, infix: (*Compiler).subscript, precedence: precCall},
		tok.LBRACE:        {prefix: (*Compiler).tableLiteral},
		tok.DOT:           {infix: (*Compiler).dot, precedence: precCall},
		tok.MINUS:         {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: precTerm},
		tok.PLUS:          {infix: (*Compiler).binary, precedence: precTerm},
		tok.SLASH:         {infix: (*Compiler).binary, precedence: precFactor},
		tok.STAR:          {infix: (*Compiler).binary, precedence: precFactor},
		tok.BANG:          {prefix: (*Compiler).unary},
		tok.BANG_EQUAL:    {infix: (*Compiler).binary, precedence: precEquality},
		tok.EQUAL_EQUAL:   {infix: (*Compiler).binary, precedence: precEquality},
		tok.GREATER:       {infix: (*Compiler).binary, precedence: precComparison},
		tok.GREATER_EQUAL: {infix: (*Compiler).binary, precedence: precComparison},
		tok.LESS:          {infix: (*Compiler).binary, precedence: precComparison},
		tok.LESS_EQUAL:    {infix: (*Compiler).binary, precedence: precComparison},
		tok.IDENTIFIER:    {prefix: (*Compiler).variable},
		tok.STRING:        {prefix: (*Compiler).stringLiteral},
		tok.NUMBER:        {prefix: (*Compiler).number},
		tok.AND:           {infix: (*Compiler).and, precedence: precAnd},
		tok.OR:            {infix: (*Compiler).or, precedence: precOr},
		tok.QUESTION:      {infix: (*Compiler).ternary, precedence: precTernary},
		tok.FALSE:         {prefix: (*Compiler).literal},
		tok.TRUE:          {prefix: (*Compiler).literal},
		tok.NIL:           {prefix: (*Compiler).literal},
		tok.THIS:          {prefix: (*Compiler).this},
		tok.LEN:           {prefix: (*Compiler).lenExpr},
	}
}

func getRule(k tok.Kind) parseRule { return rules[k] }

// parsePrecedence is the core Pratt loop: it consumes a prefix expression
// then keeps folding in infix operators whose precedence is at least
// prec, per spec.md §4.2.3.
func (c *Compiler) parsePrecedence(prec precedence) {
	p := c.parser
	p.advance()
	rule := getRule(p.previous.Kind)
	if rule.prefix == nil {
		p.error("expected an expression")
		return
	}
	canAssign := prec <= precAssignment
	rule.prefix(c, canAssign)

	for prec <= getRule(p.current.Kind).precedence {
		p.advance()
		infRule := getRule(p.previous.Kind)
		infRule.infix(c, canAssign)
	}

	if canAssign && p.match(tok.EQUAL) {
		p.error("invalid assignment target")
	}
}

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }
