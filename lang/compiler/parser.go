package compiler

import (
	"fmt"
	"go/scanner"
	gotoken "go/token"

	"github.com/tansy-lang/tansy/lang/lexer"
	tanstoken "github.com/tansy-lang/tansy/lang/token"
)

// Error, ErrorList and PrintError are aliased from go/scanner, the same
// trick the teacher package uses (lang/scanner.go) to get sorted,
// Go-toolchain-style diagnostics for free instead of inventing a bespoke
// error type.
type Error = scanner.Error
type ErrorList = scanner.ErrorList

var PrintError = scanner.PrintError

// position builds the position value handed to go/scanner's error list:
// tansy compiles one file at a time and only tracks a line number, so the
// position carries just the file name and line (no column).
func position(filename string, line int) gotoken.Position {
	return gotoken.Position{Filename: filename, Line: line}
}

// parser holds the single-token lookahead state shared across every
// Compiler in the nested-function chain for one compilation, per
// spec.md §4.2.1.
type parser struct {
	filename string
	lex      *lexer.Lexer

	previous tanstoken.Token
	current  tanstoken.Token

	errors    ErrorList
	panicMode bool
}

func newParser(filename, src string) *parser {
	return &parser{filename: filename, lex: lexer.New(src)}
}

func (p *parser) hadError() bool { return len(p.errors) > 0 }

func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.lex.Scan()
		if p.current.Kind != tanstoken.ERROR {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *parser) check(k tanstoken.Kind) bool { return p.current.Kind == k }

func (p *parser) match(k tanstoken.Kind) bool {
	if !p.check(k) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(k tanstoken.Kind, msg string) {
	if p.current.Kind == k {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

func (p *parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }
func (p *parser) error(msg string)          { p.errorAt(p.previous, msg) }

func (p *parser) errorAt(tok tanstoken.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true

	full := msg
	switch tok.Kind {
	case tanstoken.EOF:
		full = fmt.Sprintf("at end: %s", msg)
	case tanstoken.ERROR:
		// lexeme already is the message
	default:
		full = fmt.Sprintf("at %q: %s", tok.Lexeme, msg)
	}
	p.errors.Add(position(p.filename, tok.Line), full)
}

// synchronize discards tokens until it reaches a likely statement
// boundary, per spec.md §7: "synchronizes to a statement boundary (next
// ';', '{', '}', or statement-introducing keyword)".
func (p *parser) synchronize() {
	p.panicMode = false

	for p.current.Kind != tanstoken.EOF {
		if p.previous.Kind == tanstoken.SEMICOLON {
			return
		}
		switch p.current.Kind {
		case tanstoken.CLASS, tanstoken.FUN, tanstoken.LET, tanstoken.CONST,
			tanstoken.FOR, tanstoken.IF, tanstoken.WHILE, tanstoken.PRINT,
			tanstoken.RETURN, tanstoken.SWITCH, tanstoken.LBRACE, tanstoken.RBRACE:
			return
		}
		p.advance()
	}
}
