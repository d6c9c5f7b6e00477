package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tansy-lang/tansy/lang/lexer"
	"github.com/tansy-lang/tansy/lang/token"
)

func scanAll(src string) []token.Token {
	l := lexer.New(src)
	var toks []token.Token
	for {
		tok := l.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestScanPunctuationAndKeywords(t *testing.T) {
	toks := scanAll("let x = 1 + 2 * 3;")
	assert.Equal(t, []token.Kind{
		token.LET, token.IDENTIFIER, token.EQUAL, token.NUMBER,
		token.PLUS, token.NUMBER, token.STAR, token.NUMBER,
		token.SEMICOLON, token.EOF,
	}, kinds(toks))
}

func TestScanTwoCharOperators(t *testing.T) {
	toks := scanAll("a <= b >= c == d != e")
	assert.Equal(t, []token.Kind{
		token.IDENTIFIER, token.LESS_EQUAL, token.IDENTIFIER, token.GREATER_EQUAL,
		token.IDENTIFIER, token.EQUAL_EQUAL, token.IDENTIFIER, token.BANG_EQUAL,
		token.IDENTIFIER, token.EOF,
	}, kinds(toks))
}

func TestScanString(t *testing.T) {
	toks := scanAll(`"foobar"`)
	assert.Equal(t, token.STRING, toks[0].Kind)
	assert.Equal(t, "foobar", toks[0].Lexeme)
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(`"foo`)
	assert.Equal(t, token.ERROR, toks[0].Kind)
	assert.Equal(t, "unterminated string", toks[0].Lexeme)
}

func TestScanLineTracking(t *testing.T) {
	toks := scanAll("let a = 1;\nlet b = 2;\n")
	// find the second "let"
	var second token.Token
	count := 0
	for _, tk := range toks {
		if tk.Kind == token.LET {
			count++
			if count == 2 {
				second = tk
			}
		}
	}
	assert.Equal(t, 2, second.Line)
}

func TestScanComments(t *testing.T) {
	l := lexer.New("// a comment\nlet")
	tok := l.ScanWithComments()
	assert.Equal(t, token.COMMENT, tok.Kind)
	tok = l.ScanWithComments()
	assert.Equal(t, token.LET, tok.Kind)
}

func TestScanSkipsCommentsByDefault(t *testing.T) {
	toks := scanAll("// a comment\nlet x;")
	assert.Equal(t, []token.Kind{token.LET, token.IDENTIFIER, token.SEMICOLON, token.EOF}, kinds(toks))
}

func TestScanKeywordsExact(t *testing.T) {
	for kw, kind := range token.Keywords {
		toks := scanAll(kw)
		assert.Equal(t, kind, toks[0].Kind, "keyword %q", kw)
	}
}
