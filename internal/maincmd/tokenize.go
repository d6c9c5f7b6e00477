package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/tansy-lang/tansy/lang/lexer"
	"github.com/tansy-lang/tansy/lang/token"
)

// Tokenize runs the lexer alone over the source file named by args[0] and
// prints its token stream, mirroring the teacher's `tokenize` command but
// over tansy's own single-file token.Token shape instead of a position
// fileset.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFile(ctx, stdio, args[0])
}

func TokenizeFile(_ context.Context, stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	lex := lexer.New(string(src))
	for {
		tok := lex.Scan()
		fmt.Fprintf(stdio.Stdout, "%4d %-12s %q\n", tok.Line, tok.Kind, tok.Lexeme)
		if tok.Kind == token.EOF || tok.Kind == token.ERROR {
			break
		}
	}
	return nil
}
