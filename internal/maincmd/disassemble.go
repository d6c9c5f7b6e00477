package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/tansy-lang/tansy/lang/compiler"
	"github.com/tansy-lang/tansy/lang/gc"
)

// Disassemble compiles the source file named by args[0] without running
// it and prints its bytecode, mirroring the teacher's `parse`/`resolve`
// commands' role of exposing one compilation phase's output for
// inspection -- here the phase is code generation rather than parsing.
func (c *Cmd) Disassemble(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return DisassembleFile(ctx, stdio, args[0])
}

func DisassembleFile(_ context.Context, stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	heap := gc.NewHeap()
	proto, err := compiler.Compile(path, string(src), heap)
	if err != nil {
		printError(stdio, err)
		return err
	}
	compiler.Disassemble(stdio.Stdout, proto)
	return nil
}
