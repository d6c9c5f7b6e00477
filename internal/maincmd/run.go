package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/tansy-lang/tansy/lang/gc"
	"github.com/tansy-lang/tansy/lang/vm"
)

// Run compiles and executes the source file named by args[0], per
// spec.md §6.1's `run` entry point.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return RunFile(ctx, stdio, args[0])
}

func RunFile(ctx context.Context, stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	heap := gc.NewHeap()
	machine := vm.New(heap).WithContext(ctx).WithOutput(stdio.Stdout)
	if err := machine.Interpret(path, string(src)); err != nil {
		printError(stdio, err)
		return err
	}
	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}
