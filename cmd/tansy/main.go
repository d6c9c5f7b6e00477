// Command tansy is the compiler and bytecode VM entry point for the
// tansy programming language, built the way the teacher repo's
// cmd/nenuphar wires its own CLI onto internal/maincmd.
package main

import (
	"os"

	"github.com/mna/mainer"

	"github.com/tansy-lang/tansy/internal/maincmd"
)

var (
	// placeholder values, replaced on build
	version   = "{v}" // must be N.N[.N]
	buildDate = "{d}" // must be YYYY-mm-DD
)

func main() {
	c := maincmd.Cmd{BuildVersion: version, BuildDate: buildDate}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
