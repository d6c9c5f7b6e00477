package maincmd

import (
	"errors"
	"os"

	"github.com/tansy-lang/tansy/lang/compiler"
	"github.com/tansy-lang/tansy/lang/vm"
)

// Exit codes, preserved exactly from spec.md §6.1.
const (
	exitSuccess = 0
	exitIOError = 60
	exitUsage   = 64
	exitRuntime = 65
	exitCompile = 70
	exitOOM     = 74
)

// exitCodeFor classifies an error returned by a subcommand into one of
// spec.md §6.1's fixed exit codes.
func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}
	var compileErr compiler.ErrorList
	if errors.As(err, &compileErr) {
		return exitCompile
	}
	var runtimeErr *vm.RuntimeError
	if errors.As(err, &runtimeErr) {
		return exitRuntime
	}
	if errors.Is(err, errOutOfMemory) {
		return exitOOM
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return exitIOError
	}
	return exitRuntime
}

// errOutOfMemory is returned when the heap's allocation budget cannot be
// honored; nothing in this implementation currently imposes such a cap,
// so it exists only so exitCodeFor has a recognizable sentinel to match,
// per spec.md §6.1 reserving 74 for it.
var errOutOfMemory = errors.New("out of memory")
