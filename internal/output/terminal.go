package output

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ColorDisabled reports whether output to f should be plain: either the
// caller asked for it or f is not a terminal.
func ColorDisabled(f *os.File, noColor bool) bool {
	return noColor || !IsTerminal(f)
}
