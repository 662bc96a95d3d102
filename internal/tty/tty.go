// Package tty provides TTY detection helpers for tracecheck commands.
package tty

import (
	"io"
	"os"
)

// IsTTY returns true if the given file is a TTY.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	// Check if it's a character device (terminal)
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// IsTerminalReader reports whether r is a file attached to a terminal.
// Readers that are not files (pipes wrapped in buffers, test input) never are.
func IsTerminalReader(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && IsTTY(f)
}
