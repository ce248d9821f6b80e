package output

import (
	"io"

	"golang.org/x/term"
)

// fdWriter is satisfied by *os.File and anything else carrying a real
// file descriptor.
type fdWriter interface {
	io.Writer
	Fd() uintptr
}

// IsTTY reports whether w is backed by an interactive terminal. Writers
// without a file descriptor (buffers, pipes wrapped in bufio) are never
// terminals.
func IsTTY(w io.Writer) bool {
	f, ok := w.(fdWriter)
	return ok && term.IsTerminal(int(f.Fd()))
}
