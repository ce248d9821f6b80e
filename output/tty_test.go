package output

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

type noFdWriter struct{}

func (noFdWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestIsTTYRejectsNonFileWriters(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(noFdWriter{}))
}

func TestIsTTYOnPipe(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()
	assert.False(t, IsTTY(w), "a pipe has a descriptor but is not a terminal")
}

func TestIsTTYDoesNotPanicOnStdStreams(t *testing.T) {
	// TTY-ness of stdout/stderr depends on the test runner; only assert
	// the probe is safe.
	_ = IsTTY(os.Stdout)
	_ = IsTTY(os.Stderr)
}
