package main

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	// Run the tests
	os.Exit(m.Run())
}

// TestExecute exercises main() with no arguments, which makes cobra print
// the root command's usage to stdout and return a nil error (so main never
// reaches os.Exit). Asserted by substring rather than full-text equality,
// since pflag/cobra's column widths shift whenever a flag or subcommand
// name changes length.
func TestExecute(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"archrules"}
	defer func() { os.Args = oldArgs }()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	main()

	w.Close()
	os.Stdout = oldStdout
	var buf bytes.Buffer
	buf.ReadFrom(r)
	out := buf.String()

	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "archrules [command]")
	assert.Contains(t, out, "Available Commands:")
	assert.Contains(t, out, "analyze")
	assert.Contains(t, out, "version")
	assert.Contains(t, out, "--disable-metrics")
	assert.Contains(t, out, "--verbose")
}
