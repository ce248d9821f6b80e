package output

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Logger writes pipeline diagnostics to stderr, keeping stdout clean for
// report output. Messages are gated by verbosity; warnings and errors are
// always printed. It also records named phase timings (parse, evaluate) so
// verbose runs can print a summary at the end.
type Logger struct {
	verbosity VerbosityLevel
	writer    io.Writer
	tty       bool
	started   time.Time
	phases    []phaseTiming
}

type phaseTiming struct {
	name    string
	elapsed time.Duration
}

// NewLogger returns a Logger writing to stderr.
func NewLogger(verbosity VerbosityLevel) *Logger {
	return NewLoggerWithWriter(verbosity, os.Stderr)
}

// NewLoggerWithWriter returns a Logger writing to w.
func NewLoggerWithWriter(verbosity VerbosityLevel, w io.Writer) *Logger {
	return &Logger{
		verbosity: verbosity,
		writer:    w,
		tty:       IsTTY(w),
		started:   time.Now(),
	}
}

// Progress prints a pipeline progress line. Verbose and debug only.
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Debug prints a diagnostic line prefixed with the time elapsed since the
// logger was created. Debug only.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.verbosity >= VerbosityDebug {
		fmt.Fprintf(l.writer, "[+%s] %s\n", time.Since(l.started).Round(time.Millisecond), fmt.Sprintf(format, args...))
	}
}

// Warning prints a warning. Always shown.
func (l *Logger) Warning(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error. Always shown.
func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "Error: %s\n", fmt.Sprintf(format, args...))
}

// StartTiming begins timing a named pipeline phase. The returned stop
// function records the elapsed duration; phases are kept in stop order.
func (l *Logger) StartTiming(name string) func() {
	start := time.Now()
	return func() {
		l.phases = append(l.phases, phaseTiming{name: name, elapsed: time.Since(start)})
	}
}

// Timing returns the recorded duration for a phase, or zero if the phase
// was never stopped.
func (l *Logger) Timing(name string) time.Duration {
	for _, p := range l.phases {
		if p.name == name {
			return p.elapsed
		}
	}
	return 0
}

// PrintTimingSummary prints every recorded phase timing in stop order.
// Verbose and debug only.
func (l *Logger) PrintTimingSummary() {
	if l.verbosity < VerbosityVerbose || len(l.phases) == 0 {
		return
	}
	fmt.Fprintln(l.writer, "\nTimings:")
	for _, p := range l.phases {
		fmt.Fprintf(l.writer, "  %-12s %s\n", p.name, p.elapsed.Round(time.Millisecond))
	}
}

// Verbosity returns the logger's verbosity level.
func (l *Logger) Verbosity() VerbosityLevel {
	return l.verbosity
}

// IsTTY reports whether the logger's writer is an interactive terminal.
func (l *Logger) IsTTY() bool {
	return l.tty
}

// GetWriter returns the logger's output writer.
func (l *Logger) GetWriter() io.Writer {
	return l.writer
}
