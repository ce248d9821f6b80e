package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressGatedByVerbosity(t *testing.T) {
	tests := []struct {
		name      string
		verbosity VerbosityLevel
		want      bool
	}{
		{"default suppresses progress", VerbosityDefault, false},
		{"verbose prints progress", VerbosityVerbose, true},
		{"debug prints progress", VerbosityDebug, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLoggerWithWriter(tt.verbosity, &buf)
			l.Progress("parsed %d files", 7)
			if tt.want {
				assert.Contains(t, buf.String(), "parsed 7 files")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestDebugOnlyInDebugMode(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(VerbosityVerbose, &buf)
	l.Debug("resolution diagnostic")
	assert.Empty(t, buf.String())

	l = NewLoggerWithWriter(VerbosityDebug, &buf)
	l.Debug("resolution diagnostic")
	assert.Contains(t, buf.String(), "resolution diagnostic")
	assert.Contains(t, buf.String(), "[+", "debug lines carry an elapsed prefix")
}

func TestWarningAndErrorAlwaysShown(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(VerbosityDefault, &buf)
	l.Warning("rule load error: %s", "bad.json")
	l.Error("parsing failed")
	assert.Contains(t, buf.String(), "Warning: rule load error: bad.json")
	assert.Contains(t, buf.String(), "Error: parsing failed")
}

func TestTimingRecordedOnStop(t *testing.T) {
	l := NewLoggerWithWriter(VerbosityDefault, &bytes.Buffer{})
	stop := l.StartTiming("parse")
	time.Sleep(5 * time.Millisecond)
	stop()
	require.NotZero(t, l.Timing("parse"))
	assert.GreaterOrEqual(t, l.Timing("parse"), 5*time.Millisecond)
	assert.Zero(t, l.Timing("evaluate"), "unstopped phases read as zero")
}

func TestTimingSummaryKeepsStopOrder(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(VerbosityVerbose, &buf)
	l.StartTiming("parse")()
	l.StartTiming("evaluate")()
	l.PrintTimingSummary()
	out := buf.String()
	require.Contains(t, out, "parse")
	require.Contains(t, out, "evaluate")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("parse")), bytes.Index(buf.Bytes(), []byte("evaluate")))
}

func TestTimingSummarySuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(VerbosityDefault, &buf)
	l.StartTiming("parse")()
	l.PrintTimingSummary()
	assert.Empty(t, buf.String())
}

func TestBufferIsNotATTY(t *testing.T) {
	l := NewLoggerWithWriter(VerbosityDefault, &bytes.Buffer{})
	assert.False(t, l.IsTTY())
}
