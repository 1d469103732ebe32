package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalMessages(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.Report(Event{Kind: KindRunStarted, Total: 2})
	term.Report(Event{Kind: KindJobStarted, JobID: "a", Label: "a.mp4", Total: 2048})
	term.Report(Event{Kind: KindJobProgress, JobID: "a", Bytes: 1024})
	assert.Contains(t, term.description(), "a.mp4 1.0 KiB/2.0 KiB")

	term.Report(Event{Kind: KindTrackerRemoved, JobID: "a"})
	assert.Equal(t, "Downloading VODs...", term.description())

	term.Report(Event{Kind: KindJobSkipped, Path: "output/b.mp4"})
	term.Report(Event{Kind: KindJobFailed, Err: errors.New("GET x: unexpected status 404")})
	term.Report(Event{Kind: KindOverallAdvanced, Done: 2})
	term.Report(Event{Kind: KindRunFinished})

	out := buf.String()
	assert.Contains(t, out, "File output/b.mp4 already downloaded.")
	assert.NotContains(t, out, "unexpected status 404")
}

func TestTerminalWithoutRunStarted(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	// No bar yet: must not panic
	term.Report(Event{Kind: KindJobStarted, JobID: "a"})
	term.Report(Event{Kind: KindOverallAdvanced, Done: 1})
	term.Report(Event{Kind: KindRunFinished})
}

func TestTerminalOverallNeverGoesBackwards(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	term.Report(Event{Kind: KindRunStarted, Total: 3})
	term.Report(Event{Kind: KindOverallAdvanced, Done: 2, Total: 3})
	term.Report(Event{Kind: KindOverallAdvanced, Done: 1, Total: 3})
	assert.Equal(t, int64(2), term.bar.State().CurrentNum)
	assert.Equal(t, int64(2), term.done)

	term.Report(Event{Kind: KindOverallAdvanced, Done: 3, Total: 3})
	assert.Equal(t, int64(3), term.done)
}
