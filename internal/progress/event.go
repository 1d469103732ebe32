package progress

import (
	"sync"
	"time"
)

type Kind int

const (
	KindRunStarted      Kind = iota // Total is the number of jobs in the run
	KindTrackerAdded                // Per-job tracker registered, not yet running
	KindJobStarted                  // Bytes are about to flow
	KindJobProgress                 // Bytes holds the size of the chunk just written
	KindJobSucceeded                // Bytes holds the total written
	KindJobSkipped                  // Local file already matches the remote size
	KindJobFailed                   // Err holds the cause
	KindJobCancelled                // Aborted mid-transfer, file left partial
	KindTrackerRemoved              // Per-job tracker gone
	KindOverallAdvanced             // Done/Total hold the overall counter
	KindRunFinished
)

var kindNames = map[Kind]string{
	KindRunStarted:      "run-started",
	KindTrackerAdded:    "tracker-added",
	KindJobStarted:      "job-started",
	KindJobProgress:     "job-progress",
	KindJobSucceeded:    "job-succeeded",
	KindJobSkipped:      "job-skipped",
	KindJobFailed:       "job-failed",
	KindJobCancelled:    "job-cancelled",
	KindTrackerRemoved:  "tracker-removed",
	KindOverallAdvanced: "overall-advanced",
	KindRunFinished:     "run-finished",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is a numeric progress notification emitted by the download pipeline.
type Event struct {
	Kind  Kind
	RunID string
	JobID string
	Title string
	Label string // Short display name, see Crop
	Path  string
	URL   string
	Bytes int64
	Total int64
	Done  int64
	Err   error
	At    time.Time

	// Interrupted is set on run-finished when the run was cancelled
	Interrupted bool
}

// Reporter consumes pipeline events. Report is called from every worker
// goroutine and completion events arrive in no particular order, so
// implementations must be safe for concurrent use.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(ev Event) { f(ev) }

// Multi fans every event out to each reporter in order.
type Multi []Reporter

func (m Multi) Report(ev Event) {
	for _, r := range m {
		if r != nil {
			r.Report(ev)
		}
	}
}

// Recorder keeps every event it receives. Handy in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Report(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of kind k were recorded.
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Kind == k {
			n++
		}
	}
	return n
}

// Crop shortens s to at most n runes, keeping the tail and marking the cut
// with a leading ellipsis.
func Crop(s string, n int) string {
	const ellipsis = "…"
	runes := []rune(s)
	keep := n - 1
	if keep < 0 {
		keep = 0
	}
	if len(runes) > keep {
		return ellipsis + string(runes[len(runes)-keep:])
	}
	return s
}
