package progress

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

const redrawInterval = 250 * time.Millisecond

type termJob struct {
	label string
	bytes int64
	total int64
}

// Terminal renders the overall bar and the active downloads on a terminal.
// Failures are left to the logger.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	bar      *progressbar.ProgressBar
	jobs     map[string]*termJob
	done     int64
	lastDraw time.Time
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{
		out:  out,
		jobs: make(map[string]*termJob),
	}
}

func (t *Terminal) Report(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Kind {
	case KindRunStarted:
		t.done = 0
		t.bar = progressbar.NewOptions64(ev.Total,
			progressbar.OptionSetWriter(t.out),
			progressbar.OptionSetDescription("Downloading VODs..."),
			progressbar.OptionShowCount(),
			progressbar.OptionSetElapsedTime(true),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionFullWidth(),
		)
	case KindJobStarted:
		t.jobs[ev.JobID] = &termJob{label: ev.Label, total: ev.Total}
		t.describe(true)
	case KindJobProgress:
		if j, ok := t.jobs[ev.JobID]; ok {
			j.bytes += ev.Bytes
		}
		t.describe(false)
	case KindJobSkipped:
		fmt.Fprintf(t.out, "\nFile %s already downloaded.\n", ev.Path)
	case KindTrackerRemoved:
		delete(t.jobs, ev.JobID)
		t.describe(true)
	case KindOverallAdvanced:
		if ev.Done <= t.done {
			return
		}
		t.done = ev.Done
		if t.bar != nil {
			_ = t.bar.Set64(ev.Done)
		}
	case KindRunFinished:
		if t.bar != nil {
			_ = t.bar.Finish()
		}
		fmt.Fprintln(t.out)
	}
}

// describe refreshes the bar text. Chunk events arrive every few KiB, so
// unforced redraws are rate limited.
func (t *Terminal) describe(force bool) {
	if t.bar == nil {
		return
	}
	now := time.Now()
	if !force && now.Sub(t.lastDraw) < redrawInterval {
		return
	}
	t.lastDraw = now
	t.bar.Describe(t.description())
}

func (t *Terminal) description() string {
	if len(t.jobs) == 0 {
		return "Downloading VODs..."
	}

	ids := make([]string, 0, len(t.jobs))
	for id := range t.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		j := t.jobs[id]
		parts = append(parts, fmt.Sprintf("%s %s/%s",
			j.label, humanize.IBytes(uint64(j.bytes)), humanize.IBytes(uint64(j.total))))
	}
	return "Downloading " + strings.Join(parts, " | ")
}
