package progress

import (
	"sort"
	"sync"
	"time"
)

// ActiveJob is a per-job tracker as seen by the status API.
type ActiveJob struct {
	JobID     string    `json:"job_id"`
	Title     string    `json:"title"`
	Label     string    `json:"label"`
	Path      string    `json:"path"`
	Bytes     int64     `json:"bytes"`
	Total     int64     `json:"total"`
	Running   bool      `json:"running"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// Snapshot is a point-in-time copy of the board.
type Snapshot struct {
	RunID     string      `json:"run_id"`
	Done      int64       `json:"done"`
	Total     int64       `json:"total"`
	Succeeded int         `json:"succeeded"`
	Skipped   int         `json:"skipped"`
	Failed    int         `json:"failed"`
	Cancelled int         `json:"cancelled"`
	Finished  bool        `json:"finished"`
	Active    []ActiveJob `json:"active"`
}

// Board aggregates events into the live state served by the status API.
type Board struct {
	mu     sync.RWMutex
	snap   Snapshot
	active map[string]*ActiveJob
}

func NewBoard() *Board {
	return &Board{active: make(map[string]*ActiveJob)}
}

func (b *Board) Report(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch ev.Kind {
	case KindRunStarted:
		b.snap = Snapshot{RunID: ev.RunID, Total: ev.Total}
		b.active = make(map[string]*ActiveJob)
	case KindTrackerAdded:
		b.active[ev.JobID] = &ActiveJob{
			JobID: ev.JobID,
			Title: ev.Title,
			Label: ev.Label,
			Path:  ev.Path,
			Total: ev.Total,
		}
	case KindJobStarted:
		if j, ok := b.active[ev.JobID]; ok {
			j.Running = true
			j.StartedAt = ev.At
		}
	case KindJobProgress:
		if j, ok := b.active[ev.JobID]; ok {
			j.Bytes += ev.Bytes
		}
	case KindTrackerRemoved:
		delete(b.active, ev.JobID)
	case KindJobSucceeded:
		b.snap.Succeeded++
	case KindJobSkipped:
		b.snap.Skipped++
	case KindJobFailed:
		b.snap.Failed++
	case KindJobCancelled:
		b.snap.Cancelled++
	case KindOverallAdvanced:
		// Completion events can race; never let the counter go backwards
		if ev.Done > b.snap.Done {
			b.snap.Done = ev.Done
		}
	case KindRunFinished:
		b.snap.Finished = true
	}
}

// Snapshot returns a copy safe to serialize while workers keep reporting.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := b.snap
	out.Active = make([]ActiveJob, 0, len(b.active))
	for _, j := range b.active {
		out.Active = append(out.Active, *j)
	}
	sort.Slice(out.Active, func(i, k int) bool {
		return out.Active[i].JobID < out.Active[k].JobID
	})
	return out
}
