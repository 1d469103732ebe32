package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cosmico/webinar/internal/domain"
	"github.com/cosmico/webinar/internal/infra/logger"
	"github.com/cosmico/webinar/internal/progress"
)

// Recorder persists pipeline events as run history. Store failures are
// logged and never reach the pipeline.
type Recorder struct {
	store *Store
	log   *logger.Logger

	mu  sync.Mutex
	run *domain.Run
}

func NewRecorder(s *Store, log *logger.Logger) *Recorder {
	return &Recorder{store: s, log: log}
}

func (r *Recorder) Report(ev progress.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx := context.Background()

	switch ev.Kind {
	case progress.KindRunStarted:
		r.run = &domain.Run{
			ID:        ev.RunID,
			Status:    domain.RunStatusRunning,
			TotalJobs: int(ev.Total),
			StartedAt: time.Now(),
		}
		if err := r.store.CreateRun(ctx, r.run); err != nil {
			r.log.Error("History: %v", err)
		}

	case progress.KindJobSucceeded, progress.KindJobSkipped, progress.KindJobFailed, progress.KindJobCancelled:
		if r.run == nil {
			return
		}
		outcome := outcomeOf(ev.Kind)
		r.count(outcome, ev.Bytes)

		res := &domain.JobResult{
			RunID:        r.run.ID,
			JobID:        ev.JobID,
			Title:        ev.Title,
			SourceURL:    ev.URL,
			OutputPath:   ev.Path,
			Outcome:      outcome,
			BytesWritten: ev.Bytes,
			FinishedAt:   ev.At,
		}
		if ev.Err != nil {
			res.Error = ev.Err.Error()
		}
		if res.FinishedAt.IsZero() {
			res.FinishedAt = time.Now()
		}
		if err := r.store.SaveResult(ctx, res); err != nil {
			r.log.Error("History: %v", err)
		}

	case progress.KindRunFinished:
		if r.run == nil {
			return
		}
		now := time.Now()
		r.run.FinishedAt = &now
		switch {
		case ev.Interrupted:
			r.run.Status = domain.RunStatusInterrupted
		case ev.Done < ev.Total:
			r.run.Status = domain.RunStatusIncomplete
		default:
			r.run.Status = domain.RunStatusCompleted
		}
		if err := r.store.FinishRun(ctx, r.run); err != nil && !errors.Is(err, ErrRunNotFound) {
			r.log.Error("History: %v", err)
		}
		r.run = nil
	}
}

func (r *Recorder) count(o domain.Outcome, bytes int64) {
	switch o {
	case domain.OutcomeSucceeded:
		r.run.Succeeded++
	case domain.OutcomeSkipped:
		r.run.Skipped++
	case domain.OutcomeFailed:
		r.run.Failed++
	case domain.OutcomeCancelled:
		r.run.Cancelled++
	}
	r.run.BytesWritten += bytes
}

func outcomeOf(k progress.Kind) domain.Outcome {
	switch k {
	case progress.KindJobSucceeded:
		return domain.OutcomeSucceeded
	case progress.KindJobSkipped:
		return domain.OutcomeSkipped
	case progress.KindJobCancelled:
		return domain.OutcomeCancelled
	default:
		return domain.OutcomeFailed
	}
}
