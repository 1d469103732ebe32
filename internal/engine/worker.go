package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cosmico/webinar/internal/domain"
	"github.com/cosmico/webinar/internal/infra/httpclient"
	"github.com/cosmico/webinar/internal/infra/logger"
	"github.com/cosmico/webinar/internal/progress"
)

const labelWidth = 20

// worker is one unit of the download pool. All of its collaborators are
// passed in; nothing is shared through package state.
type worker struct {
	id        int
	runID     string
	queue     *JobQueue
	client    *http.Client
	reporter  progress.Reporter
	overall   *progress.Overall
	cancel    *Cancellation
	log       *logger.Logger
	userAgent string
	chunkSize int
}

// run pulls items until it pops a Stop, sees the cancellation flag, or hits a
// fatal error. It returns the tally of what it processed.
func (w *worker) run(ctx context.Context) Summary {
	var sum Summary

	for {
		if w.cancel.Cancelled() {
			return sum
		}

		item, err := w.queue.Pop(ctx)
		if err != nil {
			return sum
		}

		task, ok := item.Task()
		if !ok {
			w.log.Debug("Worker %d: stop received", w.id)
			return sum
		}

		res := w.process(ctx, task)
		sum.record(res.outcome, res.bytes)

		if res.fatal {
			w.log.Error("Worker %d stopping after unexpected error on %q: %v", w.id, task.Job.Title, res.err)
			return sum
		}
	}
}

// process downloads one task and always ends in exactly one terminal outcome.
func (w *worker) process(ctx context.Context, task Task) (res jobResult) {
	job := task.Job
	base := progress.Event{
		RunID: w.runID,
		JobID: job.ID,
		Title: job.Title,
		Label: progress.Crop(task.Path, labelWidth),
		Path:  task.Path,
		URL:   job.SourceURL,
	}
	tracked := false

	defer func() {
		ev := base
		ev.Kind = terminalKind(res.outcome)
		ev.Bytes = res.bytes
		ev.Err = res.err
		ev.At = time.Now()
		w.reporter.Report(ev)

		if tracked {
			ev = base
			ev.Kind = progress.KindTrackerRemoved
			w.reporter.Report(ev)
		}

		if res.outcome.Advances() {
			if done, ok := w.overall.Advance(); ok {
				w.reporter.Report(progress.Event{
					Kind:  progress.KindOverallAdvanced,
					RunID: w.runID,
					Done:  done,
					Total: w.overall.Total(),
				})
			}
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.SourceURL, nil)
	if err != nil {
		return w.fail(job, fmt.Errorf("building request: %w", err), true)
	}
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		if w.cancel.Cancelled() {
			return jobResult{outcome: domain.OutcomeCancelled}
		}
		return w.fail(job, err, true)
	}
	defer resp.Body.Close()

	if err := httpclient.CheckStatus(resp); err != nil {
		return w.fail(job, err, false)
	}

	remote := resp.ContentLength
	if remote < 0 {
		remote = 0
	}

	// Zero remote length against an empty local file also counts as a match
	if info, err := os.Stat(task.Path); err == nil && !info.IsDir() && info.Size() == remote {
		w.log.Debug("File %s already downloaded.", task.Path)
		return jobResult{outcome: domain.OutcomeSkipped}
	}

	tracker := base
	tracker.Kind = progress.KindTrackerAdded
	tracker.Total = remote
	w.reporter.Report(tracker)
	tracked = true

	out, err := createOutput(task.Path)
	if err != nil {
		return w.fail(job, err, true)
	}

	started := base
	started.Kind = progress.KindJobStarted
	started.Total = remote
	started.At = time.Now()
	w.reporter.Report(started)

	res = w.stream(ctx, base, resp.Body, out)
	if cerr := out.Close(); cerr != nil && res.outcome == domain.OutcomeSucceeded {
		return w.fail(job, cerr, true)
	}
	if res.outcome == domain.OutcomeSucceeded {
		w.log.Info("Downloaded %s (%d bytes)", task.Path, res.bytes)
	}
	return res
}

// stream copies body into out chunk by chunk, checking the cancellation flag
// before every write.
func (w *worker) stream(ctx context.Context, base progress.Event, body io.Reader, out *outputFile) jobResult {
	buf := make([]byte, w.chunkSize)

	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if w.cancel.Cancelled() {
				return jobResult{outcome: domain.OutcomeCancelled, bytes: out.written}
			}
			if _, err := out.Write(buf[:n]); err != nil {
				return jobResult{outcome: domain.OutcomeFailed, bytes: out.written, err: fmt.Errorf("write error: %w", err), fatal: true}
			}

			ev := base
			ev.Kind = progress.KindJobProgress
			ev.Bytes = int64(n)
			w.reporter.Report(ev)
		}

		if errors.Is(rerr, io.EOF) {
			return jobResult{outcome: domain.OutcomeSucceeded, bytes: out.written}
		}
		if rerr != nil {
			if w.cancel.Cancelled() || ctx.Err() != nil {
				return jobResult{outcome: domain.OutcomeCancelled, bytes: out.written}
			}
			return jobResult{outcome: domain.OutcomeFailed, bytes: out.written, err: fmt.Errorf("read error: %w", rerr), fatal: true}
		}
	}
}

// fail logs a failed job. Status errors are expected and keep the worker
// alive; anything else is reported as fatal to this worker when fatal is set.
func (w *worker) fail(job domain.DownloadJob, err error, fatal bool) jobResult {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		fatal = false
	}
	if !fatal {
		w.log.Error("Download of %q failed: %v", job.Title, err)
	}
	return jobResult{outcome: domain.OutcomeFailed, err: err, fatal: fatal}
}

func terminalKind(o domain.Outcome) progress.Kind {
	switch o {
	case domain.OutcomeSucceeded:
		return progress.KindJobSucceeded
	case domain.OutcomeSkipped:
		return progress.KindJobSkipped
	case domain.OutcomeCancelled:
		return progress.KindJobCancelled
	default:
		return progress.KindJobFailed
	}
}
