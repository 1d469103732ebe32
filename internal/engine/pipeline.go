package engine

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/cosmico/webinar/internal/domain"
	"github.com/cosmico/webinar/internal/infra/config"
	"github.com/cosmico/webinar/internal/infra/logger"
	"github.com/cosmico/webinar/internal/progress"
	"github.com/segmentio/ksuid"
)

// Summary tallies the terminal outcomes of a run.
type Summary struct {
	RunID        string
	Total        int
	Succeeded    int
	Skipped      int
	Failed       int
	Cancelled    int
	BytesWritten int64
	Interrupted  bool
}

// Remaining is the number of jobs that never reached a terminal outcome,
// e.g. because every worker stopped early. Zero means the queue was drained.
func (s Summary) Remaining() int {
	return s.Total - s.Succeeded - s.Skipped - s.Failed - s.Cancelled
}

func (s *Summary) record(o domain.Outcome, bytes int64) {
	switch o {
	case domain.OutcomeSucceeded:
		s.Succeeded++
	case domain.OutcomeSkipped:
		s.Skipped++
	case domain.OutcomeFailed:
		s.Failed++
	case domain.OutcomeCancelled:
		s.Cancelled++
	}
	s.BytesWritten += bytes
}

func (s *Summary) add(o Summary) {
	s.Succeeded += o.Succeeded
	s.Skipped += o.Skipped
	s.Failed += o.Failed
	s.Cancelled += o.Cancelled
	s.BytesWritten += o.BytesWritten
}

// Pipeline downloads a batch of jobs with a fixed pool of workers.
type Pipeline struct {
	cfg      config.DownloadConfig
	client   *http.Client
	reporter progress.Reporter
	log      *logger.Logger
}

func NewPipeline(cfg config.DownloadConfig, client *http.Client, reporter progress.Reporter, log *logger.Logger) *Pipeline {
	if reporter == nil {
		reporter = progress.Multi{}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 8192
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = config.BrowserUserAgent
	}
	return &Pipeline{
		cfg:      cfg,
		client:   client,
		reporter: reporter,
		log:      log,
	}
}

// Run downloads jobs with a fresh cancellation signal. Ending ctx sets the
// signal; Run still waits for every worker before returning.
func (p *Pipeline) Run(ctx context.Context, jobs []domain.DownloadJob) (Summary, error) {
	return p.RunWithCancellation(ctx, jobs, NewCancellation())
}

// RunWithCancellation is Run with a caller-owned signal.
func (p *Pipeline) RunWithCancellation(ctx context.Context, jobs []domain.DownloadJob, cancel *Cancellation) (Summary, error) {
	if err := os.MkdirAll(p.cfg.OutDir, 0755); err != nil {
		return Summary{}, fmt.Errorf("failed to create out_dir: %w", err)
	}

	tasks := assignPaths(p.cfg.OutDir, jobs, p.log)
	sum := Summary{
		RunID: ksuid.New().String(),
		Total: len(tasks),
	}

	// Workers only stop through the signal, never straight from ctx, so that
	// an interrupt is always observed as a cancellation.
	workCtx, stopWork := cancel.Context(context.WithoutCancel(ctx))
	defer stopWork()

	overall := progress.NewOverall(len(tasks))
	p.reporter.Report(progress.Event{
		Kind:  progress.KindRunStarted,
		RunID: sum.RunID,
		Total: int64(len(tasks)),
	})

	queue := NewJobQueue()
	for _, t := range tasks {
		queue.Push(JobItem(t))
	}

	results := make([]Summary, p.cfg.Workers)
	var wg sync.WaitGroup

	for i := 0; i < p.cfg.Workers; i++ {
		queue.Push(StopItem())

		w := &worker{
			id:        i + 1,
			runID:     sum.RunID,
			queue:     queue,
			client:    p.client,
			reporter:  p.reporter,
			overall:   overall,
			cancel:    cancel,
			log:       p.log,
			userAgent: p.cfg.UserAgent,
			chunkSize: p.cfg.ChunkSize,
		}

		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			results[slot] = w.run(workCtx)
		}(i)
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		if cancel.Cancel() {
			p.log.Warn("Interrupted, waiting for %d workers to stop...", p.cfg.Workers)
		}
		<-finished
	}

	for _, r := range results {
		sum.add(r)
	}
	sum.Interrupted = cancel.Cancelled()

	p.reporter.Report(progress.Event{
		Kind:        progress.KindRunFinished,
		RunID:       sum.RunID,
		Done:        overall.Done(),
		Total:       overall.Total(),
		Interrupted: sum.Interrupted,
	})

	return sum, nil
}
