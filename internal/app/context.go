package app

import (
	"context"

	"github.com/cosmico/webinar/internal/domain"
	"github.com/cosmico/webinar/internal/infra/config"
	"github.com/cosmico/webinar/internal/infra/logger"
	"github.com/cosmico/webinar/internal/progress"
	"github.com/prometheus/client_golang/prometheus"
)

// History is the read side of the run history store
type History interface {
	ListRuns(ctx context.Context, limit int) ([]*domain.Run, error)
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	GetResults(ctx context.Context, runID string) ([]*domain.JobResult, error)
}

// Context holds the shared resources of one command invocation.
type Context struct {
	Config *config.Config
	Logger *logger.Logger

	// Board is the live view of the current run
	Board *progress.Board

	// History is nil when the store is disabled
	History History

	Registry *prometheus.Registry
}

// NewContext initializes the base environment.
func NewContext(cfg *config.Config, log *logger.Logger) *Context {
	return &Context{
		Config:   cfg,
		Logger:   log,
		Board:    progress.NewBoard(),
		Registry: prometheus.NewRegistry(),
	}
}
