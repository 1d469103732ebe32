package store

import (
	"database/sql"
	"time"

	"github.com/cosmico/webinar/internal/domain"
)

// Timestamps are stored as unix milliseconds so both backends agree.

// runDBO maps to the download_runs table
type runDBO struct {
	ID           string        `db:"id"`
	Status       string        `db:"status"`
	TotalJobs    int           `db:"total_jobs"`
	Succeeded    int           `db:"succeeded"`
	Skipped      int           `db:"skipped"`
	Failed       int           `db:"failed"`
	Cancelled    int           `db:"cancelled"`
	BytesWritten int64         `db:"bytes_written"`
	StartedAt    int64         `db:"started_at"`
	FinishedAt   sql.NullInt64 `db:"finished_at"`
}

// Mapper: DBO to Domain Run
func (r *runDBO) ToDomain() *domain.Run {
	run := &domain.Run{
		ID:           r.ID,
		Status:       domain.RunStatus(r.Status),
		TotalJobs:    r.TotalJobs,
		Succeeded:    r.Succeeded,
		Skipped:      r.Skipped,
		Failed:       r.Failed,
		Cancelled:    r.Cancelled,
		BytesWritten: r.BytesWritten,
		StartedAt:    time.UnixMilli(r.StartedAt),
	}
	if r.FinishedAt.Valid {
		t := time.UnixMilli(r.FinishedAt.Int64)
		run.FinishedAt = &t
	}
	return run
}

// Mapper: Domain Run to DBO
func (r *runDBO) FromDomain(run *domain.Run) {
	r.ID = run.ID
	r.Status = string(run.Status)
	r.TotalJobs = run.TotalJobs
	r.Succeeded = run.Succeeded
	r.Skipped = run.Skipped
	r.Failed = run.Failed
	r.Cancelled = run.Cancelled
	r.BytesWritten = run.BytesWritten
	r.StartedAt = run.StartedAt.UnixMilli()
	r.FinishedAt = sql.NullInt64{}
	if run.FinishedAt != nil {
		r.FinishedAt = sql.NullInt64{Int64: run.FinishedAt.UnixMilli(), Valid: true}
	}
}

// resultDBO maps to the download_results table
type resultDBO struct {
	RunID        string         `db:"run_id"`
	JobID        string         `db:"job_id"`
	Title        string         `db:"title"`
	SourceURL    string         `db:"source_url"`
	OutputPath   string         `db:"output_path"`
	Outcome      string         `db:"outcome"`
	BytesWritten int64          `db:"bytes_written"`
	Error        sql.NullString `db:"error"`
	FinishedAt   int64          `db:"finished_at"`
}

func (r *resultDBO) ToDomain() *domain.JobResult {
	return &domain.JobResult{
		RunID:        r.RunID,
		JobID:        r.JobID,
		Title:        r.Title,
		SourceURL:    r.SourceURL,
		OutputPath:   r.OutputPath,
		Outcome:      domain.Outcome(r.Outcome),
		BytesWritten: r.BytesWritten,
		Error:        r.Error.String,
		FinishedAt:   time.UnixMilli(r.FinishedAt),
	}
}

func (r *resultDBO) FromDomain(res *domain.JobResult) {
	r.RunID = res.RunID
	r.JobID = res.JobID
	r.Title = res.Title
	r.SourceURL = res.SourceURL
	r.OutputPath = res.OutputPath
	r.Outcome = string(res.Outcome)
	r.BytesWritten = res.BytesWritten
	r.Error = sql.NullString{String: res.Error, Valid: res.Error != ""}
	r.FinishedAt = res.FinishedAt.UnixMilli()
}
