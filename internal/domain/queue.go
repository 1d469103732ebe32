package domain

import "time"

type RunStatus string

const (
	RunStatusRunning     RunStatus = "running"
	RunStatusCompleted   RunStatus = "completed"
	RunStatusInterrupted RunStatus = "interrupted"
	RunStatusIncomplete  RunStatus = "incomplete" // Finished uninterrupted with jobs left unprocessed
)

// Run is one invocation of the download pipeline as recorded in the history store.
type Run struct {
	ID           string     `json:"id"`
	Status       RunStatus  `json:"status"`
	TotalJobs    int        `json:"total_jobs"`
	Succeeded    int        `json:"succeeded"`
	Skipped      int        `json:"skipped"`
	Failed       int        `json:"failed"`
	Cancelled    int        `json:"cancelled"`
	BytesWritten int64      `json:"bytes_written"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// JobResult is the persisted terminal state of one job within a run.
type JobResult struct {
	JobID        string    `json:"job_id"`
	RunID        string    `json:"run_id"`
	Title        string    `json:"title"`
	SourceURL    string    `json:"url"`
	OutputPath   string    `json:"output_path"`
	Outcome      Outcome   `json:"outcome"`
	BytesWritten int64     `json:"bytes_written"`
	Error        string    `json:"error,omitempty"`
	FinishedAt   time.Time `json:"finished_at"`
}
