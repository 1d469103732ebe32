package store

import (
	"context"
	"fmt"

	"github.com/cosmico/webinar/internal/domain"
)

// SaveResult records the terminal outcome of one job. Saving the same job
// twice in a run keeps the latest outcome.
func (s *Store) SaveResult(ctx context.Context, res *domain.JobResult) error {
	var dbo resultDBO
	dbo.FromDomain(res)

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO download_results (
			run_id, job_id, title, source_url, output_path, outcome, bytes_written, error, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, job_id) DO UPDATE SET
			outcome = excluded.outcome,
			bytes_written = excluded.bytes_written,
			error = excluded.error,
			finished_at = excluded.finished_at`),
		dbo.RunID, dbo.JobID, dbo.Title, dbo.SourceURL, dbo.OutputPath,
		dbo.Outcome, dbo.BytesWritten, dbo.Error, dbo.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save result for job %s: %w", res.JobID, err)
	}
	return nil
}

// GetResults returns the job outcomes of a run in completion order.
func (s *Store) GetResults(ctx context.Context, runID string) ([]*domain.JobResult, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT run_id, job_id, title, source_url, output_path, outcome, bytes_written, error, finished_at
		FROM download_results
		WHERE run_id = ?
		ORDER BY finished_at ASC, job_id ASC`), runID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results: %w", err)
	}
	defer rows.Close()

	var results []*domain.JobResult
	for rows.Next() {
		var dbo resultDBO
		err := rows.Scan(
			&dbo.RunID, &dbo.JobID, &dbo.Title, &dbo.SourceURL, &dbo.OutputPath,
			&dbo.Outcome, &dbo.BytesWritten, &dbo.Error, &dbo.FinishedAt,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, dbo.ToDomain())
	}
	return results, rows.Err()
}
