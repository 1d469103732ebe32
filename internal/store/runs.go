package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cosmico/webinar/internal/domain"
)

var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, status, total_jobs, succeeded, skipped, failed, cancelled, bytes_written, started_at, finished_at`

func (s *Store) CreateRun(ctx context.Context, run *domain.Run) error {
	var dbo runDBO
	dbo.FromDomain(run)

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO download_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		dbo.ID, dbo.Status, dbo.TotalJobs, dbo.Succeeded, dbo.Skipped,
		dbo.Failed, dbo.Cancelled, dbo.BytesWritten, dbo.StartedAt, dbo.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun stores the final counters and status of a run.
func (s *Store) FinishRun(ctx context.Context, run *domain.Run) error {
	var dbo runDBO
	dbo.FromDomain(run)

	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE download_runs SET
			status = ?, total_jobs = ?, succeeded = ?, skipped = ?, failed = ?,
			cancelled = ?, bytes_written = ?, finished_at = ?
		WHERE id = ?`),
		dbo.Status, dbo.TotalJobs, dbo.Succeeded, dbo.Skipped, dbo.Failed,
		dbo.Cancelled, dbo.BytesWritten, dbo.FinishedAt, dbo.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", run.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+runColumns+` FROM download_runs WHERE id = ?`), id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to fetch run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. Run IDs are KSUIDs, so the
// primary key order is chronological.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+runColumns+` FROM download_runs ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*domain.Run, error) {
	var dbo runDBO
	err := sc.Scan(
		&dbo.ID, &dbo.Status, &dbo.TotalJobs, &dbo.Succeeded, &dbo.Skipped,
		&dbo.Failed, &dbo.Cancelled, &dbo.BytesWritten, &dbo.StartedAt, &dbo.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	return dbo.ToDomain(), nil
}
