package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-faster/errors"
)

const (
	RunStatusRunning = "running"
	RunStatusOK      = "ok"
	RunStatusFailed  = "failed"
)

// StartRun records the beginning of an import run.
func (s *Store) StartRun(ctx context.Context, runID, root string, started time.Time) error {
	q := s.rebind(`INSERT INTO import_runs (run_id, root, status, started_at) VALUES (?, ?, ?, ?)`)
	if _, err := s.q.ExecContext(ctx, q, runID, root, RunStatusRunning, started.UTC()); err != nil {
		return errors.Wrap(err, "start import run")
	}
	return nil
}

// FinishRun stores the final status and the JSON-encoded statistics.
func (s *Store) FinishRun(ctx context.Context, runID, status string, finished time.Time, stats []byte) error {
	q := s.rebind(`UPDATE import_runs SET status = ?, finished_at = ?, stats = ? WHERE run_id = ?`)
	if _, err := s.q.ExecContext(ctx, q, status, finished.UTC(), string(stats), runID); err != nil {
		return errors.Wrap(err, "finish import run")
	}
	return nil
}

// RunStatus returns the recorded status of a run.
func (s *Store) RunStatus(ctx context.Context, runID string) (string, error) {
	var status string
	err := s.q.QueryRowxContext(ctx, s.rebind(`SELECT status FROM import_runs WHERE run_id = ?`), runID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "run status")
	}
	return status, nil
}
