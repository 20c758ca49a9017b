package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one row of extract_runs, the bookkeeping table written when the
// database destination is enabled.
type Run struct {
	ID         uuid.UUID
	InputFile  string
	StartedAt  time.Time
	FinishedAt *time.Time
	Lines      int64
	Failures   int64
}

const createRunsTableSQL = `
CREATE TABLE IF NOT EXISTS extract_runs (
	id UUID PRIMARY KEY,
	input_file TEXT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ,
	lines BIGINT NOT NULL DEFAULT 0,
	failures BIGINT NOT NULL DEFAULT 0
)`

// EnsureRunsTable creates the bookkeeping table if it does not exist.
func EnsureRunsTable(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, createRunsTableSQL); err != nil {
		return fmt.Errorf("ensure extract_runs: %w", err)
	}
	return nil
}

// InsertRun records the start of an extraction.
func InsertRun(ctx context.Context, db DBTX, id uuid.UUID, inputFile string) error {
	_, err := db.Exec(ctx,
		"INSERT INTO extract_runs (id, input_file) VALUES ($1, $2)",
		id, inputFile,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}
	return nil
}

// FinishRun stamps the run with its final counters.
func FinishRun(ctx context.Context, db DBTX, id uuid.UUID, lines, failures int64) error {
	tag, err := db.Exec(ctx,
		"UPDATE extract_runs SET finished_at = now(), lines = $2, failures = $3 WHERE id = $1",
		id, lines, failures,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("finish run %s: no such run", id)
	}
	return nil
}

// GetRun loads one bookkeeping row.
func GetRun(ctx context.Context, db DBTX, id uuid.UUID) (*Run, error) {
	var r Run
	err := db.QueryRow(ctx,
		"SELECT id, input_file, started_at, finished_at, lines, failures FROM extract_runs WHERE id = $1",
		id,
	).Scan(&r.ID, &r.InputFile, &r.StartedAt, &r.FinishedAt, &r.Lines, &r.Failures)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &r, nil
}
