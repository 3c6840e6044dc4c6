package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Run Steps Methods
// -----------------------------------------------------------------------------

func saveRunSteps(ctx context.Context, q querier, runID uuid.UUID, steps []RunStepInput) error {
	if len(steps) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, s := range steps {
		var startedAt any
		var durationMs any
		if !s.StartedAt.IsZero() {
			startedAt = s.StartedAt
			durationMs = int(s.Duration.Milliseconds())
		}
		batch.Queue(
			`INSERT INTO run_steps (run_id, step, category, status, attempts, started_at, duration_ms, error_message)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (run_id, step) DO UPDATE
			 SET category = EXCLUDED.category, status = EXCLUDED.status, attempts = EXCLUDED.attempts,
			     started_at = EXCLUDED.started_at, duration_ms = EXCLUDED.duration_ms,
			     error_message = EXCLUDED.error_message`,
			runID, s.Step, s.Category, s.Status, s.Attempts, startedAt, durationMs, nullable(s.Error),
		)
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save run steps: %w", err)
	}
	return nil
}

const runStepColumns = `id, run_id, step, category, status, attempts, started_at, duration_ms, error_message, created_at`

// GetRunStep retrieves a run step by run_id and step name
func (db *DB) GetRunStep(ctx context.Context, runID uuid.UUID, stepName string) (*RunStep, error) {
	var step RunStep
	err := db.pool.QueryRow(ctx,
		`SELECT `+runStepColumns+` FROM run_steps WHERE run_id = $1 AND step = $2`,
		runID, stepName,
	).Scan(&step.ID, &step.RunID, &step.Step, &step.Category, &step.Status, &step.Attempts,
		&step.StartedAt, &step.DurationMs, &step.ErrorMessage, &step.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run step: %w", err)
	}
	return &step, nil
}

// ListRunSteps retrieves all steps for a run, optionally filtered by status or category
func (db *DB) ListRunSteps(ctx context.Context, runID uuid.UUID, status, category *string) ([]RunStep, error) {
	query := `SELECT ` + runStepColumns + ` FROM run_steps WHERE run_id = $1`
	args := []any{runID}
	argPos := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *status)
		argPos++
	}

	if category != nil {
		query += fmt.Sprintf(" AND category = $%d", argPos)
		args = append(args, *category)
	}

	query += " ORDER BY started_at NULLS LAST, created_at"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list run steps: %w", err)
	}
	defer rows.Close()

	var steps []RunStep
	for rows.Next() {
		var step RunStep
		if err := rows.Scan(&step.ID, &step.RunID, &step.Step, &step.Category, &step.Status, &step.Attempts,
			&step.StartedAt, &step.DurationMs, &step.ErrorMessage, &step.CreatedAt); err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}
