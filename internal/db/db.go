// Package db provides optional PostgreSQL persistence of finished runs.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/WeBuildYourAi/compliance-agent/internal/state"
)

//go:embed schema.sql
var schemaSQL string

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the tables used by this package if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// SaveRun persists a finished run in one transaction: the run record, its work items,
// the manifest, the stage records and the summary. It returns the database id of the run.
func (db *DB) SaveRun(ctx context.Context, st *state.RunState, stages []RunStepInput) (uuid.UUID, error) {
	if st == nil {
		return uuid.Nil, errors.New("run state is nil")
	}
	st.Init()

	var id uuid.UUID
	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		var err error
		if id, err = createRun(ctx, tx, st); err != nil {
			return err
		}
		if err := saveWorkItems(ctx, tx, id, st); err != nil {
			return err
		}
		if st.Summary != nil {
			if err := saveManifest(ctx, tx, id, st.Summary.Manifest); err != nil {
				return err
			}
			if err := saveArtifact(ctx, tx, id, StepSummary, CategoryConsolidation, st.Summary); err != nil {
				return err
			}
		}
		if st.Analysis != nil {
			if err := saveArtifact(ctx, tx, id, StepAnalysis, CategoryPlanning, st.Analysis); err != nil {
				return err
			}
		}
		if st.CrossValidation != nil {
			if err := saveArtifact(ctx, tx, id, StepCrossValidation, CategoryValidation, st.CrossValidation); err != nil {
				return err
			}
		}
		if st.RequirementsValidation != nil {
			if err := saveArtifact(ctx, tx, id, StepRequirementsValidation, CategoryValidation, st.RequirementsValidation); err != nil {
				return err
			}
		}
		return saveRunSteps(ctx, tx, id, stages)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save run %s: %w", st.RunID, err)
	}
	return id, nil
}

// createRun inserts or replaces the run record keyed by the run id.
func createRun(ctx context.Context, q querier, st *state.RunState) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.QueryRow(ctx,
		`INSERT INTO pipeline_runs (run_key, request_id, correlation_id, family, prompt, status,
		                            current_stage, retry_count, last_error, validation_status, created_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		 ON CONFLICT (run_key) DO UPDATE SET status = $6, current_stage = $7, retry_count = $8,
		     last_error = $9, validation_status = $10, completed_at = NOW()
		 RETURNING id`,
		st.RunID, st.Request.RequestID, st.Request.CorrelationID, string(st.Family), st.Request.Prompt,
		string(st.Status), st.CurrentStage, st.RetryCount, nullable(st.LastError), string(st.ValidationStatus), st.CreatedAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// SaveArtifact stores a JSON artifact for a run
func (db *DB) SaveArtifact(ctx context.Context, runID uuid.UUID, step, category string, content any) error {
	return saveArtifact(ctx, db.pool, runID, step, category, content)
}

func saveArtifact(ctx context.Context, q querier, runID uuid.UUID, step, category string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = q.Exec(ctx,
		`INSERT INTO artifacts (run_id, step, category, content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, step) DO UPDATE SET category = $3, content = $4, created_at = NOW()`,
		runID, step, category, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", step, err)
	}
	return nil
}

// GetArtifact retrieves a JSON artifact by run ID and step
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, step string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM artifacts WHERE run_id = $1 AND step = $2`,
		runID, step,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", step, err)
	}
	return content, nil
}

const runColumns = `id, run_key, request_id, correlation_id, family, status, current_stage,
	retry_count, last_error, validation_status, created_at, completed_at`

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	var requestID, correlationID, stage, lastError, validation *string
	if err := row.Scan(&run.ID, &run.RunKey, &requestID, &correlationID, &run.Family, &run.Status, &stage,
		&run.RetryCount, &lastError, &validation, &run.CreatedAt, &run.CompletedAt); err != nil {
		return nil, err
	}
	run.RequestID = deref(requestID)
	run.CorrelationID = deref(correlationID)
	run.CurrentStage = deref(stage)
	run.LastError = deref(lastError)
	run.ValidationStatus = deref(validation)
	return &run, nil
}

// GetRun retrieves a run by its run id
func (db *DB) GetRun(ctx context.Context, runKey string) (*Run, error) {
	run, err := scanRun(db.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs WHERE run_key = $1`, runKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves recent runs
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
