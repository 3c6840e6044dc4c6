package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/WeBuildYourAi/compliance-agent/internal/state"
	"github.com/WeBuildYourAi/compliance-agent/internal/types"
)

// WorkItemRecords converts the work items of st into their stored form, in planning order.
func WorkItemRecords(st *state.RunState) ([]WorkItemRecord, error) {
	items := st.Items()
	out := make([]WorkItemRecord, 0, len(items))
	for i, item := range items {
		rec := WorkItemRecord{
			ItemID:        item.ID,
			Position:      i,
			Title:         item.Title,
			Kind:          string(item.Kind),
			Format:        string(item.Format),
			Priority:      string(item.Priority),
			Status:        string(item.Status),
			FailureReason: string(item.FailureReason),
			Error:         item.Error,
			QualityScore:  item.QualityScore,
		}
		var err error
		if rec.Dependencies, err = json.Marshal(nonNil(item.Dependencies)); err != nil {
			return nil, fmt.Errorf("failed to marshal dependencies of %s: %w", item.ID, err)
		}
		if rec.Content, err = marshalOptional(item.Content); err != nil {
			return nil, fmt.Errorf("failed to marshal content of %s: %w", item.ID, err)
		}
		if rec.Validation, err = marshalOptional(item.Validation); err != nil {
			return nil, fmt.Errorf("failed to marshal validation of %s: %w", item.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func saveWorkItems(ctx context.Context, q querier, runID uuid.UUID, st *state.RunState) error {
	records, err := WorkItemRecords(st)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(
			`INSERT INTO work_items (run_id, item_id, position, title, kind, format, priority, status,
			                         failure_reason, error_message, quality_score, dependencies, content, validation)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			 ON CONFLICT (run_id, item_id) DO UPDATE
			 SET status = EXCLUDED.status, failure_reason = EXCLUDED.failure_reason,
			     error_message = EXCLUDED.error_message, quality_score = EXCLUDED.quality_score,
			     content = EXCLUDED.content, validation = EXCLUDED.validation`,
			runID, r.ItemID, r.Position, r.Title, r.Kind, r.Format, r.Priority, r.Status,
			nullable(r.FailureReason), nullable(r.Error), r.QualityScore, r.Dependencies, r.Content, r.Validation,
		)
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save work items: %w", err)
	}
	return nil
}

func saveManifest(ctx context.Context, q querier, runID uuid.UUID, manifest []types.ManifestEntry) error {
	if len(manifest) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range manifest {
		batch.Queue(
			`INSERT INTO manifest_entries (run_id, item_id, format, title, location, size_bytes, checksum, fallback)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (run_id, item_id, format) DO UPDATE
			 SET title = EXCLUDED.title, location = EXCLUDED.location, size_bytes = EXCLUDED.size_bytes,
			     checksum = EXCLUDED.checksum, fallback = EXCLUDED.fallback`,
			runID, m.ItemID, string(m.Format), m.Title, m.Location, m.Size, nullable(m.Checksum), m.Fallback,
		)
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	return nil
}

// ListWorkItems returns the stored work items of a run in planning order.
func (db *DB) ListWorkItems(ctx context.Context, runID uuid.UUID) ([]WorkItemRecord, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT item_id, position, title, kind, format, priority, status, failure_reason, error_message,
		        quality_score, dependencies, content, validation
		 FROM work_items WHERE run_id = $1 ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work items: %w", err)
	}
	defer rows.Close()

	var out []WorkItemRecord
	for rows.Next() {
		var r WorkItemRecord
		var kind, format, priority, reason, errMsg *string
		if err := rows.Scan(&r.ItemID, &r.Position, &r.Title, &kind, &format, &priority, &r.Status, &reason, &errMsg,
			&r.QualityScore, &r.Dependencies, &r.Content, &r.Validation); err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		r.Kind, r.Format, r.Priority = deref(kind), deref(format), deref(priority)
		r.FailureReason, r.Error = deref(reason), deref(errMsg)
		out = append(out, r)
	}
	return out, rows.Err()
}

// marshalOptional encodes v, returning nil for a nil pointer so the column stays NULL.
func marshalOptional[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
