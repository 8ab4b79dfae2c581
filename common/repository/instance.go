// Package repository provides the Postgres-backed implementation of
// workflow/host.Store, keyed by entity_id, grounded on the teacher's
// RunRepository (plain pgx SQL with $1-style placeholders and
// fmt.Errorf("...: %w", err) wrapping).
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/flowcore/bpmnengine/common/db"
	"github.com/flowcore/bpmnengine/workflow/host"
)

// InstanceRepository implements workflow/host.Store against the
// "workflow_instance" table.
type InstanceRepository struct {
	db *db.DB
}

// NewInstanceRepository creates a new instance repository.
func NewInstanceRepository(database *db.DB) *InstanceRepository {
	return &InstanceRepository{db: database}
}

var _ host.Store = (*InstanceRepository)(nil)

// Get fetches a persisted record by entity id.
func (r *InstanceRepository) Get(ctx context.Context, id string) (host.Record, bool, error) {
	query := `
		SELECT id, data, touched
		FROM workflow_instance
		WHERE id = $1
	`

	var rec host.Record
	err := r.db.QueryRow(ctx, query, id).Scan(&rec.ID, &rec.Data, &rec.Touched)
	if errors.Is(err, pgx.ErrNoRows) {
		return host.Record{}, false, nil
	}
	if err != nil {
		return host.Record{}, false, fmt.Errorf("get instance %s: %w", id, err)
	}
	return rec, true, nil
}

// Put upserts a persisted record.
func (r *InstanceRepository) Put(ctx context.Context, rec host.Record) error {
	if rec.Touched.IsZero() {
		rec.Touched = time.Now()
	}

	query := `
		INSERT INTO workflow_instance (id, data, touched)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = $2, touched = $3
	`

	_, err := r.db.Exec(ctx, query, rec.ID, rec.Data, rec.Touched)
	if err != nil {
		return fmt.Errorf("put instance %s: %w", rec.ID, err)
	}
	return nil
}

// Delete removes a persisted record.
func (r *InstanceRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM workflow_instance WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete instance %s: %w", id, err)
	}
	return nil
}

// Exists reports whether a record exists for the given entity id.
func (r *InstanceRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM workflow_instance WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check instance exists %s: %w", id, err)
	}
	return exists, nil
}
