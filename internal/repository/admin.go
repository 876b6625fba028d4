package repository

import (
	"context"
	"fmt"

	"github.com/VADemon/archive/internal/models"
)

// ListWorkers returns workers ordered by reputation, highest first.
// With onlyDisabled set, only disabled workers are returned.
func (r *Repository) ListWorkers(ctx context.Context, onlyDisabled bool, limit, offset int) ([]models.Worker, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+workerColumns+" FROM workers WHERE ($1 = FALSE OR disabled) ORDER BY reputation DESC, created_at LIMIT $2 OFFSET $3",
		onlyDisabled, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()

	workers := []models.Worker{}
	for rows.Next() {
		var w models.Worker
		if err := rows.Scan(&w.ID, &w.IP, &w.Reputation, &w.Disabled, &w.CurrentBatch, &w.LastCommitted, &w.CreatedAt); err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// EnableWorker clears the disabled flag and resets reputation to the given
// value. Returns false when the worker does not exist.
func (r *Repository) EnableWorker(ctx context.Context, id string, reputation int64) (bool, error) {
	cmd, err := r.db.Exec(ctx,
		"UPDATE workers SET disabled = FALSE, reputation = $2 WHERE id = $1", id, reputation)
	if err != nil {
		return false, fmt.Errorf("failed to enable worker: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// ForceRelease drops a worker's batch binding without crediting reputation.
// Returns false when the worker does not exist.
func (r *Repository) ForceRelease(ctx context.Context, id string) (bool, error) {
	cmd, err := r.db.Exec(ctx,
		"UPDATE workers SET current_batch = NULL WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to release worker: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}
