package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/VADemon/archive/internal/models"

	"github.com/jackc/pgx/v5"
)

const workerColumns = "id, ip, reputation, disabled, current_batch, last_committed, created_at"

func scanWorker(row pgx.Row) (*models.Worker, error) {
	var w models.Worker
	err := row.Scan(&w.ID, &w.IP, &w.Reputation, &w.Disabled, &w.CurrentBatch, &w.LastCommitted, &w.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetWorker returns the worker row, or nil when the id is unknown.
func (r *Repository) GetWorker(ctx context.Context, id string) (*models.Worker, error) {
	row := r.db.QueryRow(ctx, "SELECT "+workerColumns+" FROM workers WHERE id = $1", id)
	w, err := scanWorker(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}
	return w, nil
}

// EnrollWorker inserts a fresh worker row with zero reputation.
func (r *Repository) EnrollWorker(ctx context.Context, id, ip string) error {
	_, err := r.db.Exec(ctx, "INSERT INTO workers (id, ip) VALUES ($1, $2)", id, ip)
	if err != nil {
		return fmt.Errorf("failed to enroll worker: %w", err)
	}
	return nil
}

// CountWorkersByIP counts enrolled workers sharing the given address.
func (r *Repository) CountWorkersByIP(ctx context.Context, ip string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM workers WHERE ip = $1", ip).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count workers: %w", err)
	}
	return n, nil
}

// WorkerIDsForIP lists the ids enrolled from the given address, oldest first.
func (r *Repository) WorkerIDsForIP(ctx context.Context, ip string) ([]string, error) {
	rows, err := r.db.Query(ctx, "SELECT id FROM workers WHERE ip = $1 ORDER BY created_at", ip)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BindWorker assigns a batch to a worker holding nothing. Returns false when
// the worker already holds a batch, so callers can re-read and report it.
func (r *Repository) BindWorker(ctx context.Context, workerID, batchID string) (bool, error) {
	cmd, err := r.db.Exec(ctx,
		"UPDATE workers SET current_batch = $2 WHERE id = $1 AND current_batch IS NULL",
		workerID, batchID)
	if err != nil {
		return false, fmt.Errorf("failed to bind worker: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// ReleaseWorker clears the binding, credits one reputation point and stamps
// the commit time.
func (r *Repository) ReleaseWorker(ctx context.Context, workerID string, committedAt time.Time) error {
	_, err := r.db.Exec(ctx,
		"UPDATE workers SET current_batch = NULL, reputation = reputation + 1, last_committed = $2 WHERE id = $1",
		workerID, committedAt)
	if err != nil {
		return fmt.Errorf("failed to release worker: %w", err)
	}
	return nil
}

// PenalizeWorker deducts penalty points and disables the worker once its
// reputation goes negative. The binding is kept. Returns the new reputation
// and disabled flag.
func (r *Repository) PenalizeWorker(ctx context.Context, workerID string, penalty int64) (int64, bool, error) {
	var reputation int64
	var disabled bool
	err := r.db.QueryRow(ctx,
		"UPDATE workers SET reputation = reputation - $2, disabled = disabled OR (reputation - $2 < 0) WHERE id = $1 RETURNING reputation, disabled",
		workerID, penalty).Scan(&reputation, &disabled)
	if err != nil {
		return 0, false, fmt.Errorf("failed to penalize worker: %w", err)
	}
	return reputation, disabled, nil
}
