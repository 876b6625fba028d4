package repository

import (
	"context"
	"fmt"

	"github.com/VADemon/archive/internal/models"

	"github.com/jackc/pgx/v5"
)

const batchColumns = "id, start_ctid, end_ctid, finished, content_size, videos, version, created_at"

func scanBatch(row pgx.Row) (*models.Batch, error) {
	var b models.Batch
	err := row.Scan(&b.ID, &b.StartCtid, &b.EndCtid, &b.Finished, &b.ContentSize, &b.Videos, &b.Version, &b.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBatch returns the batch row, or nil when the id is unknown.
func (r *Repository) GetBatch(ctx context.Context, id string) (*models.Batch, error) {
	row := r.db.QueryRow(ctx, "SELECT "+batchColumns+" FROM batches WHERE id = $1", id)
	b, err := scanBatch(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	return b, nil
}

// PickRandomBatch draws one batch uniformly from the finished or unfinished
// pool. Returns nil when that pool is empty.
func (r *Repository) PickRandomBatch(ctx context.Context, finished bool) (*models.Batch, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+batchColumns+" FROM batches WHERE finished = $1 ORDER BY random() LIMIT 1", finished)
	b, err := scanBatch(row)
	if err != nil {
		return nil, fmt.Errorf("failed to pick batch: %w", err)
	}
	return b, nil
}

// BatchCounts returns the finished/unfinished split in one round trip.
func (r *Repository) BatchCounts(ctx context.Context) (models.BatchCounts, error) {
	var c models.BatchCounts
	err := r.db.QueryRow(ctx,
		"SELECT count(*) FILTER (WHERE finished), count(*) FILTER (WHERE NOT finished) FROM batches").
		Scan(&c.Finished, &c.Unfinished)
	if err != nil {
		return models.BatchCounts{}, fmt.Errorf("failed to count batches: %w", err)
	}
	return c, nil
}

// RecordVersionedOverwrite stores the reported size of a trusted re-upload and
// bumps the version counter. Returns the version the upload key should carry,
// which is the value before the bump.
func (r *Repository) RecordVersionedOverwrite(ctx context.Context, batchID string, contentSize int64) (int64, error) {
	var keyVersion int64
	err := r.db.QueryRow(ctx,
		"UPDATE batches SET content_size = $2, version = version + 1 WHERE id = $1 RETURNING version - 1",
		batchID, contentSize).Scan(&keyVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to record overwrite: %w", err)
	}
	return keyVersion, nil
}

// RecordFinalization marks the batch finished with its verified object size.
// Returns false when the batch was already finished; the row is untouched in
// that case.
func (r *Repository) RecordFinalization(ctx context.Context, batchID string, contentSize int64) (bool, error) {
	cmd, err := r.db.Exec(ctx,
		"UPDATE batches SET content_size = $2, finished = TRUE WHERE id = $1 AND finished = FALSE",
		batchID, contentSize)
	if err != nil {
		return false, fmt.Errorf("failed to record finalization: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// VideoPage returns up to limit corpus videos in physical order, starting
// strictly after the given ctid marker. "(0,0)" starts from the beginning;
// tuples never occupy offset zero.
func (r *Repository) VideoPage(ctx context.Context, afterCtid string, limit int) ([]models.VideoRef, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, ctid::text FROM videos WHERE ctid > $1::tid ORDER BY ctid LIMIT $2",
		afterCtid, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to page videos: %w", err)
	}
	defer rows.Close()

	var page []models.VideoRef
	for rows.Next() {
		var v models.VideoRef
		if err := rows.Scan(&v.ID, &v.Ctid); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		page = append(page, v)
	}
	return page, rows.Err()
}

// InsertBatches bulk-inserts batch rows, skipping ids that already exist.
// Used by the seeding tool.
func (r *Repository) InsertBatches(ctx context.Context, batches []models.Batch) error {
	if len(batches) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, b := range batches {
		batch.Queue(
			"INSERT INTO batches (id, start_ctid, end_ctid, videos) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING",
			b.ID, b.StartCtid, b.EndCtid, b.Videos)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for range batches {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert batches: %w", err)
		}
	}
	return br.Close()
}
