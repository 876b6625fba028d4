package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/VADemon/archive/internal/models"
)

// SwarmStats gathers the landing page counters in a single round trip.
// activeSince is the cutoff for counting a worker as active.
func (r *Repository) SwarmStats(ctx context.Context, activeSince time.Time) (*models.SwarmStats, error) {
	var s models.SwarmStats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM batches),
			(SELECT count(*) FROM batches WHERE finished),
			(SELECT COALESCE(sum(content_size), 0) FROM batches WHERE finished),
			(SELECT count(*) FROM workers),
			(SELECT count(*) FROM workers WHERE last_committed >= $1)`,
		activeSince).Scan(&s.BatchCount, &s.BatchFinished, &s.ContentSize, &s.WorkerCount, &s.WorkerActive)
	if err != nil {
		return nil, fmt.Errorf("failed to gather stats: %w", err)
	}

	s.BatchRemaining = s.BatchCount - s.BatchFinished
	s.EstimatedVideoCount = s.BatchCount * models.VideosPerBatch
	s.EstimatedVideoFinished = s.BatchFinished * models.VideosPerBatch
	s.EstimatedVideoRemaining = s.BatchRemaining * models.VideosPerBatch
	return &s, nil
}

// FinishedBatchCount is used by the startup sanity check.
func (r *Repository) FinishedBatchCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, "SELECT count(*) FROM batches WHERE finished").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count finished batches: %w", err)
	}
	return n, nil
}
