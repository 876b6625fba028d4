package api

import (
	"context"

	"github.com/VADemon/archive/internal/models"
)

// Coordinator is the tracker surface the HTTP layer drives.
// *tracker.Tracker implements it; tests substitute a fake.
type Coordinator interface {
	Enroll(ctx context.Context, ip string) (workerID, uploadBaseURL string, err error)
	WorkersForIP(ctx context.Context, ip string) ([]string, error)
	Dispatch(ctx context.Context, workerID string) (*models.Batch, error)
	RefetchBatch(ctx context.Context, workerID, batchID string) (*models.Batch, error)
	Commit(ctx context.Context, workerID, batchID string, contentSize int64) (string, error)
	Finalize(ctx context.Context, workerID, batchID string) error
	Submit(ctx context.Context, kind models.SubmissionKind, ids []string) ([]string, error)
	Stats(ctx context.Context) (*models.SwarmStats, error)
	ListWorkers(ctx context.Context, onlyDisabled bool, limit, offset int) ([]models.Worker, error)
	EnableWorker(ctx context.Context, id string, reputation int64) (bool, error)
	ForceRelease(ctx context.Context, id string) (bool, error)
}
