package tracker

import (
	"context"

	"github.com/VADemon/archive/internal/models"
)

// Operator surface. The protocol gates do not apply here; a disabled worker
// cannot re-admit itself, so a human does it.

// ListWorkers returns workers ordered by reputation, optionally restricted
// to disabled ones.
func (t *Tracker) ListWorkers(ctx context.Context, onlyDisabled bool, limit, offset int) ([]models.Worker, error) {
	return t.store.ListWorkers(ctx, onlyDisabled, limit, offset)
}

// EnableWorker re-admits a worker at the given reputation.
func (t *Tracker) EnableWorker(ctx context.Context, id string, reputation int64) (bool, error) {
	return t.store.EnableWorker(ctx, id, reputation)
}

// ForceRelease drops a worker's binding without crediting reputation, for
// workers that died mid-batch.
func (t *Tracker) ForceRelease(ctx context.Context, id string) (bool, error) {
	return t.store.ForceRelease(ctx, id)
}
