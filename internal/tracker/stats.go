package tracker

import (
	"context"
	"time"

	"github.com/VADemon/archive/internal/models"
)

// workerActiveWindow is how recent a commit must be for a worker to count as
// active.
const workerActiveWindow = time.Hour

// Stats assembles the public swarm counters.
func (t *Tracker) Stats(ctx context.Context) (*models.SwarmStats, error) {
	return t.store.SwarmStats(ctx, t.now().Add(-workerActiveWindow))
}
