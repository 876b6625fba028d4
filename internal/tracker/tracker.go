// Package tracker enforces the coordination protocol between archive workers
// and batches: enrollment, reputation-driven dispatch, commit-time size
// verification and finalization. All coordination state lives in the store;
// the tracker itself keeps no per-worker memory.
package tracker

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/VADemon/archive/internal/eventbus"
	"github.com/VADemon/archive/internal/models"
)

// Store is the persistence surface the tracker coordinates through.
// *repository.Repository satisfies it.
type Store interface {
	GetWorker(ctx context.Context, id string) (*models.Worker, error)
	EnrollWorker(ctx context.Context, id, ip string) error
	CountWorkersByIP(ctx context.Context, ip string) (int64, error)
	WorkerIDsForIP(ctx context.Context, ip string) ([]string, error)
	BindWorker(ctx context.Context, workerID, batchID string) (bool, error)
	ReleaseWorker(ctx context.Context, workerID string, committedAt time.Time) error
	PenalizeWorker(ctx context.Context, workerID string, penalty int64) (int64, bool, error)

	GetBatch(ctx context.Context, id string) (*models.Batch, error)
	PickRandomBatch(ctx context.Context, finished bool) (*models.Batch, error)
	BatchCounts(ctx context.Context) (models.BatchCounts, error)
	RecordVersionedOverwrite(ctx context.Context, batchID string, contentSize int64) (int64, error)
	RecordFinalization(ctx context.Context, batchID string, contentSize int64) (bool, error)

	SwarmStats(ctx context.Context, activeSince time.Time) (*models.SwarmStats, error)
	StageSubmissions(ctx context.Context, kind models.SubmissionKind, ids []string) ([]string, error)

	ListWorkers(ctx context.Context, onlyDisabled bool, limit, offset int) ([]models.Worker, error)
	EnableWorker(ctx context.Context, id string, reputation int64) (bool, error)
	ForceRelease(ctx context.Context, id string) (bool, error)
}

// ObjectStore issues presigned upload URLs and probes stored object sizes.
type ObjectStore interface {
	PresignPut(key string, contentLength int64) (string, error)
	HeadSize(ctx context.Context, key string) (int64, error)
	PublicBaseURL() string
}

// Tracker wires the store and the object store together under the protocol
// rules. Safe for concurrent use.
type Tracker struct {
	store     Store
	objects   ObjectStore
	threshold float64

	bus *eventbus.Bus
	now func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// Option adjusts a Tracker. Tests use these to pin time and randomness.
type Option func(*Tracker)

// WithRand replaces the dispatch RNG. The default is seeded from the clock.
func WithRand(rng *rand.Rand) Option {
	return func(t *Tracker) { t.rng = rng }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithBus publishes tracker events to bus for the live feed.
func WithBus(bus *eventbus.Bus) Option {
	return func(t *Tracker) { t.bus = bus }
}

func New(store Store, objects ObjectStore, contentThreshold float64, opts ...Option) *Tracker {
	t := &Tracker{
		store:     store,
		objects:   objects,
		threshold: contentThreshold,
		now:       time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// intn draws from the shared RNG under a lock; rand.Rand is not safe for
// concurrent use.
func (t *Tracker) intn(n int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rng.Intn(n)
}

func (t *Tracker) publish(eventType string, data interface{}) {
	if t.bus == nil {
		return
	}
	t.bus.Publish(eventbus.Event{Type: eventType, Timestamp: t.now(), Data: data})
}

// resolve loads a worker and applies the admission gates shared by every
// protected operation.
func (t *Tracker) resolve(ctx context.Context, workerID string) (*models.Worker, error) {
	w, err := t.store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, errUnknownWorker()
	}
	if w.Disabled {
		return nil, errWorkerDisabled()
	}
	return w, nil
}

// resolveHeld applies the commit/finalize preconditions: worker admitted,
// non-empty batch id matching the held batch, batch row present. On a held
// mismatch the error names the batch the worker actually holds.
func (t *Tracker) resolveHeld(ctx context.Context, workerID, batchID string) (*models.Worker, *models.Batch, error) {
	w, err := t.resolve(ctx, workerID)
	if err != nil {
		return nil, nil, err
	}
	if batchID == "" {
		return nil, nil, errEmptyBatchID()
	}
	if w.CurrentBatch == nil || *w.CurrentBatch != batchID {
		held := ""
		if w.CurrentBatch != nil {
			held = *w.CurrentBatch
		}
		return nil, nil, errMustCommitCurrent(held)
	}
	batch, err := t.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, nil, err
	}
	if batch == nil {
		return nil, nil, errUnknownBatch()
	}
	return w, batch, nil
}
