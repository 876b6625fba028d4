package tracker

import (
	"context"
	"fmt"

	"github.com/VADemon/archive/internal/eventbus"
	"github.com/VADemon/archive/internal/metrics"
	"github.com/VADemon/archive/internal/models"
)

// Dispatch assigns a batch to the worker and binds it. Selection is driven
// by reputation: draw x uniformly from {0..R}; x == 0 picks a finished batch
// for re-verification. Reputation 0 therefore always lands on a known-answer
// batch, and a worker with reputation R is re-verified with probability
// 1/(R+1).
func (t *Tracker) Dispatch(ctx context.Context, workerID string) (*models.Batch, error) {
	w, err := t.resolve(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if w.CurrentBatch != nil {
		return nil, errMustCommitCurrent(*w.CurrentBatch)
	}

	counts, err := t.store.BatchCounts(ctx)
	if err != nil {
		return nil, err
	}
	if counts.Finished == 0 && counts.Unfinished == 0 {
		return nil, fmt.Errorf("no batches seeded")
	}

	x := 0
	if w.Reputation > 0 {
		x = t.intn(int(w.Reputation) + 1)
	}

	wantFinished := counts.Finished > 0 && (x == 0 || counts.Unfinished == 0)

	batch, err := t.store.PickRandomBatch(ctx, wantFinished)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		// The pool emptied between counting and picking; try the other one.
		batch, err = t.store.PickRandomBatch(ctx, !wantFinished)
		if err != nil {
			return nil, err
		}
		if batch == nil {
			return nil, fmt.Errorf("no batches available")
		}
	}

	bound, err := t.store.BindWorker(ctx, workerID, batch.ID)
	if err != nil {
		return nil, err
	}
	if !bound {
		// Lost a concurrent dispatch for the same worker; report whatever
		// it holds now.
		held, err := t.store.GetWorker(ctx, workerID)
		if err != nil {
			return nil, err
		}
		if held != nil && held.CurrentBatch != nil {
			return nil, errMustCommitCurrent(*held.CurrentBatch)
		}
		return nil, fmt.Errorf("failed to bind worker to batch %s", batch.ID)
	}

	kind := "new"
	if batch.Finished {
		kind = "verify"
	}
	metrics.DispatchTotal.WithLabelValues(kind).Inc()
	t.publish(eventbus.TypeBatchDispatched, BatchDispatchedEvent{BatchID: batch.ID})
	return batch, nil
}

// RefetchBatch re-serves the payload of the batch the worker holds. Workers
// use it to resume after a crash without losing their assignment.
func (t *Tracker) RefetchBatch(ctx context.Context, workerID, batchID string) (*models.Batch, error) {
	w, err := t.resolve(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if batchID == "" {
		return nil, errEmptyBatchID()
	}
	if w.CurrentBatch == nil || *w.CurrentBatch != batchID {
		return nil, errForbiddenBatch()
	}

	batch, err := t.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, errUnknownBatch()
	}
	return batch, nil
}
