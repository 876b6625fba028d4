package tracker

import (
	"context"
	"fmt"
	"log"

	"github.com/VADemon/archive/internal/eventbus"
	"github.com/VADemon/archive/internal/metrics"
	"github.com/VADemon/archive/internal/objectstore"
)

// Finalize seals the batch the worker holds. The authoritative size comes
// from a HEAD of the canonical object, never from the worker; that size is
// the verification oracle for every future commit against this batch.
//
// A batch that is already finished is left untouched: its recorded size has
// been used for verification and must not move. The worker is still
// released, since from its side the job is done.
func (t *Tracker) Finalize(ctx context.Context, workerID, batchID string) error {
	_, batch, err := t.resolveHeld(ctx, workerID, batchID)
	if err != nil {
		return err
	}

	if batch.Finished {
		log.Printf("[finalizer] batch %s already finished, releasing worker without rewrite", batch.ID)
		metrics.FinalizeTotal.WithLabelValues("duplicate").Inc()
		return t.store.ReleaseWorker(ctx, workerID, t.now())
	}

	size, err := t.objects.HeadSize(ctx, objectstore.CanonicalKey(batch.ID))
	if err != nil {
		return fmt.Errorf("failed to read canonical object size: %w", err)
	}

	applied, err := t.store.RecordFinalization(ctx, batch.ID, size)
	if err != nil {
		return err
	}
	if applied {
		metrics.FinalizeTotal.WithLabelValues("finalized").Inc()
		t.publish(eventbus.TypeBatchFinalized, BatchFinalizedEvent{BatchID: batch.ID, ContentSize: size})
	} else {
		log.Printf("[finalizer] batch %s finished concurrently, keeping recorded size", batch.ID)
		metrics.FinalizeTotal.WithLabelValues("duplicate").Inc()
	}

	return t.store.ReleaseWorker(ctx, workerID, t.now())
}
