package tracker

import (
	"context"
	"fmt"
	"math"

	"github.com/VADemon/archive/internal/eventbus"
	"github.com/VADemon/archive/internal/metrics"
	"github.com/VADemon/archive/internal/objectstore"
)

const (
	// sizeMismatchPenalty is deducted per failed verification; five misses
	// from a fresh worker put it below zero and disable it.
	sizeMismatchPenalty = 10

	// trustedReputation is the bar above which a mismatched commit becomes
	// a versioned overwrite instead of a penalty.
	trustedReputation = 100
)

// Commit validates the worker's reported content size for the batch it holds
// and answers with an upload URL when an upload is expected.
//
// An unfinished batch yields a presigned PUT for the canonical key; the
// worker uploads and then calls finalize. A finished batch turns the call
// into a verification: a report within the threshold releases the worker and
// returns an empty URL, a trusted worker's mismatch is preserved under a
// versioned key, and anyone else is penalized and keeps the batch bound.
func (t *Tracker) Commit(ctx context.Context, workerID, batchID string, contentSize int64) (string, error) {
	w, batch, err := t.resolveHeld(ctx, workerID, batchID)
	if err != nil {
		return "", err
	}

	if !batch.Finished {
		url, err := t.objects.PresignPut(objectstore.CanonicalKey(batch.ID), contentSize)
		if err != nil {
			return "", err
		}
		metrics.CommitTotal.WithLabelValues("upload").Inc()
		return url, nil
	}

	if batch.ContentSize == nil {
		return "", fmt.Errorf("finished batch %s has no recorded size", batch.ID)
	}
	authoritative := *batch.ContentSize

	d := math.Abs(float64(contentSize)-float64(authoritative)) / float64(authoritative)
	metrics.CommitDiscrepancy.Observe(d)

	if d < t.threshold {
		if err := t.store.ReleaseWorker(ctx, workerID, t.now()); err != nil {
			return "", err
		}
		metrics.CommitTotal.WithLabelValues("verified").Inc()
		t.publish(eventbus.TypeBatchVerified, BatchVerifiedEvent{BatchID: batch.ID})
		return "", nil
	}

	if w.Reputation > trustedReputation {
		keyVersion, err := t.store.RecordVersionedOverwrite(ctx, batch.ID, contentSize)
		if err != nil {
			return "", err
		}
		url, err := t.objects.PresignPut(objectstore.VersionKey(batch.ID, keyVersion), contentSize)
		if err != nil {
			return "", err
		}
		metrics.CommitTotal.WithLabelValues("overwrite").Inc()
		t.publish(eventbus.TypeBatchOverwritten, BatchOverwrittenEvent{BatchID: batch.ID, Version: keyVersion})
		return url, nil
	}

	if _, _, err := t.store.PenalizeWorker(ctx, workerID, sizeMismatchPenalty); err != nil {
		return "", err
	}
	metrics.CommitTotal.WithLabelValues("mismatch").Inc()
	return "", errSizeMismatch(batch.ID)
}
