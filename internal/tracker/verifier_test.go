package tracker

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestCommitUnfinishedIssuesCanonicalUpload(t *testing.T) {
	tr, store, objects := newTestTracker()
	ctx := context.Background()

	store.addWorker("w1", 0)
	store.addBatch("B1", false, 0)
	store.bind("w1", "B1")

	url, err := tr.Commit(ctx, "w1", "B1", 54321)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url == "" {
		t.Fatal("expected a presigned upload url")
	}

	call := objects.lastPresign(t)
	if call.key != "B1.json.gz" {
		t.Errorf("expected canonical key, got %q", call.key)
	}
	if call.length != 54321 {
		t.Errorf("expected declared length signed, got %d", call.length)
	}

	// The worker stays bound until finalize.
	w := store.worker("w1")
	if w.CurrentBatch == nil || *w.CurrentBatch != "B1" {
		t.Error("commit against an unfinished batch must not release the worker")
	}
}

func TestCommitWithinThresholdReleases(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tr, store, _ := newTestTracker(WithClock(func() time.Time { return now }))
	ctx := context.Background()

	store.addWorker("w2", 0)
	store.addBatch("B1", true, 12345)
	store.bind("w2", "B1")

	// 12400 vs 12345 is a relative discrepancy of about 0.0045.
	url, err := tr.Commit(ctx, "w2", "B1", 12400)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "" {
		t.Errorf("verified commit must return an empty upload url, got %q", url)
	}

	w := store.worker("w2")
	if w.Reputation != 1 {
		t.Errorf("expected reputation 1, got %d", w.Reputation)
	}
	if w.CurrentBatch != nil {
		t.Error("expected worker released")
	}
	if w.LastCommitted == nil || !w.LastCommitted.Equal(now) {
		t.Errorf("expected last_committed stamped %v, got %v", now, w.LastCommitted)
	}
}

func TestCommitMismatchPenalizesAndDisables(t *testing.T) {
	tr, store, _ := newTestTracker()
	ctx := context.Background()

	store.addWorker("w3", 0)
	store.addBatch("B1", true, 12345)
	store.bind("w3", "B1")

	_, err := tr.Commit(ctx, "w3", "B1", 99999)
	perr := protocolCode(t, err)
	if perr.Code != CodeSizeMismatch {
		t.Fatalf("expected code %d, got %d", CodeSizeMismatch, perr.Code)
	}
	if perr.BatchID != "B1" {
		t.Errorf("expected batch id in error, got %q", perr.BatchID)
	}

	w := store.worker("w3")
	if w.Reputation != -10 {
		t.Errorf("expected reputation -10, got %d", w.Reputation)
	}
	if !w.Disabled {
		t.Error("expected worker disabled")
	}
	if w.CurrentBatch == nil || *w.CurrentBatch != "B1" {
		t.Error("penalized worker must keep its batch bound")
	}

	// Every further protected call answers WORKER_DISABLED.
	if _, err := tr.Commit(ctx, "w3", "B1", 12345); protocolCode(t, err).Code != CodeWorkerDisabled {
		t.Error("expected WORKER_DISABLED after auto-disable")
	}
	if _, err := tr.Dispatch(ctx, "w3"); protocolCode(t, err).Code != CodeWorkerDisabled {
		t.Error("expected WORKER_DISABLED on dispatch after auto-disable")
	}
}

func TestCommitMismatchKeepsReputableWorkerEnabled(t *testing.T) {
	tr, store, _ := newTestTracker()
	ctx := context.Background()

	store.addWorker("w5", 60)
	store.addBatch("B1", true, 12345)
	store.bind("w5", "B1")

	_, err := tr.Commit(ctx, "w5", "B1", 99999)
	if protocolCode(t, err).Code != CodeSizeMismatch {
		t.Fatal("expected SIZE_MISMATCH")
	}

	w := store.worker("w5")
	if w.Reputation != 50 || w.Disabled {
		t.Errorf("expected reputation 50 still enabled, got %d disabled=%v", w.Reputation, w.Disabled)
	}
}

func TestCommitTrustedOverwrite(t *testing.T) {
	tr, store, objects := newTestTracker()
	ctx := context.Background()

	store.addWorker("w4", 150)
	store.addBatch("B1", true, 12345)
	store.bind("w4", "B1")

	url, err := tr.Commit(ctx, "w4", "B1", 99999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(url, "B1.json.gz-0") {
		t.Errorf("expected upload url for first versioned key, got %q", url)
	}

	call := objects.lastPresign(t)
	if call.key != "B1.json.gz-0" || call.length != 99999 {
		t.Errorf("unexpected presign %+v", call)
	}

	b := store.batch("B1")
	if b.ContentSize == nil || *b.ContentSize != 99999 {
		t.Errorf("expected recorded size 99999, got %v", b.ContentSize)
	}
	if b.Version != 1 {
		t.Errorf("expected version 1, got %d", b.Version)
	}
	if !b.Finished {
		t.Error("overwrite must not unfinish the batch")
	}

	w := store.worker("w4")
	if w.CurrentBatch == nil || *w.CurrentBatch != "B1" {
		t.Error("trusted overwrite must not release the worker")
	}
	if w.Reputation != 150 {
		t.Errorf("trusted overwrite must not credit reputation, got %d", w.Reputation)
	}
}

func TestTrustedOverwriteVersionsNeverCollide(t *testing.T) {
	tr, store, objects := newTestTracker()
	ctx := context.Background()

	store.addWorker("w4", 150)
	store.addBatch("B1", true, 12345)
	store.bind("w4", "B1")

	// Each report is far enough from the previously recorded size to stay
	// on the overwrite path.
	sizes := []int64{99999, 200000, 400000, 800000, 1600000}
	seen := map[string]bool{}
	for i, size := range sizes {
		url, err := tr.Commit(ctx, "w4", "B1", size)
		if err != nil {
			t.Fatalf("overwrite %d: unexpected error: %v", i, err)
		}
		if url == "" {
			t.Fatalf("overwrite %d: expected an upload url", i)
		}
		call := objects.lastPresign(t)
		want := fmt.Sprintf("B1.json.gz-%d", i)
		if call.key != want {
			t.Errorf("overwrite %d: expected key %q, got %q", i, want, call.key)
		}
		if seen[call.key] {
			t.Errorf("object key %q reused", call.key)
		}
		seen[call.key] = true

		if got := store.batch("B1").Version; got != int64(i+1) {
			t.Errorf("overwrite %d: expected version %d, got %d", i, i+1, got)
		}
	}
}

func TestCommitPreconditions(t *testing.T) {
	tr, store, _ := newTestTracker()
	ctx := context.Background()

	store.addWorker("w1", 0)
	store.addBatch("B1", false, 0)
	store.addBatch("B2", false, 0)
	store.bind("w1", "B1")

	if _, err := tr.Commit(ctx, "w1", "", 1); protocolCode(t, err).Code != CodeEmptyBatchID {
		t.Error("expected EMPTY_BATCH_ID")
	}

	_, err := tr.Commit(ctx, "w1", "B2", 1)
	perr := protocolCode(t, err)
	if perr.Code != CodeMustCommitCurrent {
		t.Errorf("expected MUST_COMMIT_CURRENT, got %d", perr.Code)
	}
	if perr.BatchID != "B1" {
		t.Errorf("error must name the held batch, got %q", perr.BatchID)
	}

	// Bound batch id that has no row behind it.
	store.bind("w1", "ghost")
	if _, err := tr.Commit(ctx, "w1", "ghost", 1); protocolCode(t, err).Code != CodeUnknownBatch {
		t.Error("expected UNKNOWN_BATCH")
	}

	// Holding nothing at all.
	store.unbind("w1")
	if _, err := tr.Commit(ctx, "w1", "B1", 1); protocolCode(t, err).Code != CodeMustCommitCurrent {
		t.Error("expected MUST_COMMIT_CURRENT when holding nothing")
	}
}
