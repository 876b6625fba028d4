package tracker

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/VADemon/archive/internal/eventbus"
	"github.com/VADemon/archive/internal/metrics"
)

// maxWorkersPerIP caps enrollment per address. The cap only stops runaway
// enrollment loops; NAT'd volunteer groups stay well under it.
const maxWorkersPerIP = 1000

// newWorkerID returns 128 bits from the system CSPRNG in hex form.
func newWorkerID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Enroll creates a worker for the given address. Returns the new worker id
// and the public bucket root workers use to build download URLs.
func (t *Tracker) Enroll(ctx context.Context, ip string) (string, string, error) {
	n, err := t.store.CountWorkersByIP(ctx, ip)
	if err != nil {
		return "", "", err
	}
	if n > maxWorkersPerIP {
		return "", "", errTooManyWorkers()
	}

	id := newWorkerID()
	if err := t.store.EnrollWorker(ctx, id, ip); err != nil {
		return "", "", err
	}

	metrics.EnrollmentsTotal.Inc()
	t.publish(eventbus.TypeWorkerEnrolled, nil)
	return id, t.objects.PublicBaseURL(), nil
}

// WorkersForIP lists the worker ids enrolled from the caller's address.
func (t *Tracker) WorkersForIP(ctx context.Context, ip string) ([]string, error) {
	return t.store.WorkerIDsForIP(ctx, ip)
}
