// Package metrics holds the tracker's Prometheus collectors. They register
// at init; the API server serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EnrollmentsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_enrollments_total",
		Help: "Workers enrolled since start",
	})
	DispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_dispatch_total",
		Help: "Dispatched batches, split by new work versus re-verification",
	}, []string{"kind"})
	CommitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_commit_total",
		Help: "Commit calls by outcome",
	}, []string{"outcome"})
	FinalizeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_finalize_total",
		Help: "Finalize calls by outcome",
	}, []string{"outcome"})
	SubmissionsStagedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_submissions_staged_total",
		Help: "Identifiers newly staged through the submission endpoints",
	}, []string{"kind"})
	CommitDiscrepancy = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracker_commit_discrepancy_ratio",
		Help:    "Relative size discrepancy of commits against finished batches",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	})
)

func init() {
	prometheus.MustRegister(EnrollmentsTotal, DispatchTotal, CommitTotal, FinalizeTotal, SubmissionsStagedTotal, CommitDiscrepancy)
}
