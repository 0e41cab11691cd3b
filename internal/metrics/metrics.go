// Package metrics exposes the pipeline's counters to Prometheus, additive
// to the spec's required JSON /health endpoint per SPEC_FULL.md §11.6.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voxbridge",
		Name:      "jobs_accepted_total",
		Help:      "Requests accepted at the ingress and enqueued onto the translation stage.",
	})

	JobsDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voxbridge",
		Name:      "jobs_deduplicated_total",
		Help:      "Requests suppressed as duplicates within the dedup window.",
	})

	JobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voxbridge",
		Name:      "jobs_completed_total",
		Help:      "Jobs that reached a terminal state, labeled by stage and outcome.",
	}, []string{"stage", "outcome"})

	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "voxbridge",
		Name:      "queue_depth",
		Help:      "Current number of jobs waiting in each stage queue.",
	}, []string{"stage"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voxbridge",
		Name:      "stage_duration_seconds",
		Help:      "Time spent processing a single job within a stage.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})
)
