// Package metrics instruments the checker pipeline with Prometheus
// counters and histograms (SPEC_FULL.md §3): fetch failures, lock steals,
// alerts dispatched/suppressed, verified predictions, and tick duration.
// Instrumentation is ambient — spec.md's Non-goals exclude streaming and
// distributed coordination, not a local self-monitoring endpoint.
//
// Grounded on kubilitics-ai/internal/metrics.go's package-level
// promauto-registered vectors, the simplest style in the pack for a
// process instrumenting itself (as opposed to ariadne's generic
// multi-backend Provider abstraction, which fits a library exposing
// telemetry to callers with pluggable backends — unneeded here, since
// spacewatch has exactly one self-contained binary and one metrics
// backend).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacewatch_fetch_failures_total",
			Help: "Total number of fetch failures per upstream source.",
		},
		[]string{"source"},
	)

	LockStealsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacewatch_lock_steals_total",
			Help: "Total number of lockfile steals, by reason.",
		},
		[]string{"reason"},
	)

	LockRefusalsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spacewatch_lock_refusals_total",
			Help: "Total number of tick runs skipped because a live holder held the lock.",
		},
	)

	AlertsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacewatch_alerts_dispatched_total",
			Help: "Total number of alerts dispatched, by type and urgency.",
		},
		[]string{"type", "urgency"},
	)

	AlertsSuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacewatch_alerts_suppressed_total",
			Help: "Total number of candidate alerts suppressed by cooldown or quiet hours, by type.",
		},
		[]string{"type"},
	)

	PredictionsVerifiedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spacewatch_predictions_verified_total",
			Help: "Total number of predictions resolved to hit or miss.",
		},
		[]string{"status"},
	)

	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "spacewatch_tick_duration_seconds",
			Help:    "Duration of a checker tick's pipeline (fetch through dispatch; prediction verification excluded).",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
	)
)
