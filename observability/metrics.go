package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method"},
	)

	MessagesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "board_messages_created_total",
			Help: "Total messages created",
		},
	)

	// ReactionsApplied is labelled by strategy and by the path that succeeded:
	// "direct", "initialized" (fallback ran) or "failed".
	ReactionsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_reactions_total",
			Help: "Total reaction events",
		},
		[]string{"strategy", "outcome"},
	)

	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "board_store_latency_seconds",
			Help:    "Message store operation latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"backend", "operation"},
	)

	StoreConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_store_conflicts_total",
			Help: "Optimistic transaction conflicts retried by the store",
		},
		[]string{"backend"},
	)
)

// ObserveStore records the latency of one store call started at start.
func ObserveStore(backend, operation string, start time.Time) {
	StoreLatency.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
}
