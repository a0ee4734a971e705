// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeAbandoned = "abandoned"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codetour_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codetour_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	FileFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codetour_file_fetches_total",
			Help: "File content fetches by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codetour_file_fetch_duration_seconds",
			Help:    "Duration of a single file fetch",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "codetour_active_sessions",
			Help: "Number of open tour sessions",
		},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "codetour_websocket_clients",
			Help: "Number of connected websocket clients",
		},
	)

	SelectionChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codetour_selection_changes_total",
			Help: "Selection changes requested by clients",
		},
		[]string{"action"},
	)

	ToursLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "codetour_tours_loaded",
			Help: "Number of tours in the registry",
		},
	)

	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "codetour_build_info",
			Help: "Build metadata, always 1",
		},
		[]string{"version", "commit", "go_version"},
	)
)
