// Package metrics defines the Prometheus instruments exported by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled HTTP requests by route, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipforge_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDuration tracks handler latency by route and method.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clipforge_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600},
		},
		[]string{"route", "method"},
	)

	// ActiveUploads gauges video uploads currently being received or forwarded.
	ActiveUploads = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clipforge_active_uploads",
			Help: "Number of video uploads currently in flight",
		},
	)

	// UploadBytesReceived sums the file bytes spooled from incoming uploads.
	UploadBytesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clipforge_upload_bytes_received_total",
			Help: "Total file bytes received from video uploads",
		},
	)

	// ForwardsTotal counts webhook forwards by result (ok, destination_error, transport_error).
	ForwardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipforge_webhook_forwards_total",
			Help: "Total webhook forward attempts by result",
		},
		[]string{"result"},
	)

	// IntegrationCallsTotal counts calls to third-party APIs by service and outcome.
	IntegrationCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipforge_integration_calls_total",
			Help: "Total third-party API calls by service and outcome",
		},
		[]string{"service", "outcome"},
	)

	// BreakerStateChanges counts circuit breaker transitions by service and new state.
	BreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clipforge_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by service",
		},
		[]string{"service", "state"},
	)
)
