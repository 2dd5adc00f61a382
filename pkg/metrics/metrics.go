// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// SubmissionsTotal tracks chat submissions by outcome (ok, error,
	// rejected_blank, rejected_in_flight).
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_submissions_total",
			Help: "Total chat submissions by outcome",
		},
		[]string{"outcome"},
	)

	// SessionsCreated tracks lazily created chat sessions.
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sessions_created_total",
			Help: "Total chat sessions created",
		},
	)

	// GatewayDuration tracks AI gateway call duration.
	GatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_gateway_duration_seconds",
			Help:    "AI gateway call duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"provider", "operation", "status"},
	)

	// SpeechErrorsTotal tracks surfaced speech recognition errors by kind.
	SpeechErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speech_errors_total",
			Help: "Speech recognition errors surfaced to the user",
		},
		[]string{"kind"},
	)

	// UtterancesTotal tracks started speech playback utterances.
	UtterancesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "speech_utterances_total",
			Help: "Total speech playback utterances started",
		},
	)

	// PersistFailures tracks best-effort persistence write failures.
	PersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "history_persist_failures_total",
			Help: "Failed chat history writes",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordGatewayCall records metrics for one AI gateway call.
func RecordGatewayCall(provider, operation, status string, duration float64) {
	GatewayDuration.WithLabelValues(provider, operation, status).Observe(duration)
}
