package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backlot_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// PermissionChecks counts permission evaluations and their outcome (allow|deny|error).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backlot_permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"permission", "result"},
	)

	// ActiveSessions tracks active sessions (not expired/revoked).
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "backlot_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backlot_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// StoryParses counts story parse runs by result (success|failure).
	StoryParses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backlot_story_parses_total",
			Help: "Total number of story parse runs",
		},
		[]string{"result"},
	)

	// LLMRequestDuration measures round-trip latency of model completions.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backlot_llm_request_seconds",
			Help:    "Latency of language model requests",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"model", "result"},
	)

	// MediaUploads counts media uploads by entity kind and result.
	MediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backlot_media_uploads_total",
			Help: "Total number of media uploads",
		},
		[]string{"entity", "result"},
	)
)
