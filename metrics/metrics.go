// Package metrics provides Prometheus metrics for the Commons MCP server.
// It tracks tool calls, upstream API latencies and error rates, and
// continuation bookkeeping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace and subsystem for all metrics
const (
	Namespace = "commons_mcp"
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures request latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing requests
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	}, []string{"tool"})

	// UpstreamLatency measures upstream API call latency by service and action
	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "upstream_latency_seconds",
		Help:      "Upstream API call latency by service and action",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "action"})

	// UpstreamRequestsTotal counts upstream API requests
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "upstream_requests_total",
		Help:      "Total upstream API requests by service, action and status",
	}, []string{"service", "action", "status"})

	// UpstreamErrors counts upstream failures by error code (HTTP status or "transport")
	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "upstream_errors_total",
		Help:      "Upstream API errors by service, action and error code",
	}, []string{"service", "action", "error_code"})

	// ContinuationWrites counts continuation tokens persisted per query type
	ContinuationWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "continuation_writes_total",
		Help:      "Continuation tokens written to the key-value store",
	}, []string{"query_type", "has_more"})

	// MediaSkipped counts query pages that could not be converted to media
	MediaSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "media_pages_skipped_total",
		Help:      "Query pages without image info skipped during media conversion",
	})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})
)

// RecordRequest records a completed request with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	RequestsTotal.WithLabelValues(tool, status).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordAPICall records an upstream API call
func RecordAPICall(service, action string, duration float64, success bool, errorCode string) {
	status := "success"
	if !success {
		status = "error"
	}
	UpstreamRequestsTotal.WithLabelValues(service, action, status).Inc()
	UpstreamLatency.WithLabelValues(service, action).Observe(duration)
	if errorCode != "" {
		UpstreamErrors.WithLabelValues(service, action, errorCode).Inc()
	}
}

// RecordContinuation records a continuation write
func RecordContinuation(queryType string, hasMore bool) {
	more := "false"
	if hasMore {
		more = "true"
	}
	ContinuationWrites.WithLabelValues(queryType, more).Inc()
}
