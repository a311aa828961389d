// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the proxy.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts all HTTP requests by method, status class, and route.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "azproxy_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status", "route"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "azproxy_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method", "route"},
	)

	// StreamingConnections tracks upstream SSE streams currently relayed to callers.
	StreamingConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "azproxy_streaming_connections_active",
			Help: "Active streaming connections",
		},
	)

	// UpstreamRequestsTotal counts requests forwarded upstream by route and
	// status class ("error" when the transport failed).
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "azproxy_upstream_requests_total",
			Help: "Upstream requests",
		},
		[]string{"route", "status"},
	)

	// UpstreamLatency records time to upstream response headers in seconds.
	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "azproxy_upstream_latency_seconds",
			Help:    "Upstream latency",
			Buckets: LLMBuckets,
		},
		[]string{"route"},
	)

	// ExtraParametersTotal counts transcoded requests by effective extra-parameters policy.
	ExtraParametersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "azproxy_extra_parameters_total",
			Help: "Requests by extra-parameters policy",
		},
		[]string{"policy"},
	)

	// ExtraFieldsDroppedTotal counts unrecognized fields removed under the drop policy.
	ExtraFieldsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "azproxy_extra_fields_dropped_total",
			Help: "Extra fields dropped",
		},
	)

	// ErrorsTotal counts error envelopes written to callers by error code.
	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "azproxy_errors_total",
			Help: "Error responses",
		},
		[]string{"code"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		StreamingConnections,
		UpstreamRequestsTotal,
		UpstreamLatency,
		ExtraParametersTotal,
		ExtraFieldsDroppedTotal,
		ErrorsTotal,
	)
}

// StatusClass returns a status class label like "2xx" or "5xx".
func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}

// TrackStream marks a relayed stream as active and returns the func that
// marks it finished.
func TrackStream() func() {
	StreamingConnections.Inc()
	return StreamingConnections.Dec
}
