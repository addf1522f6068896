package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Counts contract invocations by operation and outcome kind ("ok", "not_found", ...).
	InvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pact_invocations_total",
			Help: "Total number of contract invocations (by operation and result).",
		},
		[]string{"operation", "result"},
	)

	// Measures how long each invocation holds the ledger.
	InvocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pact_invocation_duration_seconds",
			Help:    "Duration of contract invocations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15), // 100µs → ~1.6s
		},
		[]string{"operation"},
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pact_event_publish_errors_total",
			Help: "Number of ledger event publish failures (by event type).",
		},
		[]string{"event_type"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pact_http_requests_total",
			Help: "HTTP dispatch requests by route and status code.",
		},
		[]string{"route", "status"},
	)
)

// ObserveDuration records the time taken since start on the given histogram.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()

	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	default:
		// counters are not meant for duration tracking
	}
}

// IncInvocation counts one invocation outcome.
func IncInvocation(operation, result string) {
	InvocationsTotal.WithLabelValues(operation, result).Inc()
}

// Handler exposes the default registry in Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer serves /metrics on addr in the background.
func StartServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}
