package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemoteFetchDuration covers collection and single-record reads.
	RemoteFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sp_admin_remote_fetch_duration_seconds",
			Help:    "Remote API fetch duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"collection", "outcome"},
	)

	RemoteMutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sp_admin_remote_mutations_total",
			Help: "Remote API mutations by collection, method and outcome",
		},
		[]string{"collection", "method", "outcome"},
	)

	BreakerOpenCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sp_admin_circuit_breaker_open_total",
			Help: "Requests rejected because the endpoint breaker was open",
		},
		[]string{"endpoint"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sp_admin_http_request_duration_seconds",
			Help:    "Dashboard HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

func Outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

func RecordRemoteFetch(collection string, err error, d time.Duration) {
	RemoteFetchDuration.WithLabelValues(collection, Outcome(err)).Observe(d.Seconds())
}

func RecordRemoteMutation(collection, method string, err error) {
	RemoteMutationCount.WithLabelValues(collection, method, Outcome(err)).Inc()
}

func IncrementBreakerOpen(endpoint string) {
	BreakerOpenCount.WithLabelValues(endpoint).Inc()
}

func RecordHTTPRequestDuration(method, path, status string, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
