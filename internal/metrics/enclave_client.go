package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	enclaveRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "enclave_client",
		Name:      "requests_total",
		Help:      "Count of enclave HTTP calls.",
	}, []string{"endpoint", "status"})
	enclaveRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "enclave_client",
		Name:      "request_duration_seconds",
		Help:      "Duration of enclave HTTP calls.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"endpoint", "status"})
)

// EnclaveClient tracks metrics for calls to enclave runtimes.
type EnclaveClient struct{}

// NewEnclaveClient creates an EnclaveClient metrics collector.
func NewEnclaveClient() *EnclaveClient {
	return &EnclaveClient{}
}

// Observe records a single enclave call outcome and duration.
func (m EnclaveClient) Observe(endpoint string, err error, started time.Time) {
	status := statusOf(err)
	enclaveRequestsTotal.WithLabelValues(endpoint, status).Inc()
	enclaveRequestDuration.WithLabelValues(endpoint, status).Observe(time.Since(started).Seconds())
}
