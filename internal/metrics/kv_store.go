package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	kvStoreOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "kv_store",
		Name:      "operations_total",
		Help:      "Count of KV store operations.",
	}, []string{"operation", "status"})
	kvStoreOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "kv_store",
		Name:      "operation_duration_seconds",
		Help:      "Duration of KV store operations.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation", "status"})
)

// KVStore tracks metrics for the local KV engine.
type KVStore struct{}

// NewKVStore creates a KVStore metrics collector.
func NewKVStore() *KVStore {
	return &KVStore{}
}

// Observe records duration and status of a store operation.
func (m KVStore) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)
	kvStoreOperationsTotal.WithLabelValues(operation, status).Inc()
	kvStoreOperationDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}
