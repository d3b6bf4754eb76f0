package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncClientStepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sync_client",
		Name:      "steps_total",
		Help:      "Count of blobs posted to enclaves.",
	}, []string{"loop", "status"})

	syncClientStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "sync_client",
		Name:      "step_duration_seconds",
		Help:      "Duration of posting one blob to an enclave.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"loop", "status"})

	syncClientCursor = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sync_client",
		Name:      "cursor",
		Help:      "Sync cursors per worker.",
	}, []string{"worker", "cursor"})
)

// SyncClient tracks metrics for a worker's sync loops.
type SyncClient struct {
	worker string
}

// NewSyncClient constructs a SyncClient collector for worker.
func NewSyncClient(worker string) *SyncClient {
	return &SyncClient{worker: orUnknown(worker)}
}

// ObserveHeaders records a header sync step.
func (m SyncClient) ObserveHeaders(err error, started time.Time) {
	m.observe("headers", err, started)
}

// ObserveDispatch records a block dispatch step.
func (m SyncClient) ObserveDispatch(err error, started time.Time) {
	m.observe("dispatch", err, started)
}

func (m SyncClient) observe(loop string, err error, started time.Time) {
	status := statusOf(err)
	syncClientStepsTotal.WithLabelValues(loop, status).Inc()
	syncClientStepDuration.WithLabelValues(loop, status).Observe(time.Since(started).Seconds())
}

// SetCursors publishes the worker's sync status.
func (m SyncClient) SetCursors(parentHeaders, paraHeaders, paraBlocks uint64) {
	syncClientCursor.WithLabelValues(m.worker, "parent_header").Set(float64(parentHeaders))
	syncClientCursor.WithLabelValues(m.worker, "para_header").Set(float64(paraHeaders))
	syncClientCursor.WithLabelValues(m.worker, "para_block").Set(float64(paraBlocks))
}
