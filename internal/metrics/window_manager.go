package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	windowBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "window_manager",
		Name:      "blocks_total",
		Help:      "Count of parent blocks folded into windows.",
	}, []string{"status"})

	windowDryRangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "window_manager",
		Name:      "dry_ranges_total",
		Help:      "Count of dry ranges closed, by whether they were written or already present.",
	}, []string{"result", "status"})

	windowCommitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "window_manager",
		Name:      "commit_duration_seconds",
		Help:      "Duration of committing a blob range.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	windowCurrent = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "window_manager",
		Name:      "current_window",
		Help:      "Id of the window being accumulated.",
	})
)

// WindowManager tracks metrics for window computation.
type WindowManager struct{}

// NewWindowManager constructs a WindowManager collector.
func NewWindowManager() *WindowManager {
	return &WindowManager{}
}

// ObserveBlock records processing of one parent block.
func (m WindowManager) ObserveBlock(err error) {
	windowBlocksTotal.WithLabelValues(statusOf(err)).Inc()
}

// ObserveDryRange records a closed sub-range. written is false when the range was already stored.
func (m WindowManager) ObserveDryRange(err error, written bool) {
	result := "skipped"
	if written {
		result = "written"
	}
	windowDryRangesTotal.WithLabelValues(result, statusOf(err)).Inc()
}

// ObserveCommit records a blob commit.
func (m WindowManager) ObserveCommit(err error, started time.Time) {
	windowCommitDuration.WithLabelValues(statusOf(err)).Observe(time.Since(started).Seconds())
}

// SetWindow publishes the current window id.
func (m WindowManager) SetWindow(id uint64) {
	windowCurrent.Set(float64(id))
}
