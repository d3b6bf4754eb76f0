package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	walkerBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "walker",
		Name:      "blocks_total",
		Help:      "Count of blocks fetched and persisted by the walker.",
	}, []string{"chain", "status"})

	walkerBlockDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "walker",
		Name:      "block_duration_seconds",
		Help:      "Duration of fetching and persisting a block.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"chain", "status"})

	walkerHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "walker",
		Name:      "height",
		Help:      "Last block persisted by the walker.",
	}, []string{"chain"})

	walkerTarget = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "walker",
		Name:      "target",
		Help:      "Finalized height the walker is heading to.",
	}, []string{"chain"})
)

// Walker tracks metrics for a chain walker.
type Walker struct {
	chain string
}

// NewWalker constructs a Walker collector for chain.
func NewWalker(chain string) *Walker {
	return &Walker{chain: orUnknown(chain)}
}

// ObserveBlock records a block fetch outcome; the height gauge follows successes.
func (m Walker) ObserveBlock(err error, number uint64, started time.Time) {
	status := statusOf(err)
	walkerBlocksTotal.WithLabelValues(m.chain, status).Inc()
	walkerBlockDuration.WithLabelValues(m.chain, status).Observe(time.Since(started).Seconds())
	if err == nil {
		walkerHeight.WithLabelValues(m.chain).Set(float64(number))
	}
}

// SetTarget publishes the finalized height.
func (m Walker) SetTarget(number uint64) {
	walkerTarget.WithLabelValues(m.chain).Set(float64(number))
}
