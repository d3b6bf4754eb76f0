package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lifecycleTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "lifecycle",
		Name:      "transitions_total",
		Help:      "Count of worker state transitions.",
	}, []string{"from", "to"})

	lifecycleActionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "lifecycle",
		Name:      "action_duration_seconds",
		Help:      "Duration of lifecycle actions.",
		Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 300, 900, 3600},
	}, []string{"action", "status"})

	lifecycleWorkerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "lifecycle",
		Name:      "worker_state",
		Help:      "1 for the state a worker is in, 0 for the others.",
	}, []string{"worker", "state"})
)

// Lifecycle tracks metrics for worker state machines.
type Lifecycle struct {
	states []string
}

// NewLifecycle constructs a Lifecycle collector. states lists every state name.
func NewLifecycle(states ...string) *Lifecycle {
	return &Lifecycle{states: states}
}

// ObserveTransition records a transition and updates the state gauge of worker.
func (m Lifecycle) ObserveTransition(worker, from, to string) {
	lifecycleTransitionsTotal.WithLabelValues(from, to).Inc()
	for _, state := range m.states {
		value := 0.0
		if state == to {
			value = 1
		}
		lifecycleWorkerState.WithLabelValues(orUnknown(worker), state).Set(value)
	}
}

// ObserveAction records the outcome of a lifecycle action.
func (m Lifecycle) ObserveAction(action string, err error, started time.Time) {
	lifecycleActionDuration.WithLabelValues(action, statusOf(err)).Observe(time.Since(started).Seconds())
}
