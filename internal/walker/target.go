package walker

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/clock"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
	"go.uber.org/zap"
)

// DefaultTrackInterval is how often the finalized head is polled.
const DefaultTrackInterval = 3 * time.Second

var _ Target = (*TargetTracker)(nil)

// TargetTracker follows the finalized head of a chain and publishes it to
// waiting walkers and to the KV store.
type TargetTracker struct {
	chain    model.Chain
	source   Source
	store    kv.Store
	metrics  Metrics
	logger   *zap.Logger
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	target  uint64
	known   bool
	changed chan struct{}
}

// NewTargetTracker creates a tracker polling source every interval.
func NewTargetTracker(chain model.Chain, source Source, store kv.Store, metrics Metrics, logger *zap.Logger, interval time.Duration) *TargetTracker {
	return &TargetTracker{
		chain:    chain,
		source:   source,
		store:    store,
		metrics:  metrics,
		logger:   logger.Named("target").With(zap.String("chain", string(chain))),
		interval: interval,
		sleep:    clock.SleepWithContext,
		changed:  make(chan struct{}),
	}
}

// Run polls until ctx is canceled. Poll failures are logged and retried on the next tick.
func (t *TargetTracker) Run(ctx context.Context) error {
	for {
		if err := t.refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			t.logger.Warn("failed to refresh finalized head", zap.Error(err))
		}
		if err := t.sleep(ctx, t.interval); err != nil {
			return err
		}
	}
}

func (t *TargetTracker) refresh(ctx context.Context) error {
	number, err := t.source.Finalized(ctx)
	if err != nil {
		return err
	}
	if !t.advance(number) {
		return nil
	}
	t.metrics.SetTarget(number)
	return t.store.Put(ctx, kv.FinalizedKey(string(t.chain)), []byte(strconv.FormatUint(number, 10)))
}

func (t *TargetTracker) advance(number uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.known && number <= t.target {
		return false
	}
	t.target = number
	t.known = true
	close(t.changed)
	t.changed = make(chan struct{})
	return true
}

// Target returns the last observed finalized height.
func (t *TargetTracker) Target() (uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.target, t.known
}

// WaitFor blocks until the finalized height reaches number.
func (t *TargetTracker) WaitFor(ctx context.Context, number uint64) error {
	for {
		t.mu.Lock()
		reached := t.known && t.target >= number
		changed := t.changed
		t.mu.Unlock()

		if reached {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}
