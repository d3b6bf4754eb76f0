// Package syncclient feeds header and block blobs to an enclave until it
// catches up with the bridge, then keeps it in sync.
package syncclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/blob"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/clock"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/retry"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrAlreadyStarted is returned by Start on a running client.
	ErrAlreadyStarted = errors.New("sync client already started")
	// ErrStopped is delivered on Synced when Stop ends the loops before the target is reached.
	ErrStopped = errors.New("sync client stopped")
)

type Config struct {
	PollInterval time.Duration
	Cooldown     retry.Cooldown
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 3 * time.Second,
		Cooldown:     retry.DefaultCooldown,
	}
}

// Client runs the header sync and block dispatch loops of one worker.
type Client struct {
	enclave Enclave
	blobs   Blobs
	metrics Metrics
	logger  *zap.Logger
	config  Config
	sleep   func(ctx context.Context, d time.Duration) error

	status  Status
	started atomic.Bool
	stopped atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
	err     error

	synced     chan error
	syncedOnce sync.Once
	// target is 0 until a range carrying para blocks has been written.
	target atomic.Uint64
}

func New(enclave Enclave, blobs Blobs, metrics Metrics, logger *zap.Logger, config Config) *Client {
	return &Client{
		enclave: enclave,
		blobs:   blobs,
		metrics: metrics,
		logger:  logger.Named("sync_client"),
		config:  config,
		sleep:   clock.SleepWithContext,
		done:    make(chan struct{}),
		synced:  make(chan error, 1),
	}
}

// Status exposes the worker's watermarks.
func (c *Client) Status() *Status {
	return &c.status
}

// Synced receives nil once the enclave has been fed every para block written
// when Start was called, or the error that stopped the loops before that.
// When nothing was written yet, the first written para block becomes the target.
func (c *Client) Synced() <-chan error {
	return c.synced
}

// Start loads the enclave's cursors and launches both loops.
func (c *Client) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	if err := c.resync(ctx); err != nil {
		return fmt.Errorf("load enclave cursors: %w", err)
	}
	_, target, err := c.blobs.Progress(ctx)
	if err != nil {
		return fmt.Errorf("load sync target: %w", err)
	}
	c.target.Store(target)
	c.logger.Info("sync started",
		zap.Uint64("target", target),
		zap.Uint64("parent_header", c.status.ParentHeaderSynchedTo()),
		zap.Uint64("para_header", c.status.ParaHeaderSynchedTo()),
		zap.Uint64("para_block", c.status.ParaBlockDispatchedTo()),
	)
	c.checkTarget()

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	group, groupCtx := errgroup.WithContext(loopCtx)
	group.Go(func() error { return c.loop(groupCtx, "headers", c.syncHeaders) })
	group.Go(func() error { return c.loop(groupCtx, "dispatch", c.dispatchBlocks) })
	go func() {
		defer close(c.done)
		c.err = group.Wait()
		cancel()
		if c.err != nil {
			c.signal(c.err)
			return
		}
		c.signal(ErrStopped)
	}()
	return nil
}

// Stop ends both loops at their next iteration boundary. Calls in flight finish
// and their results are dropped.
func (c *Client) Stop() {
	if c.stopped.CompareAndSwap(false, true) && c.cancel != nil {
		c.cancel()
	}
}

// Wait blocks until both loops returned and reports the fatal error, if any.
func (c *Client) Wait() error {
	if !c.started.Load() {
		return nil
	}
	<-c.done
	return c.err
}

func (c *Client) signal(err error) {
	c.syncedOnce.Do(func() {
		c.synced <- err
	})
}

func (c *Client) checkTarget() {
	target := c.target.Load()
	if target > 0 && c.status.ParaBlockDispatchedTo() >= target {
		c.signal(nil)
	}
}

func (c *Client) updateTarget(para uint64) {
	if para > 0 && c.target.CompareAndSwap(0, para) {
		c.logger.Info("sync target available", zap.Uint64("target", para))
		c.checkTarget()
	}
}

func (c *Client) resync(ctx context.Context) error {
	info, err := c.enclave.GetInfo(ctx)
	if err != nil {
		return err
	}
	c.status.Advance(info.Cursors())
	c.publish()
	return nil
}

func (c *Client) publish() {
	c.metrics.SetCursors(c.status.ParentHeaderSynchedTo(), c.status.ParaHeaderSynchedTo(), c.status.ParaBlockDispatchedTo())
}

// loop runs step until the client stops. A step that keeps failing through
// every cooldown attempt ends the loop with its error.
func (c *Client) loop(ctx context.Context, name string, step func(ctx context.Context) error) error {
	logger := c.logger.With(zap.String("loop", name))
	for !c.stopped.Load() {
		err := c.config.Cooldown.Run(ctx, step, c.resync, func(attempt int, err error) {
			logger.Warn("sync step failed", zap.Int("attempt", attempt), zap.Error(err))
		})
		if c.stopped.Load() {
			return nil
		}
		if err != nil {
			logger.Error("sync loop stopped", zap.Error(err))
			return fmt.Errorf("%s loop: %w", name, err)
		}
	}
	return nil
}

func (c *Client) wait(ctx context.Context) error {
	return c.sleep(ctx, c.config.PollInterval)
}

func (c *Client) syncHeaders(ctx context.Context) error {
	next := c.status.ParentHeaderSynchedTo() + 1
	processed, para, err := c.blobs.Progress(ctx)
	if err != nil {
		return err
	}
	c.updateTarget(para)
	if processed < next {
		return c.wait(ctx)
	}
	headers, err := c.blobs.HeaderBlob(ctx, next)
	if errors.Is(err, blob.ErrNotReady) {
		return c.wait(ctx)
	}
	if err != nil {
		return err
	}

	started := time.Now()
	synced, err := c.enclave.SyncCombinedHeaders(context.WithoutCancel(ctx), headers.Payload)
	c.metrics.ObserveHeaders(err, started)
	if c.stopped.Load() {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync headers from %d: %w", next, err)
	}
	c.status.Advance(synced.RelaychainSyncedTo, synced.ParachainSyncedTo, 0)
	c.publish()
	c.logger.Debug("headers synced",
		zap.Uint64("from", next),
		zap.Uint64("relaychain_synced_to", synced.RelaychainSyncedTo),
		zap.Uint64("parachain_synced_to", synced.ParachainSyncedTo),
	)
	return nil
}

func (c *Client) dispatchBlocks(ctx context.Context) error {
	next := c.status.ParaBlockDispatchedTo() + 1
	headerSynchedTo := c.status.ParaHeaderSynchedTo()
	if headerSynchedTo < next {
		return c.wait(ctx)
	}
	blocks, err := c.blobs.ParaBlockBlob(ctx, next, headerSynchedTo)
	if errors.Is(err, blob.ErrNotReady) {
		return c.wait(ctx)
	}
	if err != nil {
		return err
	}

	started := time.Now()
	dispatched, err := c.enclave.DispatchBlocks(context.WithoutCancel(ctx), blocks.Payload)
	c.metrics.ObserveDispatch(err, started)
	if c.stopped.Load() {
		return nil
	}
	if err != nil {
		return fmt.Errorf("dispatch blocks from %d: %w", next, err)
	}
	c.status.Advance(0, 0, dispatched)
	c.publish()
	c.logger.Debug("blocks dispatched", zap.Uint64("from", next), zap.Uint64("dispatched_to", dispatched))
	c.checkTarget()
	return nil
}
