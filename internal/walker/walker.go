// Package walker follows one chain block by block, verifying linkage and
// persisting every finalized block in order.
package walker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/retry"
	"go.uber.org/zap"
)

var (
	// ErrCorruptedData means a fetched block does not link to its stored predecessor.
	ErrCorruptedData = errors.New("corrupted data")
	// ErrRetryExhausted means a block could not be fetched or stored within the retry bound.
	ErrRetryExhausted = errors.New("retry exhausted")
)

// Config configures a Walker.
type Config struct {
	// Start is the first block walked when the cache holds nothing for the chain yet.
	Start uint64
	Retry retry.Policy
}

// Walker persists blocks of one chain strictly in increasing order.
type Walker struct {
	chain   model.Chain
	source  Source
	cache   Cache
	target  Target
	metrics Metrics
	logger  *zap.Logger
	config  Config
}

// New creates a Walker for chain.
func New(chain model.Chain, source Source, cache Cache, target Target, metrics Metrics, logger *zap.Logger, config Config) *Walker {
	return &Walker{
		chain:   chain,
		source:  source,
		cache:   cache,
		target:  target,
		metrics: metrics,
		logger:  logger.Named("walker").With(zap.String("chain", string(chain))),
		config:  config,
	}
}

// Run walks until ctx is canceled or a fatal error occurs. Fatal errors wrap
// ErrCorruptedData or ErrRetryExhausted.
func (w *Walker) Run(ctx context.Context) error {
	next, previous, err := w.resume(ctx)
	if err != nil {
		return err
	}
	w.logger.Info("walker started", zap.Uint64("next", next))

	for {
		if err := w.target.WaitFor(ctx, next); err != nil {
			return err
		}

		started := time.Now()
		block, err := w.step(ctx, next, previous)
		w.metrics.ObserveBlock(err, next, started)
		if err != nil {
			return err
		}

		w.logger.Debug("block stored", zap.Uint64("number", next), zap.String("hash", block.Hash))
		previous = &block
		next++
	}
}

func (w *Walker) resume(ctx context.Context) (uint64, *model.Block, error) {
	head, ok, err := w.cache.Head(ctx, w.chain)
	if err != nil {
		return 0, nil, fmt.Errorf("load head: %w", err)
	}
	if !ok || head < w.config.Start {
		return w.config.Start, nil, nil
	}
	previous, err := w.cache.Get(ctx, w.chain, head)
	if err != nil {
		return 0, nil, fmt.Errorf("load head block %d: %w", head, err)
	}
	return head + 1, &previous, nil
}

func (w *Walker) step(ctx context.Context, number uint64, previous *model.Block) (model.Block, error) {
	var block model.Block
	err := w.retry(ctx, "fetch", number, func() error {
		var err error
		block, err = w.source.Block(ctx, number)
		return err
	})
	if err != nil {
		return model.Block{}, err
	}

	if previous != nil && block.ParentHash != previous.Hash {
		w.logger.Error("block does not link to its predecessor",
			zap.Uint64("number", number),
			zap.String("parent_hash", block.ParentHash),
			zap.String("previous_hash", previous.Hash),
		)
		return model.Block{}, fmt.Errorf("%w: %s block %d has parent %s, stored block %d is %s",
			ErrCorruptedData, w.chain, number, block.ParentHash, previous.Number, previous.Hash)
	}

	err = w.retry(ctx, "store", number, func() error {
		return w.cache.Put(ctx, w.chain, block)
	})
	if err != nil {
		return model.Block{}, err
	}
	return block, nil
}

func (w *Walker) retry(ctx context.Context, operation string, number uint64, fn func() error) error {
	err := retry.New(ctx, w.config.Retry).
		WithOnError(func(err error, next time.Duration) {
			w.logger.Warn(operation+" failed, retrying",
				zap.Uint64("number", number),
				zap.Duration("next", next),
				zap.Error(err),
			)
		}).
		Run(fn)
	if errors.Is(err, retry.ErrExhausted) {
		return fmt.Errorf("%w: %s %s block %d: %w", ErrRetryExhausted, operation, w.chain, number, err)
	}
	return err
}
