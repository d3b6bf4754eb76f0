// Package blockcache persists finalized blocks of both chains in the KV
// service and lets other processes wait for them.
package blockcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/clock"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/retry"
	"go.uber.org/zap"
)

// ErrNotFound is returned for blocks and genesis records that are not stored yet.
var ErrNotFound = kv.ErrNotFound

// Config tunes WaitFor.
type Config struct {
	PollInterval time.Duration
	Retry        retry.Policy
}

// DefaultConfig polls every 20ms inside a 5 attempt backoff.
func DefaultConfig() Config {
	return Config{
		PollInterval: 20 * time.Millisecond,
		Retry:        retry.Default,
	}
}

// Cache stores blocks keyed by chain and number.
type Cache struct {
	store  kv.Store
	logger *zap.Logger
	config Config
}

// New creates a Cache on top of store.
func New(store kv.Store, logger *zap.Logger, config Config) *Cache {
	return &Cache{
		store:  store,
		logger: logger.Named("blockcache"),
		config: config,
	}
}

// Put writes the block, its existence flag and the head counter in one batch.
func (c *Cache) Put(ctx context.Context, chain model.Chain, block model.Block) error {
	raw, err := model.Marshal(block)
	if err != nil {
		return fmt.Errorf("encode %s block %d: %w", chain, block.Number, err)
	}

	batch := kv.NewBatch().
		Put(kv.BlockKey(string(chain), block.Number), raw).
		Put(kv.BlockExistsKey(string(chain), block.Number), kv.Marker).
		Put(kv.BlockHeadKey(string(chain)), []byte(strconv.FormatUint(block.Number, 10)))
	if err := c.store.Write(ctx, batch); err != nil {
		return fmt.Errorf("store %s block %d: %w", chain, block.Number, err)
	}
	return nil
}

// Get returns a stored block or ErrNotFound.
func (c *Cache) Get(ctx context.Context, chain model.Chain, number uint64) (model.Block, error) {
	raw, err := c.store.Get(ctx, kv.BlockKey(string(chain), number))
	if err != nil {
		return model.Block{}, fmt.Errorf("get %s block %d: %w", chain, number, err)
	}
	var block model.Block
	if err := model.Unmarshal(raw, &block); err != nil {
		return model.Block{}, fmt.Errorf("decode %s block %d: %w", chain, number, err)
	}
	return block, nil
}

// Exists checks the existence flag of a block.
func (c *Cache) Exists(ctx context.Context, chain model.Chain, number uint64) (bool, error) {
	ok, err := c.store.Has(ctx, kv.BlockExistsKey(string(chain), number))
	if err != nil {
		return false, fmt.Errorf("check %s block %d: %w", chain, number, err)
	}
	return ok, nil
}

// Head returns the last persisted block number of chain. ok is false before the first Put.
func (c *Cache) Head(ctx context.Context, chain model.Chain) (number uint64, ok bool, err error) {
	number, ok, err = kv.GetUint64(ctx, c.store, kv.BlockHeadKey(string(chain)))
	if err != nil {
		return 0, false, fmt.Errorf("get %s head: %w", chain, err)
	}
	return number, ok, nil
}

// WaitFor blocks until the block is stored and returns it. Store errors are
// retried with backoff; the last one is returned once the attempts run out.
func (c *Cache) WaitFor(ctx context.Context, chain model.Chain, number uint64) (model.Block, error) {
	logger := c.logger.With(zap.String("chain", string(chain)), zap.Uint64("number", number))

	var block model.Block
	err := retry.New(ctx, c.config.Retry).
		WithOnError(func(err error, next time.Duration) {
			logger.Warn("waiting for block failed, retrying", zap.Error(err), zap.Duration("next", next))
		}).
		Run(func() error {
			err := clock.PollUntil(ctx, c.config.PollInterval, func(ctx context.Context) (bool, error) {
				return c.Exists(ctx, chain, number)
			})
			if err != nil {
				return err
			}
			block, err = c.Get(ctx, chain, number)
			return err
		})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("block never became available", zap.Error(err))
		}
		return model.Block{}, err
	}
	return block, nil
}

// PutGenesis stores genesis material unless a record for the para id already exists.
// written is false when the record was already present.
func (c *Cache) PutGenesis(ctx context.Context, genesis model.Genesis) (written bool, err error) {
	key := kv.GenesisKey(genesis.ParaID)
	exists, err := c.store.Has(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check genesis %d: %w", genesis.ParaID, err)
	}
	if exists {
		return false, nil
	}

	raw, err := model.Marshal(genesis)
	if err != nil {
		return false, fmt.Errorf("encode genesis %d: %w", genesis.ParaID, err)
	}
	if err := c.store.Put(ctx, key, raw); err != nil {
		return false, fmt.Errorf("store genesis %d: %w", genesis.ParaID, err)
	}
	return true, nil
}

// Genesis returns the genesis material of paraID or ErrNotFound.
func (c *Cache) Genesis(ctx context.Context, paraID uint32) (model.Genesis, error) {
	raw, err := c.store.Get(ctx, kv.GenesisKey(paraID))
	if err != nil {
		return model.Genesis{}, fmt.Errorf("get genesis %d: %w", paraID, err)
	}
	var genesis model.Genesis
	if err := model.Unmarshal(raw, &genesis); err != nil {
		return model.Genesis{}, fmt.Errorf("decode genesis %d: %w", paraID, err)
	}
	return genesis, nil
}
