package blob

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// ErrNotReady is returned when no stored range covers the requested block yet.
var ErrNotReady = errors.New("blob: range not available yet")

const (
	kindHeaders = "headers"
	kindBlocks  = "blocks"
)

// CacheConfig bounds the blob cache.
type CacheConfig struct {
	TTL         time.Duration
	NotFoundTTL time.Duration
	MaxEntries  int
	// Concurrency bounds parallel reads from the KV store on misses.
	Concurrency int64
	// FetchTimeout bounds a shared KV read. Zero disables the bound.
	FetchTimeout time.Duration
}

// DefaultCacheConfig keeps up to 4096 entries for 15 minutes, misses for 2s,
// with 5 concurrent KV reads.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:          15 * time.Minute,
		NotFoundTTL:  2 * time.Second,
		MaxEntries:   4096,
		Concurrency:  5,
		FetchTimeout: time.Minute,
	}
}

// CacheMetrics observes cache behavior.
type CacheMetrics interface {
	Hit(kind string)
	Miss(kind string)
	ObserveFetch(kind string, err error, started time.Time)
}

// Blob is a payload ready to be posted to an enclave.
type Blob struct {
	Meta    model.RangeMeta
	Payload []byte
}

type notFound struct{}

// Cache is a read-through cache of range metadata and payloads.
type Cache struct {
	store   kv.Store
	items   *gocache.Cache
	sem     *semaphore.Weighted
	group   singleflight.Group
	config  CacheConfig
	metrics CacheMetrics
	logger  *zap.Logger
}

// NewCache creates a Cache reading from store.
func NewCache(store kv.Store, config CacheConfig, metrics CacheMetrics, logger *zap.Logger) *Cache {
	return &Cache{
		store:   store,
		items:   gocache.New(config.TTL, config.TTL),
		sem:     semaphore.NewWeighted(config.Concurrency),
		config:  config,
		metrics: metrics,
		logger:  logger.Named("blob_cache"),
	}
}

// HeaderBlob returns the header payload to sync starting at parent block number.
// A committed blob starting at number is preferred over the covering dry range.
func (c *Cache) HeaderBlob(ctx context.Context, number uint64) (Blob, error) {
	meta, err := c.meta(ctx, kindHeaders, kv.BlobMetaKey(string(model.Parent), number))
	if errors.Is(err, ErrNotReady) {
		meta, err = c.meta(ctx, kindHeaders, kv.RangeMetaKey(string(model.Parent), number))
	}
	if err != nil {
		return Blob{}, fmt.Errorf("header blob at %d: %w", number, err)
	}
	payload, err := c.payload(ctx, kindHeaders, meta.HeadersKey)
	if err != nil {
		return Blob{}, fmt.Errorf("header blob at %d: %w", number, err)
	}
	return Blob{Meta: meta, Payload: payload}, nil
}

// ParaBlockBlob returns the dispatch payload starting at para block number.
// Ranges reaching past headerSynchedTo are not served.
func (c *Cache) ParaBlockBlob(ctx context.Context, number, headerSynchedTo uint64) (Blob, error) {
	meta, err := c.meta(ctx, kindBlocks, kv.BlobMetaKey(string(model.Para), number))
	if err == nil && meta.ParaStop > headerSynchedTo {
		err = ErrNotReady
	}
	if errors.Is(err, ErrNotReady) {
		meta, err = c.meta(ctx, kindBlocks, kv.RangeMetaKey(string(model.Para), number))
	}
	if err != nil {
		return Blob{}, fmt.Errorf("block blob at %d: %w", number, err)
	}
	if meta.ParaStop > headerSynchedTo {
		return Blob{}, fmt.Errorf("block blob at %d reaches %d past synced headers %d: %w",
			number, meta.ParaStop, headerSynchedTo, ErrNotReady)
	}
	if meta.BlocksKey == "" {
		return Blob{}, fmt.Errorf("block blob at %d: range %s has no blocks: %w", number, meta.Suffix(), ErrNotReady)
	}
	payload, err := c.payload(ctx, kindBlocks, meta.BlocksKey)
	if err != nil {
		return Blob{}, fmt.Errorf("block blob at %d: %w", number, err)
	}
	return Blob{Meta: meta, Payload: payload}, nil
}

// Progress returns the highest parent and para numbers covered by written ranges.
func (c *Cache) Progress(ctx context.Context) (parent, para uint64, err error) {
	parent, _, err = kv.GetUint64(ctx, c.store, kv.ProgressKey(string(model.Parent)))
	if err != nil {
		return 0, 0, err
	}
	para, _, err = kv.GetUint64(ctx, c.store, kv.ProgressKey(string(model.Para)))
	if err != nil {
		return 0, 0, err
	}
	return parent, para, nil
}

func (c *Cache) meta(ctx context.Context, kind, key string) (model.RangeMeta, error) {
	v, err := c.get(ctx, kind, key, func(raw []byte) (any, error) {
		var meta model.RangeMeta
		if err := model.Unmarshal(raw, &meta); err != nil {
			return nil, err
		}
		return meta, nil
	})
	if err != nil {
		return model.RangeMeta{}, err
	}
	return v.(model.RangeMeta), nil
}

func (c *Cache) payload(ctx context.Context, kind, key string) ([]byte, error) {
	v, err := c.get(ctx, kind, key, func(raw []byte) (any, error) {
		return snappyDecode(key, raw)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// get serves key from memory or loads it once for all concurrent callers.
// The shared load does not depend on any single caller's context; a caller
// that gives up only stops waiting for it.
func (c *Cache) get(ctx context.Context, kind, key string, decode func([]byte) (any, error)) (any, error) {
	if v, ok := c.items.Get(key); ok {
		c.metrics.Hit(kind)
		if _, missing := v.(notFound); missing {
			return nil, ErrNotReady
		}
		return v, nil
	}
	c.metrics.Miss(kind)

	shared := context.WithoutCancel(ctx)
	results := c.group.DoChan(key, func() (any, error) {
		return c.load(shared, kind, key, decode)
	})

	var res singleflight.Result
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if _, missing := res.Val.(notFound); missing {
		return nil, ErrNotReady
	}
	return res.Val, nil
}

func (c *Cache) load(ctx context.Context, kind, key string, decode func([]byte) (any, error)) (any, error) {
	if c.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.FetchTimeout)
		defer cancel()
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	defer c.sem.Release(1)

	started := time.Now()
	raw, err := c.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		c.set(key, notFound{}, c.config.NotFoundTTL)
		c.metrics.ObserveFetch(kind, nil, started)
		return notFound{}, nil
	}
	if err == nil {
		var decoded any
		decoded, err = decode(raw)
		if err == nil {
			c.set(key, decoded, gocache.DefaultExpiration)
			c.metrics.ObserveFetch(kind, nil, started)
			return decoded, nil
		}
	}
	c.metrics.ObserveFetch(kind, err, started)
	return nil, fmt.Errorf("load %s: %w", key, err)
}

// set stores v, evicting the entry closest to expiry when the cache is full.
func (c *Cache) set(key string, v any, ttl time.Duration) {
	if c.config.MaxEntries > 0 && c.items.ItemCount() >= c.config.MaxEntries {
		c.items.DeleteExpired()
		for c.items.ItemCount() >= c.config.MaxEntries {
			victim, ok := c.oldest()
			if !ok {
				break
			}
			c.items.Delete(victim)
			c.logger.Debug("blob cache full, evicted", zap.String("key", victim))
		}
	}
	c.items.Set(key, v, ttl)
}

func (c *Cache) oldest() (string, bool) {
	var (
		victim   string
		earliest int64
		found    bool
	)
	for key, item := range c.items.Items() {
		// Expiration 0 never expires.
		expiration := item.Expiration
		if expiration == 0 {
			expiration = math.MaxInt64
		}
		if !found || expiration < earliest {
			victim, earliest, found = key, expiration, true
		}
	}
	return victim, found
}
