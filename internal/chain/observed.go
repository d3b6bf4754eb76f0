package chain

import (
	"context"
	"time"

	"go.uber.org/ratelimit"
)

var _ Client = (*ObservedClient)(nil)

// ObservedClient rate limits calls to a Client and records their metrics.
type ObservedClient struct {
	client  Client
	limiter ratelimit.Limiter
	metrics Metrics
}

// NewObservedClient wraps client with an rps limit. rps <= 0 disables limiting.
func NewObservedClient(client Client, rps int, metrics Metrics) *ObservedClient {
	limiter := ratelimit.NewUnlimited()
	if rps > 0 {
		limiter = ratelimit.New(rps)
	}
	return &ObservedClient{client: client, limiter: limiter, metrics: metrics}
}

func (o *ObservedClient) start() time.Time {
	o.limiter.Take()
	return time.Now()
}

func (o *ObservedClient) BlockHash(ctx context.Context, number uint64) (hash string, err error) {
	defer func(started time.Time) { o.metrics.Observe("block_hash", err, started) }(o.start())
	return o.client.BlockHash(ctx, number)
}

func (o *ObservedClient) Header(ctx context.Context, hash string) (header Header, err error) {
	defer func(started time.Time) { o.metrics.Observe("header", err, started) }(o.start())
	return o.client.Header(ctx, hash)
}

func (o *ObservedClient) Block(ctx context.Context, hash string) (block SignedBlock, err error) {
	defer func(started time.Time) { o.metrics.Observe("block", err, started) }(o.start())
	return o.client.Block(ctx, hash)
}

func (o *ObservedClient) FinalizedHead(ctx context.Context) (hash string, err error) {
	defer func(started time.Time) { o.metrics.Observe("finalized_head", err, started) }(o.start())
	return o.client.FinalizedHead(ctx)
}

func (o *ObservedClient) Justification(ctx context.Context, hash string) (j []byte, err error) {
	defer func(started time.Time) { o.metrics.Observe("justification", err, started) }(o.start())
	return o.client.Justification(ctx, hash)
}

func (o *ObservedClient) StorageProof(ctx context.Context, keys []string, hash string) (proof [][]byte, err error) {
	defer func(started time.Time) { o.metrics.Observe("storage_proof", err, started) }(o.start())
	return o.client.StorageProof(ctx, keys, hash)
}

func (o *ObservedClient) StorageChanges(ctx context.Context, hash string) (pairs []StoragePair, err error) {
	defer func(started time.Time) { o.metrics.Observe("storage_changes", err, started) }(o.start())
	return o.client.StorageChanges(ctx, hash)
}

func (o *ObservedClient) Storage(ctx context.Context, key string, hash string) (value []byte, err error) {
	defer func(started time.Time) { o.metrics.Observe("storage", err, started) }(o.start())
	return o.client.Storage(ctx, key, hash)
}

func (o *ObservedClient) CurrentSetID(ctx context.Context, hash string) (setID uint64, err error) {
	defer func(started time.Time) { o.metrics.Observe("current_set_id", err, started) }(o.start())
	return o.client.CurrentSetID(ctx, hash)
}

func (o *ObservedClient) ParaHead(ctx context.Context, relayHash string, paraID uint32) (head []byte, err error) {
	defer func(started time.Time) { o.metrics.Observe("para_head", err, started) }(o.start())
	return o.client.ParaHead(ctx, relayHash, paraID)
}
