package ipc

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ Bus = (*RedisBus)(nil)

// RedisBus is a Bus on redis pub/sub.
type RedisBus struct {
	client *redis.Client
	logger *zap.Logger
}

// DialRedis connects to the redis server at addr and checks it answers.
func DialRedis(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       addr,
		Password:   password,
		DB:         db,
		ClientName: "runtime-bridge",
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedisBus(client, logger), nil
}

func NewRedisBus(client *redis.Client, logger *zap.Logger) *RedisBus {
	return &RedisBus{client: client, logger: logger.Named("redis_bus")}
}

func (b *RedisBus) Publish(ctx context.Context, channel string, env Envelope) error {
	if err := b.client.Publish(ctx, channel, env).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, channel string) (<-chan Envelope, func() error, error) {
	sub := b.client.Subscribe(ctx, channel)
	// Receive blocks until the subscription is confirmed, so nothing published
	// after Subscribe returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribe to %s: %w", channel, err)
	}

	out := make(chan Envelope)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var env Envelope
			if err := env.UnmarshalBinary([]byte(msg.Payload)); err != nil {
				b.logger.Warn("dropping malformed envelope", zap.String("channel", channel), zap.Error(err))
				continue
			}
			select {
			case out <- env:
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	var once sync.Once
	closeSub := func() error {
		once.Do(func() { close(done) })
		return sub.Close()
	}
	return out, closeSub, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}
