// Package retry wraps cenkalti/backoff with the two retry shapes used by the bridge.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrExhausted is returned when every attempt of a bounded retry failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy bounds an exponential retry.
type Policy struct {
	Attempts        int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Default is 5 attempts, backing off from 1s up to 12s.
var Default = Policy{
	Attempts:        5,
	InitialInterval: time.Second,
	MaxInterval:     12 * time.Second,
}

// Retry runs an operation with exponential backoff.
type Retry struct {
	ctx     context.Context
	policy  Policy
	onError func(err error, next time.Duration)
}

// New creates a Retry bound to ctx.
func New(ctx context.Context, policy Policy) *Retry {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	return &Retry{ctx: ctx, policy: policy}
}

// WithOnError registers a callback invoked before every backoff sleep.
func (r *Retry) WithOnError(fn func(err error, next time.Duration)) *Retry {
	r.onError = fn
	return r
}

func (r *Retry) notify(err error, next time.Duration) {
	if r.onError != nil {
		r.onError(err, next)
	}
}

// Run calls f until it succeeds, returns a Permanent error, the context ends
// or the attempts are used up. Exhaustion wraps the last error with ErrExhausted.
func (r *Retry) Run(f func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialInterval
	b.MaxInterval = r.policy.MaxInterval
	b.MaxElapsedTime = 0
	b.Reset()

	attempts := 0
	op := func() error {
		attempts++
		return f()
	}

	bounded := backoff.WithMaxRetries(b, uint64(r.policy.Attempts-1))
	err := backoff.RetryNotify(op, backoff.WithContext(bounded, r.ctx), r.notify)
	return r.classify(err, attempts)
}

func (r *Retry) classify(err error, attempts int) error {
	if err == nil {
		return nil
	}
	if ctxErr := r.ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if attempts >= r.policy.Attempts {
		return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, err)
	}
	return err
}

// Permanent marks err as not retryable.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Cooldown retries with a fixed pause, re-synchronizing state before every
// new attempt.
type Cooldown struct {
	Interval time.Duration
	Attempts int
}

// DefaultCooldown is 5 attempts spaced 18s apart.
var DefaultCooldown = Cooldown{
	Interval: 18 * time.Second,
	Attempts: 5,
}

// Run calls op. After a failure it waits Interval, calls resync and retries op.
// A resync failure consumes the attempt.
func (c Cooldown) Run(
	ctx context.Context,
	op func(ctx context.Context) error,
	resync func(ctx context.Context) error,
	onError func(attempt int, err error),
) error {
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}

	attempt := 0
	call := func() error {
		attempt++
		if attempt > 1 && resync != nil {
			if err := resync(ctx); err != nil {
				return fmt.Errorf("resync: %w", err)
			}
		}
		return op(ctx)
	}
	notify := func(err error, _ time.Duration) {
		if onError != nil {
			onError(attempt, err)
		}
	}

	bounded := backoff.WithMaxRetries(backoff.NewConstantBackOff(c.Interval), uint64(attempts-1))
	err := backoff.RetryNotify(call, backoff.WithContext(bounded, ctx), notify)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if attempt >= attempts {
		return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, err)
	}
	return err
}
