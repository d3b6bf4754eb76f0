package ipc

import (
	"context"
	"sync"
)

// memBus is an in-process Bus.
type memBus struct {
	mu   sync.Mutex
	subs map[string][]chan Envelope
}

func newMemBus() *memBus {
	return &memBus{subs: map[string][]chan Envelope{}}
}

func (b *memBus) Publish(_ context.Context, channel string, env Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[channel] {
		select {
		case ch <- env:
		default:
		}
	}
	return nil
}

func (b *memBus) Subscribe(_ context.Context, channel string) (<-chan Envelope, func() error, error) {
	ch := make(chan Envelope, 16)
	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], ch)
	b.mu.Unlock()

	var once sync.Once
	return ch, func() error {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			subs := b.subs[channel]
			for i, c := range subs {
				if c == ch {
					b.subs[channel] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
			close(ch)
		})
		return nil
	}, nil
}

func (b *memBus) subscribers(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[channel])
}

func (b *memBus) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, subs := range b.subs {
		n += len(subs)
	}
	return n
}
