// Package kvtest provides KV stores for tests.
package kvtest

import (
	"context"
	"sync"
	"testing"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv/badgerkv"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/metrics"
	"go.uber.org/zap"
)

// NewMemory opens an in-memory badger store closed at the end of the test.
func NewMemory(t testing.TB) *badgerkv.Store {
	t.Helper()

	store, err := badgerkv.Open("", zap.NewNop(), metrics.NewKVStore())
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// Spy wraps a store, counts writes and can inject failures.
type Spy struct {
	kv.Store

	mu      sync.Mutex
	writes  int
	puts    int
	written []string

	// HasErr, when set, is consulted before every Has call.
	HasErr func(key string) error
	// WriteErr, when set, is consulted before every Write call.
	WriteErr func(batch *kv.Batch) error
}

// NewSpy wraps store.
func NewSpy(store kv.Store) *Spy {
	return &Spy{Store: store}
}

func (s *Spy) Has(ctx context.Context, key string) (bool, error) {
	if s.HasErr != nil {
		if err := s.HasErr(key); err != nil {
			return false, err
		}
	}
	return s.Store.Has(ctx, key)
}

func (s *Spy) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.puts++
	s.written = append(s.written, key)
	s.mu.Unlock()
	return s.Store.Put(ctx, key, value)
}

func (s *Spy) Write(ctx context.Context, batch *kv.Batch) error {
	if s.WriteErr != nil {
		if err := s.WriteErr(batch); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.writes++
	for _, op := range batch.Ops {
		s.written = append(s.written, op.Key)
	}
	s.mu.Unlock()
	return s.Store.Write(ctx, batch)
}

// Writes returns the number of Write calls.
func (s *Spy) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Puts returns the number of Put calls.
func (s *Spy) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// WrittenKeys returns every key written so far, in order.
func (s *Spy) WrittenKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.written...)
}

// Reset clears the counters.
func (s *Spy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes, s.puts, s.written = 0, 0, nil
}
