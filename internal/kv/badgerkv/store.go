// Package badgerkv implements the KV service on top of BadgerDB.
package badgerkv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv"
	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"go.uber.org/zap"
)

const (
	gcInterval     = 5 * time.Minute
	gcDiscardRatio = 0.5
)

var _ kv.Store = (*Store)(nil)

// Metrics observes store operations.
type Metrics interface {
	Observe(operation string, err error, started time.Time)
}

// Store is a badger backed kv.Store.
type Store struct {
	db      *badger.DB
	logger  *zap.Logger
	metrics Metrics

	inMemory  bool
	closeOnce sync.Once
	closeCh   chan struct{}
	gcDone    chan struct{}
}

// Open opens (or creates) a database at dir. An empty dir opens an in-memory database.
func Open(dir string, logger *zap.Logger, metrics Metrics) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(newLogAdapter(logger.Named("badger")))
	opts = opts.WithSyncWrites(true)
	opts = opts.WithCompression(options.None)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}

	s := &Store{
		db:       db,
		logger:   logger,
		metrics:  metrics,
		inMemory: dir == "",
		closeCh:  make(chan struct{}),
		gcDone:   make(chan struct{}),
	}
	if s.inMemory {
		close(s.gcDone)
	} else {
		go s.gcWorker()
	}
	return s, nil
}

// Get returns the value stored under key or kv.ErrNotFound.
func (s *Store) Get(_ context.Context, key string) (value []byte, err error) {
	started := time.Now()
	defer func() {
		s.observe("get", err, started)
	}()

	err = s.db.View(func(txn *badger.Txn) error {
		item, txErr := txn.Get([]byte(key))
		if errors.Is(txErr, badger.ErrKeyNotFound) {
			return kv.ErrNotFound
		}
		if txErr != nil {
			return txErr
		}
		value, txErr = item.ValueCopy(nil)
		return txErr
	})
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		err = fmt.Errorf("get %s: %w", key, err)
	}
	return value, err
}

// Has reports whether key exists without copying its value.
func (s *Store) Has(_ context.Context, key string) (found bool, err error) {
	started := time.Now()
	defer func() {
		s.observe("has", err, started)
	}()

	err = s.db.View(func(txn *badger.Txn) error {
		_, txErr := txn.Get([]byte(key))
		switch {
		case txErr == nil:
			found = true
			return nil
		case errors.Is(txErr, badger.ErrKeyNotFound):
			return nil
		default:
			return txErr
		}
	})
	if err != nil {
		return false, fmt.Errorf("has %s: %w", key, err)
	}
	return found, nil
}

// Put stores a single value.
func (s *Store) Put(_ context.Context, key string, value []byte) (err error) {
	started := time.Now()
	defer func() {
		s.observe("put", err, started)
	}()

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Write applies the batch in a single transaction.
func (s *Store) Write(_ context.Context, batch *kv.Batch) (err error) {
	started := time.Now()
	defer func() {
		s.observe("write", err, started)
	}()

	if batch == nil || batch.Len() == 0 {
		return nil
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, op := range batch.Ops {
			switch op.Kind {
			case kv.OpPut:
				if err := txn.Set([]byte(op.Key), op.Value); err != nil {
					return fmt.Errorf("set %s: %w", op.Key, err)
				}
			case kv.OpDelete:
				if err := txn.Delete([]byte(op.Key)); err != nil {
					return fmt.Errorf("delete %s: %w", op.Key, err)
				}
			default:
				return fmt.Errorf("unknown batch op %d", op.Kind)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write batch of %d ops: %w", batch.Len(), err)
	}
	return nil
}

// Scan iterates keys in range order.
func (s *Store) Scan(ctx context.Context, r kv.Range, fn func(key string, value []byte) error) (err error) {
	started := time.Now()
	defer func() {
		s.observe("scan", err, started)
	}()

	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = !r.KeysOnly
		opts.Reverse = r.Reverse
		opts.Prefix = []byte(r.Prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		seek := []byte(r.Start)
		if r.Start == "" {
			seek = []byte(r.Prefix)
		}
		if r.Reverse {
			seek = reverseSeek(r)
		}

		count := 0
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			key := item.KeyCopy(nil)
			if r.Reverse && r.End != "" && bytes.Compare(key, []byte(r.End)) >= 0 {
				continue
			}
			if !inRange(key, r) {
				break
			}

			var value []byte
			if !r.KeysOnly {
				if value, err = item.ValueCopy(nil); err != nil {
					return fmt.Errorf("read %s: %w", key, err)
				}
			}
			if err := fn(string(key), value); err != nil {
				return err
			}
			count++
			if r.Limit > 0 && count >= r.Limit {
				return nil
			}
		}
		return nil
	})
}

// Close stops the GC worker and closes the database.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closeCh)
		<-s.gcDone
		err = s.db.Close()
	})
	return err
}

func (s *Store) gcWorker() {
	defer close(s.gcDone)

	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closeCh:
			return
		case <-ticker.C:
		}

		for {
			err := s.db.RunValueLogGC(gcDiscardRatio)
			if err == nil {
				continue
			}
			if !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("value log gc failed", zap.Error(err))
			}
			break
		}
	}
}

func (s *Store) observe(operation string, err error, started time.Time) {
	if s.metrics == nil {
		return
	}
	if errors.Is(err, kv.ErrNotFound) {
		err = nil
	}
	s.metrics.Observe(operation, err, started)
}

func inRange(key []byte, r kv.Range) bool {
	if r.Start != "" && bytes.Compare(key, []byte(r.Start)) < 0 {
		return false
	}
	if r.End != "" && bytes.Compare(key, []byte(r.End)) >= 0 {
		return false
	}
	return true
}

func reverseSeek(r kv.Range) []byte {
	if r.End != "" {
		return []byte(r.End)
	}
	return []byte(r.Prefix + strings.Repeat("\xff", 8))
}
