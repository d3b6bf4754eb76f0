// Package kv defines the narrow key-value service shared by all bridge processes.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrNotFound is returned when a key is absent.
var ErrNotFound = errors.New("kv: key not found")

type (
	// Store is the KV service contract. Keys are UTF-8 strings, values opaque bytes.
	Store interface {
		Get(ctx context.Context, key string) ([]byte, error)
		Has(ctx context.Context, key string) (bool, error)
		Put(ctx context.Context, key string, value []byte) error
		// Write applies all operations of the batch atomically, in order.
		Write(ctx context.Context, batch *Batch) error
		// Scan streams keys in [Range.Start, Range.End) in ascending order.
		Scan(ctx context.Context, r Range, fn func(key string, value []byte) error) error
		Close() error
	}
)

// Range bounds a key scan. An empty End scans to the end of the Prefix.
type Range struct {
	Prefix   string
	Start    string
	End      string
	Limit    int
	KeysOnly bool
	Reverse  bool
}

// OpKind is the kind of a batch operation.
type OpKind uint8

const (
	OpPut OpKind = iota + 1
	OpDelete
)

// Op is a single batch operation.
type Op struct {
	Kind  OpKind `cbor:"1,keyasint"`
	Key   string `cbor:"2,keyasint"`
	Value []byte `cbor:"3,keyasint,omitempty"`
}

// Batch collects writes applied atomically by Store.Write.
type Batch struct {
	Ops []Op
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Put appends a put operation.
func (b *Batch) Put(key string, value []byte) *Batch {
	b.Ops = append(b.Ops, Op{Kind: OpPut, Key: key, Value: value})
	return b
}

// PutJSON appends a put of a JSON encoded value.
func (b *Batch) PutJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	b.Put(key, raw)
	return nil
}

// Delete appends a delete operation.
func (b *Batch) Delete(key string) *Batch {
	b.Ops = append(b.Ops, Op{Kind: OpDelete, Key: key})
	return b
}

// Len returns the number of queued operations.
func (b *Batch) Len() int {
	return len(b.Ops)
}

// GetUint64 reads a JSON number counter. ok is false when the key is absent.
func GetUint64(ctx context.Context, s Store, key string) (value uint64, ok bool, err error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	value, err = strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("decode counter %s: %w", key, err)
	}
	return value, true, nil
}

// PutUint64 stores a JSON number counter.
func PutUint64(ctx context.Context, s Store, key string, value uint64) error {
	return s.Put(ctx, key, []byte(strconv.FormatUint(value, 10)))
}
