// Package kvrpc exposes a kv.Store over gRPC and provides the matching client.
package kvrpc

import (
	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
)

// Codec encodes gRPC messages as canonical CBOR.
type Codec struct{}

// Marshal implements encoding.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	return model.Marshal(v)
}

// Unmarshal implements encoding.Codec.
func (Codec) Unmarshal(data []byte, v any) error {
	return model.Unmarshal(data, v)
}

// Name implements encoding.Codec.
func (Codec) Name() string {
	return "cbor"
}
