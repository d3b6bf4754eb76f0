// Package chain reads finalized blocks from substrate-style nodes.
package chain

import (
	"context"
	"time"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Client is the subset of the node RPC surface the bridge depends on.
	Client interface {
		BlockHash(ctx context.Context, number uint64) (string, error)
		Header(ctx context.Context, hash string) (Header, error)
		Block(ctx context.Context, hash string) (SignedBlock, error)
		FinalizedHead(ctx context.Context) (string, error)
		// Justification returns the GRANDPA justification of a block, nil when absent.
		Justification(ctx context.Context, hash string) ([]byte, error)
		StorageProof(ctx context.Context, keys []string, hash string) ([][]byte, error)
		// StorageChanges returns every storage pair at hash.
		StorageChanges(ctx context.Context, hash string) ([]StoragePair, error)
		Storage(ctx context.Context, key string, hash string) ([]byte, error)
		CurrentSetID(ctx context.Context, hash string) (uint64, error)
		// ParaHead returns the encoded head data of paraID stored at relayHash.
		ParaHead(ctx context.Context, relayHash string, paraID uint32) ([]byte, error)
	}
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// Header is a decoded block header.
type Header struct {
	ParentHash     string `json:"parentHash"`
	Number         string `json:"number"`
	StateRoot      string `json:"stateRoot"`
	ExtrinsicsRoot string `json:"extrinsicsRoot"`
	Digest         Digest `json:"digest"`
}

// Digest holds the encoded digest items of a header.
type Digest struct {
	Logs []string `json:"logs"`
}

// SignedBlock is a block with its finality justifications.
type SignedBlock struct {
	Block struct {
		Header     Header   `json:"header"`
		Extrinsics []string `json:"extrinsics"`
	} `json:"block"`
	Justifications []Justification `json:"justifications"`
}

// Justification is a finality proof tagged with its consensus engine id.
type Justification struct {
	EngineID [4]byte
	Data     []byte
}

// StoragePair is one key and value of the state trie.
type StoragePair struct {
	Key   []byte `cbor:"1,keyasint"`
	Value []byte `cbor:"2,keyasint"`
}
