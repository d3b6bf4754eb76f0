package chain

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-resty/resty/v2"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// ErrEmptyResult is returned when the node answers with null, e.g. for a block it does not have yet.
var ErrEmptyResult = errors.New("chain: empty rpc result")

const (
	// GrandpaAuthoritiesKey is the well-known storage key of the GRANDPA authority list.
	GrandpaAuthoritiesKey = "0x3a6772616e6470615f617574686f726974696573"
	// GrandpaCurrentSetIDKey is Grandpa.CurrentSetId.
	GrandpaCurrentSetIDKey = "0x5f9cc45b7a00c5899361e1c6099678dc8a2d09463effcc78a22d75b9cb87dffc"

	parasHeadsPrefix = "0xcd710b30bd2eab0352ddcc26417aa1941b3c252fcb29d88eff4f3de5de4476c3"
)

// ParaHeadKey is the Paras.Heads storage key of paraID.
func ParaHeadKey(paraID uint32) string {
	var id [4]byte
	binary.LittleEndian.PutUint32(id[:], paraID)
	hashed := binary.LittleEndian.AppendUint64(nil, xxhash.Sum64(id[:]))
	return parasHeadsPrefix + EncodeHex(append(hashed, id[:]...))[2:]
}

var _ Client = (*RPC)(nil)

// RPC is a JSON-RPC over HTTP Client.
type RPC struct {
	client *resty.Client
	nextID atomic.Uint64
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// NewRPC creates a client for the node at url.
func NewRPC(url string, timeout time.Duration, logger *zap.Logger) *RPC {
	client := resty.New().
		SetBaseURL(url).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0).
		SetLogger(logger.Named("resty").Sugar())
	return &RPC{client: client}
}

func (c *RPC) call(ctx context.Context, method string, result any, params ...any) error {
	if params == nil {
		params = []any{}
	}
	var out rpcResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(rpcRequest{JSONRPC: "2.0", ID: c.nextID.Inc(), Method: method, Params: params}).
		SetResult(&out).
		Post("")
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s: unexpected status %s", method, resp.Status())
	}
	if out.Error != nil {
		return fmt.Errorf("%s: %w", method, out.Error)
	}
	if len(out.Result) == 0 || string(out.Result) == "null" {
		return fmt.Errorf("%s: %w", method, ErrEmptyResult)
	}
	if err := json.Unmarshal(out.Result, result); err != nil {
		return fmt.Errorf("%s: decode result: %w", method, err)
	}
	return nil
}

func (c *RPC) BlockHash(ctx context.Context, number uint64) (string, error) {
	var hash string
	err := c.call(ctx, "chain_getBlockHash", &hash, number)
	return hash, err
}

func (c *RPC) Header(ctx context.Context, hash string) (Header, error) {
	var header Header
	err := c.call(ctx, "chain_getHeader", &header, hash)
	return header, err
}

func (c *RPC) Block(ctx context.Context, hash string) (SignedBlock, error) {
	var block SignedBlock
	err := c.call(ctx, "chain_getBlock", &block, hash)
	return block, err
}

func (c *RPC) FinalizedHead(ctx context.Context) (string, error) {
	var hash string
	err := c.call(ctx, "chain_getFinalizedHead", &hash)
	return hash, err
}

func (c *RPC) Justification(ctx context.Context, hash string) ([]byte, error) {
	block, err := c.Block(ctx, hash)
	if err != nil {
		return nil, err
	}
	return block.GrandpaJustification(), nil
}

func (c *RPC) StorageProof(ctx context.Context, keys []string, hash string) ([][]byte, error) {
	var out struct {
		At    string   `json:"at"`
		Proof []string `json:"proof"`
	}
	if err := c.call(ctx, "state_getReadProof", &out, keys, hash); err != nil {
		return nil, err
	}
	proof := make([][]byte, 0, len(out.Proof))
	for _, node := range out.Proof {
		b, err := DecodeHex(node)
		if err != nil {
			return nil, fmt.Errorf("state_getReadProof: %w", err)
		}
		proof = append(proof, b)
	}
	return proof, nil
}

func (c *RPC) StorageChanges(ctx context.Context, hash string) ([]StoragePair, error) {
	var out [][2]string
	if err := c.call(ctx, "state_getPairs", &out, "0x", hash); err != nil {
		return nil, err
	}
	pairs := make([]StoragePair, 0, len(out))
	for _, kv := range out {
		key, err := DecodeHex(kv[0])
		if err != nil {
			return nil, fmt.Errorf("state_getPairs: %w", err)
		}
		value, err := DecodeHex(kv[1])
		if err != nil {
			return nil, fmt.Errorf("state_getPairs: %w", err)
		}
		pairs = append(pairs, StoragePair{Key: key, Value: value})
	}
	return pairs, nil
}

// Storage returns the raw value under key, nil when the key is unset.
func (c *RPC) Storage(ctx context.Context, key string, hash string) ([]byte, error) {
	var value string
	err := c.call(ctx, "state_getStorage", &value, key, hash)
	if errors.Is(err, ErrEmptyResult) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeHex(value)
}

func (c *RPC) CurrentSetID(ctx context.Context, hash string) (uint64, error) {
	raw, err := c.Storage(ctx, GrandpaCurrentSetIDKey, hash)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, nil
	}
	return Uint64LE(raw)
}

func (c *RPC) ParaHead(ctx context.Context, relayHash string, paraID uint32) ([]byte, error) {
	raw, err := c.Storage(ctx, ParaHeadKey(paraID), relayHash)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("para %d has no head at %s: %w", paraID, relayHash, ErrEmptyResult)
	}
	return raw, nil
}

// GrandpaJustification returns the GRANDPA justification, nil when the block has none.
func (b SignedBlock) GrandpaJustification() []byte {
	for _, j := range b.Justifications {
		if j.EngineID == GrandpaEngineID {
			return j.Data
		}
	}
	return nil
}
