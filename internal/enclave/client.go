// Package enclave is the HTTP client of enclave runtimes.
package enclave

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single enclave call.
const DefaultTimeout = 60 * time.Second

// Client talks to one enclave runtime.
type Client struct {
	client  *resty.Client
	metrics Metrics
	logger  *zap.Logger
}

func New(endpoint string, timeout time.Duration, metrics Metrics, logger *zap.Logger) *Client {
	logger = logger.Named("enclave").With(zap.String("endpoint", endpoint))
	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetLogger(logger.Sugar())
	return &Client{client: client, metrics: metrics, logger: logger}
}

func (c *Client) InitRuntime(ctx context.Context, req InitRuntimeRequest) (RuntimeInfo, error) {
	var info RuntimeInfo
	err := c.call(ctx, PathInitRuntime, req, &info)
	return info, err
}

func (c *Client) GetInfo(ctx context.Context) (Info, error) {
	var info Info
	err := c.call(ctx, PathGetInfo, struct{}{}, &info)
	return info, err
}

func (c *Client) GetRuntimeInfo(ctx context.Context, forceRefreshRA bool) (RuntimeInfo, error) {
	var info RuntimeInfo
	err := c.call(ctx, PathGetRuntimeInfo, runtimeInfoRequest{ForceRefreshRA: forceRefreshRA}, &info)
	return info, err
}

// GetEgressMessages returns the encoded outbound messages buffered by the enclave.
func (c *Client) GetEgressMessages(ctx context.Context) ([]byte, error) {
	var out egressMessages
	if err := c.call(ctx, PathGetEgressMessages, struct{}{}, &out); err != nil {
		return nil, err
	}
	raw, err := decodeHex(out.Messages)
	if err != nil {
		return nil, fmt.Errorf("%s: decode messages: %w", PathGetEgressMessages, err)
	}
	return raw, nil
}

// SyncCombinedHeaders posts a CBOR CombinedHeaders payload.
func (c *Client) SyncCombinedHeaders(ctx context.Context, payload []byte) (SyncedTo, error) {
	var out SyncedTo
	err := c.callBinary(ctx, PathSyncCombinedHeader, payload, &out)
	return out, err
}

// DispatchBlocks posts a CBOR DispatchBlocks payload and returns the last dispatched para block.
func (c *Client) DispatchBlocks(ctx context.Context, payload []byte) (uint64, error) {
	var out dispatchedTo
	err := c.callBinary(ctx, PathDispatchBlock, payload, &out)
	return out.DispatchedTo, err
}

// Kick asks the enclave to drop its runtime state.
func (c *Client) Kick(ctx context.Context) error {
	return c.call(ctx, PathKick, struct{}{}, nil)
}

func (c *Client) call(ctx context.Context, path string, input, result any) (err error) {
	started := time.Now()
	defer func() { c.metrics.Observe(path, err, started) }()

	var env envelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request{Input: input, Nonce: nonce{Value: xid.New().String()}}).
		SetResult(&env).
		SetError(&env).
		Post(path)
	return decode(path, resp, err, env, result)
}

func (c *Client) callBinary(ctx context.Context, path string, payload []byte, result any) (err error) {
	started := time.Now()
	defer func() { c.metrics.Observe(path, err, started) }()

	var env envelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetQueryParam("nonce", xid.New().String()).
		SetBody(payload).
		SetResult(&env).
		SetError(&env).
		Post(path)
	return decode(path, resp, err, env, result)
}

func decode(path string, resp *resty.Response, err error, env envelope, result any) error {
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	switch {
	case env.Status == statusError:
		return &Error{Endpoint: path, Message: env.Payload}
	case resp.IsError():
		return &Error{Endpoint: path, StatusCode: resp.StatusCode(), Message: resp.String()}
	case env.Status != statusOK:
		return &Error{Endpoint: path, Message: fmt.Sprintf("unexpected status %q", env.Status)}
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(env.Payload), result); err != nil {
		return fmt.Errorf("%s: decode payload: %w", path, err)
	}
	return nil
}
