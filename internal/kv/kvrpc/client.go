package kvrpc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var _ kv.Store = (*Client)(nil)

// Client is a kv.Store backed by a remote Server.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to a KV server at addr.
func Dial(addr string) (*Client, error) {
	if addr == "" {
		return nil, errors.New("kv server address is required")
	}
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.ForceCodec(Codec{}),
			grpc.MaxCallRecvMsgSize(MaxMessageSize),
			grpc.MaxCallSendMsgSize(MaxMessageSize),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("dial kv server %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// NewClient wraps an existing connection.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	out := new(GetResponse)
	if err := c.conn.Invoke(ctx, fullMethod("Get"), &KeyRequest{Key: key}, out); err != nil {
		return nil, fmt.Errorf("remote get %s: %w", key, err)
	}
	if !out.Found {
		return nil, kv.ErrNotFound
	}
	return out.Value, nil
}

func (c *Client) Has(ctx context.Context, key string) (bool, error) {
	out := new(HasResponse)
	if err := c.conn.Invoke(ctx, fullMethod("Has"), &KeyRequest{Key: key}, out); err != nil {
		return false, fmt.Errorf("remote has %s: %w", key, err)
	}
	return out.Found, nil
}

func (c *Client) Put(ctx context.Context, key string, value []byte) error {
	if err := c.conn.Invoke(ctx, fullMethod("Put"), &PutRequest{Key: key, Value: value}, new(Empty)); err != nil {
		return fmt.Errorf("remote put %s: %w", key, err)
	}
	return nil
}

func (c *Client) Write(ctx context.Context, batch *kv.Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}
	if err := c.conn.Invoke(ctx, fullMethod("Write"), &WriteRequest{Ops: batch.Ops}, new(Empty)); err != nil {
		return fmt.Errorf("remote write of %d ops: %w", batch.Len(), err)
	}
	return nil
}

func (c *Client) Scan(ctx context.Context, r kv.Range, fn func(key string, value []byte) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := c.conn.NewStream(ctx, &serviceDesc.Streams[0], fullMethod("Scan"))
	if err != nil {
		return fmt.Errorf("open scan stream: %w", err)
	}
	req := &ScanRequest{
		Prefix:   r.Prefix,
		Start:    r.Start,
		End:      r.End,
		Limit:    r.Limit,
		KeysOnly: r.KeysOnly,
		Reverse:  r.Reverse,
	}
	if err := stream.SendMsg(req); err != nil {
		return fmt.Errorf("send scan request: %w", err)
	}
	if err := stream.CloseSend(); err != nil {
		return fmt.Errorf("close scan send: %w", err)
	}

	for {
		item := new(ScanItem)
		err := stream.RecvMsg(item)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("receive scan item: %w", err)
		}
		if err := fn(item.Key, item.Value); err != nil {
			return err
		}
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}
