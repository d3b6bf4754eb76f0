package ipc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/xid"
)

// Client sends requests to a Serve loop and waits for replies.
type Client struct {
	bus     Bus
	channel string
}

func NewClient(bus Bus, channel string) *Client {
	return &Client{bus: bus, channel: channel}
}

// Notify publishes a request without waiting for an answer.
func (c *Client) Notify(ctx context.Context, action Action, args any) error {
	env, err := NewEnvelope(action, args)
	if err != nil {
		return err
	}
	env.ID = xid.New().String()
	return c.bus.Publish(ctx, c.channel, env)
}

// Call publishes a request and decodes the reply into result, which may be nil.
func (c *Client) Call(ctx context.Context, action Action, args, result any) error {
	env, err := NewEnvelope(action, args)
	if err != nil {
		return err
	}
	env.ID = xid.New().String()
	env.ReplyTo = c.channel + ".reply." + env.ID

	replies, closeSub, err := c.bus.Subscribe(ctx, env.ReplyTo)
	if err != nil {
		return err
	}
	defer func() { _ = closeSub() }()

	if err := c.bus.Publish(ctx, c.channel, env); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", action, ctx.Err())
		case reply, ok := <-replies:
			if !ok {
				return fmt.Errorf("%s: reply channel closed", action)
			}
			if reply.ID != env.ID {
				continue
			}
			if reply.Error != "" {
				return &RemoteError{Method: env.Method, Message: reply.Error}
			}
			if result == nil || len(reply.Payload) == 0 {
				return nil
			}
			if err := json.Unmarshal(reply.Payload, result); err != nil {
				return fmt.Errorf("%s: decode reply: %w", action, err)
			}
			return nil
		}
	}
}
