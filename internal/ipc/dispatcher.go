package ipc

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handler serves one action. The result is JSON encoded into the reply.
type Handler func(ctx context.Context, payload json.RawMessage) (any, error)

// Dispatcher maps actions to handlers. It is built once and never changes.
type Dispatcher struct {
	handlers map[Action]Handler
}

func NewDispatcher(handlers map[Action]Handler) (*Dispatcher, error) {
	table := make(map[Action]Handler, len(handlers))
	for action, handler := range handlers {
		if _, ok := actionNames[action]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
		}
		if handler == nil {
			return nil, fmt.Errorf("nil handler for %s", action)
		}
		table[action] = handler
	}
	return &Dispatcher{handlers: table}, nil
}

// Dispatch runs the handler of env.Method and returns its encoded result.
func (d *Dispatcher) Dispatch(ctx context.Context, env Envelope) (json.RawMessage, error) {
	action, err := ParseAction(env.Method)
	if err != nil {
		return nil, err
	}
	handler, ok := d.handlers[action]
	if !ok {
		return nil, fmt.Errorf("%w: %s not served here", ErrUnknownAction, action)
	}
	result, err := handler(ctx, env.Payload)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", action, err)
	}
	return raw, nil
}

// Decode is a helper for handlers to read their payload.
func Decode[T any](payload json.RawMessage) (T, error) {
	var v T
	if len(payload) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, fmt.Errorf("decode payload: %w", err)
	}
	return v, nil
}
