package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownAction is returned for methods without a handler.
var ErrUnknownAction = errors.New("ipc: unknown action")

// Envelope is a message on the bus. Requests expecting an answer carry
// ReplyTo; replies echo ID and carry either Payload or Error.
type Envelope struct {
	Method  string          `json:"method,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	ID      string          `json:"id,omitempty"`
	ReplyTo string          `json:"reply_to,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// NewEnvelope encodes args into a request envelope.
func NewEnvelope(action Action, args any) (Envelope, error) {
	if _, ok := actionNames[action]; !ok {
		return Envelope{}, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s args: %w", action, err)
	}
	return Envelope{Method: action.String(), Payload: payload}, nil
}

func (e Envelope) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Envelope) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

// RemoteError is an error reported by the handler on the other side of the bus.
type RemoteError struct {
	Method  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("ipc %s: %s", e.Method, e.Message)
}
