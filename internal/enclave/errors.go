package enclave

import (
	"errors"
	"fmt"
)

// ErrEnclave matches every error reported by an enclave.
var ErrEnclave = errors.New("enclave error")

// Error is an error answered by an enclave, either in the response envelope
// or as an unexpected HTTP status.
type Error struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("enclave %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("enclave %s: %s", e.Endpoint, e.Message)
}

func (e *Error) Is(target error) bool {
	return target == ErrEnclave
}
