package ipc

import "context"

type (
	// Bus moves envelopes between processes.
	Bus interface {
		Publish(ctx context.Context, channel string, env Envelope) error
		// Subscribe delivers envelopes published on channel until the returned
		// close function is called.
		Subscribe(ctx context.Context, channel string) (<-chan Envelope, func() error, error)
	}
)
