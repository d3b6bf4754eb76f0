package ipc

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Serve answers envelopes published on channel until ctx is done. Every
// request is handled on its own goroutine.
func Serve(ctx context.Context, bus Bus, channel string, dispatcher *Dispatcher, logger *zap.Logger) error {
	logger = logger.Named("ipc").With(zap.String("channel", channel))
	requests, closeSub, err := bus.Subscribe(ctx, channel)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSub(); err != nil {
			logger.Warn("close subscription", zap.Error(err))
		}
	}()

	logger.Info("serving")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-requests:
			if !ok {
				return fmt.Errorf("subscription to %s closed", channel)
			}
			go handle(ctx, bus, dispatcher, env, logger)
		}
	}
}

func handle(ctx context.Context, bus Bus, dispatcher *Dispatcher, env Envelope, logger *zap.Logger) {
	logger = logger.With(zap.String("method", env.Method), zap.String("id", env.ID))
	result, err := dispatcher.Dispatch(ctx, env)
	if err != nil {
		level := logger.Warn
		if errors.Is(err, ErrUnknownAction) {
			level = logger.Error
		}
		level("request failed", zap.Error(err))
	}
	if env.ReplyTo == "" {
		return
	}

	reply := Envelope{ID: env.ID, Payload: result}
	if err != nil {
		reply.Error = err.Error()
	}
	if err := bus.Publish(ctx, env.ReplyTo, reply); err != nil {
		logger.Warn("reply failed", zap.Error(err))
	}
}
