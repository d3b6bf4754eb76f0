package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/clock"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/ipc"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
	"github.com/Phala-Network/runtime-bridge-sub000/pkg/workerpool"
	"github.com/rs/xid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrRunnerIDMismatch is returned when another process claimed the runner id.
var ErrRunnerIDMismatch = errors.New("runner id claimed by another process")

type RunnerConfig struct {
	RunnerID       string
	Concurrency    int
	FenceInterval  time.Duration
	CommandChannel string
}

// Runner owns the workers assigned to one runner id.
type Runner struct {
	store  kv.Store
	repo   Repository
	bus    ipc.Bus
	deps   Deps
	config RunnerConfig
	logger *zap.Logger

	newEnclave func(config model.WorkerConfig) Enclave
	registry   *Registry
	machines   map[string]*Machine
	token      string
}

// NewRunner creates a runner. bus may be nil, in which case no commands are served.
func NewRunner(
	store kv.Store,
	repo Repository,
	bus ipc.Bus,
	newEnclave func(config model.WorkerConfig) Enclave,
	deps Deps,
	config RunnerConfig,
	logger *zap.Logger,
) *Runner {
	deps.RunnerID = config.RunnerID
	return &Runner{
		store:      store,
		repo:       repo,
		bus:        bus,
		deps:       deps,
		config:     config,
		logger:     logger.Named("runner").With(zap.String("runner_id", config.RunnerID)),
		newEnclave: newEnclave,
		registry:   NewRegistry(),
		machines:   make(map[string]*Machine),
	}
}

// Run claims the runner id, starts every enabled worker and serves commands
// until ctx is done or the claim is lost.
func (r *Runner) Run(ctx context.Context) error {
	r.token = xid.New().String()
	if err := r.store.Put(ctx, kv.RunnerKey(r.config.RunnerID), []byte(r.token)); err != nil {
		return fmt.Errorf("claim runner id: %w", err)
	}
	if err := r.load(ctx); err != nil {
		return err
	}
	defer r.registry.Close()
	dispatcher, err := r.dispatcher()
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, id := range r.registry.IDs() {
		machine := r.machines[id]
		group.Go(func() error {
			if err := machine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	group.Go(func() error { return r.fence(ctx) })
	if r.bus != nil {
		group.Go(func() error {
			err := ipc.Serve(ctx, r.bus, r.config.CommandChannel, dispatcher, r.logger)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	err = workerpool.Process(ctx, r.config.Concurrency, r.registry.IDs(), func(ctx context.Context, id string) error {
		return r.machines[id].Fire(ctx, EventStart, nil)
	})
	if err != nil {
		r.logger.Warn("not every worker started", zap.Error(err))
	}
	r.logger.Info("workers started", zap.Int("count", len(r.machines)))

	return group.Wait()
}

func (r *Runner) load(ctx context.Context) error {
	pools, err := r.repo.Pools(ctx)
	if err != nil {
		return fmt.Errorf("load pools: %w", err)
	}
	byPID := make(map[uint64]model.PoolConfig, len(pools))
	for _, pool := range pools {
		byPID[pool.PID] = pool
	}

	workers, err := r.repo.Workers(ctx, r.config.RunnerID)
	if err != nil {
		return fmt.Errorf("load workers: %w", err)
	}
	for _, config := range workers {
		pool, ok := byPID[config.PID]
		switch {
		case !config.Enabled:
			continue
		case !ok || !pool.Enabled:
			r.logger.Warn("skipping worker of a missing or disabled pool",
				zap.String("worker", config.ID), zap.Uint64("pid", config.PID))
			continue
		}
		if err := r.registry.Add(NewWorker(config, pool, r.newEnclave(config))); err != nil {
			return err
		}
		r.machines[config.ID] = NewMachine(config.ID, r.registry, r.deps, r.logger)
	}
	return nil
}

// fence exits when the runner key no longer holds this process's token.
func (r *Runner) fence(ctx context.Context) error {
	key := kv.RunnerKey(r.config.RunnerID)
	for {
		if err := clock.SleepWithContext(ctx, r.config.FenceInterval); err != nil {
			return nil
		}
		raw, err := r.store.Get(ctx, key)
		if err != nil {
			if ctx.Err() == nil {
				r.logger.Warn("check runner claim", zap.Error(err))
			}
			continue
		}
		if string(raw) != r.token {
			r.logger.Error("runner id claimed by another process", zap.String("token", string(raw)))
			return ErrRunnerIDMismatch
		}
	}
}

func (r *Runner) dispatcher() (*ipc.Dispatcher, error) {
	command := func(events ...Event) ipc.Handler {
		return func(ctx context.Context, payload json.RawMessage) (any, error) {
			cmd, err := ipc.Decode[ipc.WorkerCommand](payload)
			if err != nil {
				return nil, err
			}
			for _, id := range cmd.WorkerIDs {
				if _, ok := r.machines[id]; !ok {
					return nil, fmt.Errorf("%w: %s", ErrUnknownWorker, id)
				}
			}
			for _, id := range cmd.WorkerIDs {
				for _, event := range events {
					if err := r.machines[id].Fire(ctx, event, nil); err != nil {
						return nil, err
					}
				}
			}
			return len(cmd.WorkerIDs), nil
		}
	}
	return ipc.NewDispatcher(map[ipc.Action]ipc.Handler{
		ipc.ActionStartWorker:   command(EventStart),
		ipc.ActionKickWorker:    command(EventKick),
		ipc.ActionRestartWorker: command(EventKick, EventStart),
	})
}

// Machine returns the state machine of a worker.
func (r *Runner) Machine(id string) (*Machine, bool) {
	m, ok := r.machines[id]
	return m, ok
}
