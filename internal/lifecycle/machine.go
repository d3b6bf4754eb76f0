// Package lifecycle drives enclaves from attestation through sync and
// registration into mining.
package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/clock"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/enclave"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
	"go.uber.org/zap"
)

var (
	// ErrPoolConflict is returned when the worker is bound on chain to another pool.
	ErrPoolConflict = errors.New("worker bound to a different pool")
	// ErrStopped is returned by Fire once the machine's Run loop returned.
	ErrStopped = errors.New("state machine stopped")
	// ErrUnknownWorker is returned for ids missing from the registry.
	ErrUnknownWorker = errors.New("unknown worker")
)

type Intervals struct {
	Refresh   time.Duration
	Egress    time.Duration
	PreMining time.Duration
}

func DefaultIntervals() Intervals {
	return Intervals{
		Refresh:   6 * time.Second,
		Egress:    12 * time.Second,
		PreMining: 24 * time.Second,
	}
}

// Deps are the collaborators shared by every machine of a runner.
type Deps struct {
	Chain     Chain
	Genesis   GenesisSource
	Events    EventLog
	Metrics   Metrics
	NewSyncer func(w *Worker) Syncer
	ParaID    uint32
	RunnerID  string
	Intervals Intervals
}

type message struct {
	event Event
	// generation is 0 for events fired from outside the machine.
	generation uint64
	err        error
}

// Machine runs the state machine of one worker.
type Machine struct {
	workerID string
	registry *Registry
	deps     Deps
	logger   *zap.Logger
	sleep    func(ctx context.Context, d time.Duration) error

	events chan message
	done   chan struct{}
	// draining tracks syncers stopped by teardown that have not returned yet.
	draining sync.WaitGroup

	// Owned by the Run goroutine.
	state      State
	generation uint64
	actionCtx  context.Context
	cancel     context.CancelFunc
	tornDown   bool
	current    chan State
}

func NewMachine(workerID string, registry *Registry, deps Deps, logger *zap.Logger) *Machine {
	current := make(chan State, 1)
	current <- Idle
	return &Machine{
		workerID: workerID,
		registry: registry,
		deps:     deps,
		logger:   logger.Named("lifecycle").With(zap.String("worker", workerID)),
		sleep:    clock.SleepWithContext,
		events:   make(chan message, 16),
		done:     make(chan struct{}),
		state:    Idle,
		current:  current,
	}
}

// State returns the current state. It is safe for concurrent use.
func (m *Machine) State() State {
	s := <-m.current
	m.current <- s
	return s
}

// Fire queues an event. err describes the cause of EventError.
func (m *Machine) Fire(ctx context.Context, event Event, err error) error {
	select {
	case m.events <- message{event: event, err: err}:
		return nil
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Machine) post(msg message) {
	select {
	case m.events <- msg:
	case <-m.done:
	}
}

// Run processes events until ctx is done, then tears the worker down.
func (m *Machine) Run(ctx context.Context) error {
	defer close(m.done)
	w, ok := m.registry.Get(m.workerID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWorker, m.workerID)
	}
	for {
		select {
		case <-ctx.Done():
			m.teardown(w)
			m.draining.Wait()
			return ctx.Err()
		case msg := <-m.events:
			m.handle(ctx, w, msg)
		}
	}
}

func (m *Machine) handle(ctx context.Context, w *Worker, msg message) {
	if msg.generation != 0 && msg.generation != m.generation {
		m.logger.Debug("dropping event of a previous run", zap.Stringer("event", msg.event))
		return
	}
	from := m.state
	to, ok := Transition(from, msg.event)
	if !ok {
		m.logger.Warn("event not accepted", zap.Stringer("state", from), zap.Stringer("event", msg.event))
		return
	}
	if to == from {
		return
	}
	m.setState(to)
	m.record(ctx, w, from, to, msg)

	switch to {
	case Starting:
		m.generation++
		m.tornDown = false
		m.actionCtx, m.cancel = context.WithCancel(ctx)
		m.launch(w, "start", m.start, EventMarkSynching)
	case Synching:
		m.launch(w, "synching", m.synching, EventMarkSynced)
	case Synced:
		m.launch(w, "synced", m.drainEgress, EventMarkPreMining)
	case PreMining:
		m.launch(w, "pre_mining", m.preMining, EventMarkMining)
	case Error:
		m.teardown(w)
	case Kicked:
		m.teardown(w)
		if err := w.Enclave.Kick(ctx); err != nil {
			m.logger.Warn("enclave kick failed", zap.Error(err))
		}
	}
}

func (m *Machine) setState(s State) {
	<-m.current
	m.state = s
	m.current <- s
}

func (m *Machine) record(ctx context.Context, w *Worker, from, to State, msg message) {
	fields := []zap.Field{zap.Stringer("from", from), zap.Stringer("to", to), zap.Stringer("event", msg.event)}
	text := ""
	if msg.err != nil {
		text = msg.err.Error()
		fields = append(fields, zap.Error(msg.err))
	}
	if to == Error {
		m.logger.Error("worker failed", fields...)
	} else {
		m.logger.Info("worker transition", fields...)
	}

	m.deps.Metrics.ObserveTransition(m.workerID, from.String(), to.String())
	err := m.deps.Events.Add(ctx, model.WorkerEvent{
		WorkerID:  m.workerID,
		PID:       w.Pool.PID,
		RunnerID:  m.deps.RunnerID,
		From:      from.String(),
		To:        to.String(),
		Event:     msg.event.String(),
		Message:   text,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		m.logger.Warn("worker event not logged", zap.Error(err))
	}
}

// launch runs action in the background and fires next when it succeeds. Failures
// and panics fire EventError. Nothing is fired once the run was torn down.
func (m *Machine) launch(w *Worker, name string, action func(ctx context.Context, w *Worker) error, next Event) {
	ctx, generation := m.actionCtx, m.generation
	go func() {
		err := m.protect(ctx, w, name, action)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			m.post(message{event: EventError, generation: generation, err: fmt.Errorf("%s: %w", name, err)})
			return
		}
		m.post(message{event: next, generation: generation})
	}()
}

func (m *Machine) protect(ctx context.Context, w *Worker, name string, action func(ctx context.Context, w *Worker) error) (err error) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		m.deps.Metrics.ObserveAction(name, err, started)
	}()
	return action(ctx, w)
}

// teardown stops everything started in the current run. It runs at most once per run.
// The syncer is waited for in the background so the event loop keeps serving.
func (m *Machine) teardown(w *Worker) {
	if m.tornDown {
		return
	}
	m.tornDown = true
	if m.cancel != nil {
		m.cancel()
	}

	syncer := w.takeSyncer()
	if syncer == nil {
		m.logger.Debug("worker torn down", zap.Uint64("generation", m.generation))
		return
	}
	syncer.Stop()
	generation := m.generation
	m.draining.Add(1)
	go func() {
		defer m.draining.Done()
		if err := syncer.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Warn("teardown", zap.Error(err))
		}
		m.logger.Debug("worker torn down", zap.Uint64("generation", generation))
	}()
}

func (m *Machine) start(ctx context.Context, w *Worker) error {
	info, err := w.Enclave.GetInfo(ctx)
	if err != nil {
		return err
	}
	w.setRuntime(info.RuntimeSnapshot(time.Now()))

	var runtimeInfo enclave.RuntimeInfo
	if info.Initialized {
		runtimeInfo, err = w.Enclave.GetRuntimeInfo(ctx, false)
		if err != nil {
			return err
		}
	} else {
		genesis, err := m.deps.Genesis.Genesis(ctx, m.deps.ParaID)
		if err != nil {
			return fmt.Errorf("load genesis: %w", err)
		}
		req, err := enclave.NewInitRuntimeRequest(genesis, w.Config.SkipRA, w.Pool.Owner)
		if err != nil {
			return err
		}
		runtimeInfo, err = w.Enclave.InitRuntime(ctx, req)
		if err != nil {
			return err
		}
	}
	w.setRuntimeInfo(runtimeInfo)

	state, err := m.deps.Chain.WorkerState(ctx, runtimeInfo.PublicKey)
	if err != nil {
		return err
	}
	if state.Bound && state.PID != w.Pool.PID {
		return fmt.Errorf("%w: %s is in pool %d, configured for %d", ErrPoolConflict, runtimeInfo.PublicKey, state.PID, w.Pool.PID)
	}
	w.setChainState(state)

	go m.refresh(ctx, w)
	return nil
}

// refresh polls the enclave and the chain until the run is torn down.
func (m *Machine) refresh(ctx context.Context, w *Worker) {
	for {
		if err := m.sleep(ctx, m.deps.Intervals.Refresh); err != nil {
			return
		}
		if info, err := w.Enclave.GetInfo(ctx); err == nil {
			w.setRuntime(info.RuntimeSnapshot(time.Now()))
		} else if ctx.Err() == nil {
			m.logger.Warn("refresh enclave info", zap.Error(err))
		}
		if state, err := m.deps.Chain.WorkerState(ctx, w.PublicKey()); err == nil {
			w.setChainState(state)
		} else if ctx.Err() == nil {
			m.logger.Warn("refresh chain state", zap.Error(err))
		}
	}
}

func (m *Machine) synching(ctx context.Context, w *Worker) error {
	syncer := m.deps.NewSyncer(w)
	if err := syncer.Start(ctx); err != nil {
		return err
	}
	w.setSyncer(syncer)
	select {
	case err := <-syncer.Synced():
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drainEgress forwards the enclave's outbound messages to the chain until none are left.
func (m *Machine) drainEgress(ctx context.Context, w *Worker) error {
	for {
		messages, err := w.Enclave.GetEgressMessages(ctx)
		if err != nil {
			return err
		}
		if noMessages(messages) {
			return nil
		}
		if err := w.Submit(ctx, m.deps.Chain, w.tx(model.TxSyncMessages, messages)); err != nil {
			return err
		}
		if err := m.sleep(ctx, m.deps.Intervals.Egress); err != nil {
			return err
		}
	}
}

// noMessages reports an empty message list, encoded as nothing or an empty vector.
func noMessages(encoded []byte) bool {
	return len(encoded) == 0 || (len(encoded) == 1 && encoded[0] == 0)
}

func (m *Machine) preMining(ctx context.Context, w *Worker) error {
	state, err := m.deps.Chain.WorkerState(ctx, w.PublicKey())
	if err != nil {
		return err
	}
	if !state.Registered || state.InitialScore == 0 {
		runtimeInfo, err := w.Enclave.GetRuntimeInfo(ctx, !w.Config.SkipRA)
		if err != nil {
			return fmt.Errorf("refresh attestation: %w", err)
		}
		w.setRuntimeInfo(runtimeInfo)
		args, err := json.Marshal(runtimeInfo)
		if err != nil {
			return err
		}
		if err := w.Submit(ctx, m.deps.Chain, w.tx(model.TxRegisterWorker, args)); err != nil {
			return err
		}
	}

	err = clock.PollUntil(ctx, m.deps.Intervals.PreMining, func(ctx context.Context) (bool, error) {
		state, err = m.deps.Chain.WorkerState(ctx, w.PublicKey())
		if err != nil {
			return false, err
		}
		return state.InitialScore > 0, nil
	})
	if err != nil {
		return fmt.Errorf("wait for benchmark score: %w", err)
	}
	w.setChainState(state)

	if state.Mining {
		return nil
	}
	return w.Submit(ctx, m.deps.Chain, w.tx(model.TxStartMining, nil))
}
