package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/enclave"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
	gammazero "github.com/gammazero/workerpool"
)

// Worker is the context of one enclave. It is owned by the Registry; state
// machines refer to it by id.
type Worker struct {
	Config  model.WorkerConfig
	Pool    model.PoolConfig
	Enclave Enclave

	txQueue *gammazero.WorkerPool

	mu          sync.Mutex
	runtimeInfo enclave.RuntimeInfo
	runtime     model.WorkerRuntimeInfo
	chainState  model.ChainWorkerState
	syncer      Syncer
}

func NewWorker(config model.WorkerConfig, pool model.PoolConfig, enclave Enclave) *Worker {
	return &Worker{
		Config:  config,
		Pool:    pool,
		Enclave: enclave,
		txQueue: gammazero.New(1),
	}
}

// Submit sends tx through the worker's queue, so that transactions of one
// worker reach the chain one at a time.
func (w *Worker) Submit(ctx context.Context, chain Chain, tx model.Tx) error {
	if w.txQueue.Stopped() {
		return fmt.Errorf("worker %s: tx queue closed", w.Config.ID)
	}
	var err error
	w.txQueue.SubmitWait(func() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
			return
		}
		err = chain.Submit(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("submit %s for worker %s: %w", tx.Kind, w.Config.ID, err)
	}
	return nil
}

func (w *Worker) tx(kind model.TxKind, args []byte) model.Tx {
	return model.Tx{
		Kind:      kind,
		WorkerID:  w.Config.ID,
		PID:       w.Pool.PID,
		PublicKey: w.PublicKey(),
		Args:      args,
	}
}

func (w *Worker) PublicKey() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runtimeInfo.PublicKey
}

func (w *Worker) setRuntimeInfo(info enclave.RuntimeInfo) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.runtimeInfo = info
}

// Runtime is the last polled enclave state.
func (w *Worker) Runtime() model.WorkerRuntimeInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runtime
}

func (w *Worker) setRuntime(info model.WorkerRuntimeInfo) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.runtime = info
}

// ChainState is the last observed on-chain state.
func (w *Worker) ChainState() model.ChainWorkerState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chainState
}

func (w *Worker) setChainState(state model.ChainWorkerState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.chainState = state
}

func (w *Worker) setSyncer(syncer Syncer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.syncer = syncer
}

func (w *Worker) takeSyncer() Syncer {
	w.mu.Lock()
	defer w.mu.Unlock()
	syncer := w.syncer
	w.syncer = nil
	return syncer
}

func (w *Worker) close() {
	w.txQueue.StopWait()
}

// Registry owns every worker of a runner.
type Registry struct {
	mu      sync.RWMutex
	workers map[string]*Worker
}

func NewRegistry() *Registry {
	return &Registry{workers: make(map[string]*Worker)}
}

func (r *Registry) Add(w *Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.workers[w.Config.ID]; ok {
		return fmt.Errorf("worker %s already registered", w.Config.ID)
	}
	r.workers[w.Config.ID] = w
	return nil
}

func (r *Registry) Get(id string) (*Worker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workers[id]
	return w, ok
}

// IDs returns the registered worker ids in order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.workers))
	for id := range r.workers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close stops the transaction queues of all workers.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.workers {
		w.close()
	}
}
