package model

import "time"

// PoolConfig describes a mining pool managed by the bridge.
type PoolConfig struct {
	PID       uint64
	Owner     string
	Enabled   bool
	UpdatedAt time.Time
}

// WorkerConfig describes a worker and its enclave endpoint.
type WorkerConfig struct {
	ID        string
	PID       uint64
	Name      string
	Endpoint  string
	Stake     string
	Enabled   bool
	RunnerID  string
	SkipRA    bool
	UpdatedAt time.Time
}

// WorkerRuntimeInfo is the polled snapshot of an enclave's self-reported state.
type WorkerRuntimeInfo struct {
	Initialized        bool
	Registered         bool
	PublicKey          string
	ECDHPublicKey      string
	ParentHeaderSynced uint64
	ParaHeaderSynced   uint64
	ParaBlockDispatch  uint64
	PendingMessages    uint64
	Score              uint64
	Version            string
	UpdatedAt          time.Time
}

// ChainWorkerState is the on-chain view of a worker.
type ChainWorkerState struct {
	PublicKey    string `json:"public_key"`
	PID          uint64 `json:"pid"`
	Bound        bool   `json:"bound"`
	Registered   bool   `json:"registered"`
	InitialScore uint64 `json:"initial_score"`
	Mining       bool   `json:"mining"`
}

// WorkerEvent is one lifecycle transition written to the event log.
type WorkerEvent struct {
	WorkerID  string
	PID       uint64
	RunnerID  string
	From      string
	To        string
	Event     string
	Message   string
	Timestamp time.Time
}

// TxKind enumerates chain transactions submitted on behalf of workers.
type TxKind string

var (
	TxRegisterWorker TxKind = "register_worker"
	TxStartMining    TxKind = "start_mining"
	TxSyncMessages   TxKind = "sync_offchain_messages"
)

// Tx is an opaque chain transaction request.
type Tx struct {
	Kind      TxKind `json:"kind"`
	WorkerID  string `json:"worker_id"`
	PID       uint64 `json:"pid"`
	PublicKey string `json:"public_key"`
	Args      []byte `json:"args,omitempty"`
}
