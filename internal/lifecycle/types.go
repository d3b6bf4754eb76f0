package lifecycle

import (
	"context"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/enclave"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Enclave interface {
		InitRuntime(ctx context.Context, req enclave.InitRuntimeRequest) (enclave.RuntimeInfo, error)
		GetInfo(ctx context.Context) (enclave.Info, error)
		GetRuntimeInfo(ctx context.Context, forceRefreshRA bool) (enclave.RuntimeInfo, error)
		GetEgressMessages(ctx context.Context) ([]byte, error)
		Kick(ctx context.Context) error
	}

	Syncer interface {
		Start(ctx context.Context) error
		Synced() <-chan error
		Stop()
		Wait() error
	}

	Chain interface {
		Submit(ctx context.Context, tx model.Tx) error
		WorkerState(ctx context.Context, publicKey string) (model.ChainWorkerState, error)
	}

	GenesisSource interface {
		Genesis(ctx context.Context, paraID uint32) (model.Genesis, error)
	}

	EventLog interface {
		Add(ctx context.Context, event model.WorkerEvent) error
	}

	Metrics interface {
		ObserveTransition(worker, from, to string)
		ObserveAction(action string, err error, started time.Time)
	}

	Repository interface {
		Pools(ctx context.Context) ([]model.PoolConfig, error)
		Workers(ctx context.Context, runnerID string) ([]model.WorkerConfig, error)
	}
)
