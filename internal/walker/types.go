package walker

import (
	"context"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Source reads finalized blocks of one chain.
	Source interface {
		Block(ctx context.Context, number uint64) (model.Block, error)
		Finalized(ctx context.Context) (uint64, error)
	}
	Cache interface {
		Put(ctx context.Context, chain model.Chain, block model.Block) error
		Get(ctx context.Context, chain model.Chain, number uint64) (model.Block, error)
		Head(ctx context.Context, chain model.Chain) (uint64, bool, error)
	}
	// Target blocks until the chain is finalized at least up to number.
	Target interface {
		WaitFor(ctx context.Context, number uint64) error
	}
	Metrics interface {
		ObserveBlock(err error, number uint64, started time.Time)
		SetTarget(number uint64)
	}
)
