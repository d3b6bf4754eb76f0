package window

import (
	"context"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/blob"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
)

type (
	Blocks interface {
		WaitFor(ctx context.Context, chain model.Chain, number uint64) (model.Block, error)
		Genesis(ctx context.Context, paraID uint32) (model.Genesis, error)
	}
	Assembler interface {
		SetDryRange(ctx context.Context, parentStart, paraStart uint64, paraBlocks, parentBlocks []model.Block, setID uint64, epochChanged bool) (blob.DryRange, error)
		CommitBlobRange(ctx context.Context, subRanges []blob.DryRange) (model.BlobRange, error)
	}
	Metrics interface {
		ObserveBlock(err error)
		ObserveDryRange(err error, written bool)
		ObserveCommit(err error, started time.Time)
		SetWindow(id uint64)
	}
)
