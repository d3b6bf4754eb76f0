package syncclient

import (
	"context"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/blob"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/enclave"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Enclave interface {
		GetInfo(ctx context.Context) (enclave.Info, error)
		SyncCombinedHeaders(ctx context.Context, payload []byte) (enclave.SyncedTo, error)
		DispatchBlocks(ctx context.Context, payload []byte) (uint64, error)
	}

	Blobs interface {
		HeaderBlob(ctx context.Context, number uint64) (blob.Blob, error)
		ParaBlockBlob(ctx context.Context, number, headerSynchedTo uint64) (blob.Blob, error)
		Progress(ctx context.Context) (parent, para uint64, err error)
	}

	Metrics interface {
		ObserveHeaders(err error, started time.Time)
		ObserveDispatch(err error, started time.Time)
		SetCursors(parentHeaders, paraHeaders, paraBlocks uint64)
	}
)
