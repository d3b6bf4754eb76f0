package ipc

import (
	"context"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
)

// TxService reaches the external transaction service over the bus.
type TxService struct {
	client *Client
}

func NewTxService(client *Client) *TxService {
	return &TxService{client: client}
}

// Submit sends tx and returns once it is included on chain.
func (s *TxService) Submit(ctx context.Context, tx model.Tx) error {
	return s.client.Call(ctx, ActionSubmitTx, tx, nil)
}

// WorkerState returns the on-chain view of the worker with publicKey.
func (s *TxService) WorkerState(ctx context.Context, publicKey string) (model.ChainWorkerState, error) {
	var state model.ChainWorkerState
	err := s.client.Call(ctx, ActionQueryWorkerState, WorkerStateQuery{PublicKey: publicKey}, &state)
	return state, err
}
