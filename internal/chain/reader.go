package chain

import (
	"context"
	"fmt"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
)

// Reader turns node RPC calls into model blocks of one chain.
type Reader struct {
	client Client
	chain  model.Chain
	paraID uint32
}

// NewReader creates a Reader. paraID is only used for parent chain readers.
func NewReader(client Client, chain model.Chain, paraID uint32) *Reader {
	return &Reader{client: client, chain: chain, paraID: paraID}
}

// Chain returns the chain the reader serves.
func (r *Reader) Chain() model.Chain {
	return r.chain
}

// Finalized returns the number of the latest finalized block.
func (r *Reader) Finalized(ctx context.Context) (uint64, error) {
	hash, err := r.client.FinalizedHead(ctx)
	if err != nil {
		return 0, err
	}
	header, err := r.client.Header(ctx, hash)
	if err != nil {
		return 0, err
	}
	return ParseNumber(header.Number)
}

// Block fetches block number with everything the pipeline needs from it.
func (r *Reader) Block(ctx context.Context, number uint64) (model.Block, error) {
	hash, err := r.client.BlockHash(ctx, number)
	if err != nil {
		return model.Block{}, err
	}
	signed, err := r.client.Block(ctx, hash)
	if err != nil {
		return model.Block{}, err
	}
	header := signed.Block.Header
	got, err := ParseNumber(header.Number)
	if err != nil {
		return model.Block{}, err
	}
	if got != number {
		return model.Block{}, fmt.Errorf("node returned block %d for %d", got, number)
	}
	encoded, err := EncodeHeader(header)
	if err != nil {
		return model.Block{}, fmt.Errorf("encode header %d: %w", number, err)
	}

	block := model.Block{
		Number:        number,
		Hash:          hash,
		ParentHash:    header.ParentHash,
		Header:        encoded,
		Justification: signed.GrandpaJustification(),
		SyncPayload:   encoded,
	}

	if r.chain == model.Para {
		body, err := EncodeBody(signed.Block.Extrinsics)
		if err != nil {
			return model.Block{}, fmt.Errorf("encode body %d: %w", number, err)
		}
		block.DispatchPayload = append(append([]byte{}, encoded...), body...)
		return block, nil
	}

	if err := r.fillParent(ctx, &block); err != nil {
		return model.Block{}, err
	}
	return block, nil
}

func (r *Reader) fillParent(ctx context.Context, block *model.Block) error {
	setID, err := r.client.CurrentSetID(ctx, block.Hash)
	if err != nil {
		return fmt.Errorf("set id at %d: %w", block.Number, err)
	}
	block.SetID = setID

	headData, err := r.client.ParaHead(ctx, block.Hash, r.paraID)
	if err != nil {
		return fmt.Errorf("para head at %d: %w", block.Number, err)
	}
	paraNumber, _, err := HeadNumber(headData)
	if err != nil {
		return fmt.Errorf("para head at %d: %w", block.Number, err)
	}
	block.ParaNumber = paraNumber
	block.ParaHeadProof, err = r.client.StorageProof(ctx, []string{ParaHeadKey(r.paraID)}, block.Hash)
	if err != nil {
		return fmt.Errorf("para head proof at %d: %w", block.Number, err)
	}

	// Authority set changes are enacted on justified blocks only.
	if !block.Justified() || block.Number == 0 {
		return nil
	}
	previous, err := r.client.CurrentSetID(ctx, block.ParentHash)
	if err != nil {
		return fmt.Errorf("set id at parent of %d: %w", block.Number, err)
	}
	if previous == setID {
		return nil
	}
	block.AuthoritySet, block.AuthoritySetProof, err = r.authorities(ctx, block.Hash)
	if err != nil {
		return fmt.Errorf("authorities at %d: %w", block.Number, err)
	}
	return nil
}

func (r *Reader) authorities(ctx context.Context, hash string) ([]byte, [][]byte, error) {
	set, err := r.client.Storage(ctx, GrandpaAuthoritiesKey, hash)
	if err != nil {
		return nil, nil, err
	}
	proof, err := r.client.StorageProof(ctx, []string{GrandpaAuthoritiesKey}, hash)
	if err != nil {
		return nil, nil, err
	}
	return set, proof, nil
}

// CaptureGenesis collects the bootstrap material for paraID anchored at
// parent block parentNumber.
func CaptureGenesis(ctx context.Context, parent, para Client, parentNumber uint64, paraID uint32) (model.Genesis, error) {
	parentReader := NewReader(parent, model.Parent, paraID)
	hash, err := parent.BlockHash(ctx, parentNumber)
	if err != nil {
		return model.Genesis{}, err
	}
	header, err := parent.Header(ctx, hash)
	if err != nil {
		return model.Genesis{}, err
	}
	parentHeader, err := EncodeHeader(header)
	if err != nil {
		return model.Genesis{}, fmt.Errorf("encode genesis parent header: %w", err)
	}
	setID, err := parent.CurrentSetID(ctx, hash)
	if err != nil {
		return model.Genesis{}, err
	}
	authorities, proof, err := parentReader.authorities(ctx, hash)
	if err != nil {
		return model.Genesis{}, fmt.Errorf("genesis authorities: %w", err)
	}

	headData, err := parent.ParaHead(ctx, hash, paraID)
	if err != nil {
		return model.Genesis{}, err
	}
	paraNumber, paraHeader, err := HeadNumber(headData)
	if err != nil {
		return model.Genesis{}, fmt.Errorf("genesis para head: %w", err)
	}
	paraHash, err := para.BlockHash(ctx, paraNumber)
	if err != nil {
		return model.Genesis{}, err
	}
	pairs, err := para.StorageChanges(ctx, paraHash)
	if err != nil {
		return model.Genesis{}, err
	}
	state, err := model.Marshal(pairs)
	if err != nil {
		return model.Genesis{}, err
	}

	parentGenesis, err := parent.BlockHash(ctx, 0)
	if err != nil {
		return model.Genesis{}, err
	}
	paraGenesis, err := para.BlockHash(ctx, 0)
	if err != nil {
		return model.Genesis{}, err
	}

	return model.Genesis{
		ParaID:            paraID,
		ParentNumber:      parentNumber,
		ParentHeader:      parentHeader,
		Authorities:       authorities,
		AuthoritiesProof:  proof,
		ParaNumber:        paraNumber,
		ParaHeader:        paraHeader,
		GenesisState:      state,
		ParentSetID:       setID,
		ParentGenesisHash: parentGenesis,
		ParaGenesisHash:   paraGenesis,
	}, nil
}
