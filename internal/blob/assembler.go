// Package blob encodes block ranges into the payloads posted to enclaves and
// serves them back through a read-through cache.
package blob

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
	"github.com/golang/snappy"
	"go.uber.org/zap"
)

// DryRange is a closed sub-range of a window. Headers and Blocks hold the
// uncompressed payloads when the range was encoded by this process.
type DryRange struct {
	Meta    model.RangeMeta
	Headers *model.CombinedHeaders
	Blocks  *model.DispatchBlocks
	// Written is false when the range was already stored.
	Written bool
}

// Assembler writes dry ranges and commits them into blob ranges.
type Assembler struct {
	store  kv.Store
	logger *zap.Logger
}

// NewAssembler creates an Assembler on top of store.
func NewAssembler(store kv.Store, logger *zap.Logger) *Assembler {
	return &Assembler{store: store, logger: logger.Named("assembler")}
}

// SetDryRange stores the payloads of one sub-range unless its written marker
// exists. All keys are written in one batch with the marker last.
func (a *Assembler) SetDryRange(
	ctx context.Context,
	parentStart, paraStart uint64,
	paraBlocks, parentBlocks []model.Block,
	setID uint64,
	epochChanged bool,
) (DryRange, error) {
	if len(parentBlocks) == 0 {
		return DryRange{}, errors.New("dry range without parent blocks")
	}
	parentStop := parentStart + uint64(len(parentBlocks)) - 1
	paraStop := paraStart + uint64(len(paraBlocks)) - 1
	suffix := model.RangeSuffix(parentStart, parentStop, paraStart, paraStop)
	logger := a.logger.With(zap.String("range", suffix))

	written, err := a.store.Has(ctx, kv.DryWrittenKey(suffix))
	if err != nil {
		return DryRange{}, fmt.Errorf("check dry range %s: %w", suffix, err)
	}
	if written {
		meta, err := a.loadMeta(ctx, kv.RangeMetaKey(string(model.Parent), parentStart))
		if err != nil {
			return DryRange{}, fmt.Errorf("load dry range %s: %w", suffix, err)
		}
		logger.Debug("dry range already written")
		return DryRange{Meta: meta}, nil
	}

	headers := combineHeaders(parentBlocks, paraBlocks, epochChanged)
	blocks := &model.DispatchBlocks{Blocks: make([][]byte, 0, len(paraBlocks))}
	for _, b := range paraBlocks {
		blocks.Blocks = append(blocks.Blocks, b.DispatchPayload)
	}

	meta := model.RangeMeta{
		ParentStart:   parentStart,
		ParentStop:    parentStop,
		ParaStart:     paraStart,
		ParaStop:      paraStop,
		HeadersKey:    kv.DryHeadersKey(suffix),
		ParentNumbers: numbers(parentBlocks),
		ParaNumbers:   numbers(paraBlocks),
		SetID:         setID,
		SetChanged:    epochChanged,
	}

	batch := kv.NewBatch()
	if err := putPayload(batch, meta.HeadersKey, headers); err != nil {
		return DryRange{}, err
	}
	if meta.HasParaBlocks() {
		meta.BlocksKey = kv.DryBlocksKey(suffix)
		if err := putPayload(batch, meta.BlocksKey, blocks); err != nil {
			return DryRange{}, err
		}
	}
	rawMeta, err := model.Marshal(meta)
	if err != nil {
		return DryRange{}, err
	}
	for _, n := range meta.ParentNumbers {
		batch.Put(kv.RangeMetaKey(string(model.Parent), n), rawMeta)
	}
	for _, n := range meta.ParaNumbers {
		batch.Put(kv.RangeMetaKey(string(model.Para), n), rawMeta)
	}
	batch.Put(kv.ProgressKey(string(model.Parent)), []byte(strconv.FormatUint(parentStop, 10)))
	if meta.HasParaBlocks() {
		batch.Put(kv.ProgressKey(string(model.Para)), []byte(strconv.FormatUint(paraStop, 10)))
	}
	batch.Put(kv.DryWrittenKey(suffix), kv.Marker)

	if err := a.store.Write(ctx, batch); err != nil {
		return DryRange{}, fmt.Errorf("write dry range %s: %w", suffix, err)
	}
	logger.Info("dry range written",
		zap.Int("parent_blocks", len(parentBlocks)),
		zap.Int("para_blocks", len(paraBlocks)),
		zap.Bool("epoch_changed", epochChanged),
	)
	return DryRange{Meta: meta, Headers: headers, Blocks: blocks, Written: true}, nil
}

// CommitBlobRange merges the sub-ranges of a window into a single blob range
// unless its committed marker exists.
func (a *Assembler) CommitBlobRange(ctx context.Context, subRanges []DryRange) (model.BlobRange, error) {
	if len(subRanges) == 0 {
		return model.BlobRange{}, errors.New("blob range without sub-ranges")
	}
	first, last := subRanges[0].Meta, subRanges[len(subRanges)-1].Meta
	suffix := model.RangeSuffix(first.ParentStart, last.ParentStop, first.ParaStart, last.ParaStop)
	logger := a.logger.With(zap.String("blob", suffix))

	metas := make([]model.RangeMeta, 0, len(subRanges))
	for _, r := range subRanges {
		metas = append(metas, r.Meta)
	}

	committed, err := a.store.Has(ctx, kv.BlobCommittedKey(suffix))
	if err != nil {
		return model.BlobRange{}, fmt.Errorf("check blob %s: %w", suffix, err)
	}
	if committed {
		meta, err := a.loadMeta(ctx, kv.BlobMetaKey(string(model.Parent), first.ParentStart))
		if err != nil {
			return model.BlobRange{}, fmt.Errorf("load blob %s: %w", suffix, err)
		}
		logger.Debug("blob range already committed")
		return model.BlobRange{Meta: meta, SubRanges: metas}, nil
	}

	headers := &model.CombinedHeaders{}
	blocks := &model.DispatchBlocks{}
	meta := model.RangeMeta{
		ParentStart: first.ParentStart,
		ParentStop:  last.ParentStop,
		ParaStart:   first.ParaStart,
		ParaStop:    last.ParaStop,
		HeadersKey:  kv.BlobHeadersKey(suffix),
		SetID:       last.SetID,
		Committed:   true,
	}
	for _, r := range subRanges {
		h, b, err := a.payloads(ctx, r)
		if err != nil {
			return model.BlobRange{}, err
		}
		headers.RelayHeaders = append(headers.RelayHeaders, h.RelayHeaders...)
		headers.ParaHeaders = append(headers.ParaHeaders, h.ParaHeaders...)
		if h.AuthoritySetChange != nil {
			headers.AuthoritySetChange = h.AuthoritySetChange
		}
		if len(h.ParaHeadProof) > 0 {
			headers.ParaHeadProof = h.ParaHeadProof
		}
		blocks.Blocks = append(blocks.Blocks, b.Blocks...)
		meta.ParentNumbers = append(meta.ParentNumbers, r.Meta.ParentNumbers...)
		meta.ParaNumbers = append(meta.ParaNumbers, r.Meta.ParaNumbers...)
		meta.SetChanged = meta.SetChanged || r.Meta.SetChanged
	}

	batch := kv.NewBatch()
	if err := putPayload(batch, meta.HeadersKey, headers); err != nil {
		return model.BlobRange{}, err
	}
	if meta.HasParaBlocks() {
		meta.BlocksKey = kv.BlobBlocksKey(suffix)
		if err := putPayload(batch, meta.BlocksKey, blocks); err != nil {
			return model.BlobRange{}, err
		}
	}
	rawMeta, err := model.Marshal(meta)
	if err != nil {
		return model.BlobRange{}, err
	}
	batch.Put(kv.BlobMetaKey(string(model.Parent), meta.ParentStart), rawMeta)
	if meta.HasParaBlocks() {
		batch.Put(kv.BlobMetaKey(string(model.Para), meta.ParaStart), rawMeta)
	}
	batch.Put(kv.BlobCommittedKey(suffix), kv.Marker)

	if err := a.store.Write(ctx, batch); err != nil {
		return model.BlobRange{}, fmt.Errorf("write blob %s: %w", suffix, err)
	}
	logger.Info("blob range committed", zap.Int("sub_ranges", len(subRanges)))
	return model.BlobRange{Meta: meta, SubRanges: metas}, nil
}

func (a *Assembler) payloads(ctx context.Context, r DryRange) (*model.CombinedHeaders, *model.DispatchBlocks, error) {
	headers, blocks := r.Headers, r.Blocks
	if headers == nil {
		headers = &model.CombinedHeaders{}
		if err := loadPayload(ctx, a.store, r.Meta.HeadersKey, headers); err != nil {
			return nil, nil, err
		}
	}
	if blocks == nil {
		blocks = &model.DispatchBlocks{}
		if r.Meta.BlocksKey != "" {
			if err := loadPayload(ctx, a.store, r.Meta.BlocksKey, blocks); err != nil {
				return nil, nil, err
			}
		}
	}
	return headers, blocks, nil
}

func (a *Assembler) loadMeta(ctx context.Context, key string) (model.RangeMeta, error) {
	raw, err := a.store.Get(ctx, key)
	if err != nil {
		return model.RangeMeta{}, err
	}
	var meta model.RangeMeta
	if err := model.Unmarshal(raw, &meta); err != nil {
		return model.RangeMeta{}, err
	}
	return meta, nil
}

func combineHeaders(parentBlocks, paraBlocks []model.Block, epochChanged bool) *model.CombinedHeaders {
	headers := &model.CombinedHeaders{
		RelayHeaders: make([]model.HeaderToSync, 0, len(parentBlocks)),
		ParaHeaders:  make([][]byte, 0, len(paraBlocks)),
	}
	for _, b := range parentBlocks {
		headers.RelayHeaders = append(headers.RelayHeaders, model.HeaderToSync{
			Header:        b.SyncPayload,
			Justification: b.Justification,
		})
	}
	for _, b := range paraBlocks {
		headers.ParaHeaders = append(headers.ParaHeaders, b.SyncPayload)
	}
	last := parentBlocks[len(parentBlocks)-1]
	headers.ParaHeadProof = last.ParaHeadProof
	if epochChanged {
		headers.AuthoritySetChange = &model.AuthoritySetChange{
			AuthoritySet: last.AuthoritySet,
			Proof:        last.AuthoritySetProof,
		}
	}
	return headers
}

func numbers(blocks []model.Block) []uint64 {
	out := make([]uint64, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.Number)
	}
	return out
}

func putPayload(batch *kv.Batch, key string, v any) error {
	raw, err := model.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	batch.Put(key, snappy.Encode(nil, raw))
	return nil
}

func readPayload(ctx context.Context, store kv.Store, key string) ([]byte, error) {
	compressed, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return snappyDecode(key, compressed)
}

func loadPayload(ctx context.Context, store kv.Store, key string, dst any) error {
	raw, err := readPayload(ctx, store, key)
	if err != nil {
		return err
	}
	return model.Unmarshal(raw, dst)
}

func snappyDecode(key string, compressed []byte) ([]byte, error) {
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", key, err)
	}
	return raw, nil
}
