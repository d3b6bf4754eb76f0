// Package window partitions the parent chain into windows bounded by
// authority set changes and hands their sub-ranges to the blob assembler.
package window

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/blob"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/kv"
	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
	"github.com/Phala-Network/runtime-bridge-sub000/pkg/safe"
	"go.uber.org/zap"
)

// Manager folds parent blocks, in order, into windows.
type Manager struct {
	store     kv.Store
	blocks    Blocks
	assembler Assembler
	metrics   Metrics
	logger    *zap.Logger
	paraID    uint32

	window     model.Window
	prevSetID  uint64
	nextParent uint64
	nextPara   uint64

	parentStart  uint64
	paraStart    uint64
	parentBlocks []model.Block
	paraBlocks   []model.Block
	subRanges    []blob.DryRange
}

// NewManager creates a Manager for paraID.
func NewManager(store kv.Store, blocks Blocks, assembler Assembler, metrics Metrics, logger *zap.Logger, paraID uint32) *Manager {
	return &Manager{
		store:     store,
		blocks:    blocks,
		assembler: assembler,
		metrics:   metrics,
		logger:    logger.Named("window"),
		paraID:    paraID,
	}
}

// Run resumes the current window and processes parent blocks until ctx ends.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Resume(ctx); err != nil {
		return err
	}
	for {
		if err := m.Step(ctx); err != nil {
			return err
		}
	}
}

// Resume loads the current window. An unfinished window is replayed from its
// start blocks; a finished one is followed by a new window.
func (m *Manager) Resume(ctx context.Context) error {
	current, ok, err := kv.GetUint64(ctx, m.store, kv.CurrentWindowKey)
	if err != nil {
		return fmt.Errorf("load current window id: %w", err)
	}

	if !ok {
		genesis, err := m.blocks.Genesis(ctx, m.paraID)
		if err != nil {
			return fmt.Errorf("load genesis of para %d: %w", m.paraID, err)
		}
		first := model.NewWindow(0, genesis.ParentNumber+1, genesis.ParaNumber+1, genesis.ParentSetID)
		if err := m.persist(ctx, first); err != nil {
			return err
		}
		m.reset(first)
		m.logger.Info("first window opened",
			zap.Int64("parent_start", first.ParentStart),
			zap.Int64("para_start", first.ParaStart),
		)
		return nil
	}

	w, err := Load(ctx, m.store, current)
	if err != nil {
		return err
	}
	if w.Finished {
		stopNumber, err := safe.Uint64(w.ParentStop)
		if err != nil {
			return fmt.Errorf("window %d finished without a stop block: %w", w.ID, err)
		}
		stop, err := m.blocks.WaitFor(ctx, model.Parent, stopNumber)
		if err != nil {
			return fmt.Errorf("load stop block of window %d: %w", w.ID, err)
		}
		w = w.Next(stop.SetID)
		if err := m.persist(ctx, w); err != nil {
			return err
		}
	}
	m.reset(w)
	m.logger.Info("window resumed",
		zap.Uint64("id", w.ID),
		zap.Int64("parent_start", w.ParentStart),
		zap.Int64("para_start", w.ParaStart),
	)
	return nil
}

// Window returns the window being accumulated.
func (m *Manager) Window() model.Window {
	return m.window
}

func (m *Manager) reset(w model.Window) {
	m.window = w
	m.prevSetID = w.SetID
	m.nextParent = uint64(w.ParentStart)
	m.nextPara = uint64(w.ParaStart)
	m.parentStart = m.nextParent
	m.paraStart = m.nextPara
	m.parentBlocks = nil
	m.paraBlocks = nil
	m.subRanges = nil
	m.metrics.SetWindow(w.ID)
}

// Step waits for the next parent block and folds it in.
func (m *Manager) Step(ctx context.Context) error {
	block, err := m.blocks.WaitFor(ctx, model.Parent, m.nextParent)
	if err != nil {
		return fmt.Errorf("wait for parent block %d: %w", m.nextParent, err)
	}
	err = m.process(ctx, block)
	m.metrics.ObserveBlock(err)
	if err != nil {
		return fmt.Errorf("process parent block %d: %w", block.Number, err)
	}
	m.nextParent++
	return nil
}

func (m *Manager) process(ctx context.Context, block model.Block) error {
	for m.nextPara <= block.ParaNumber {
		para, err := m.blocks.WaitFor(ctx, model.Para, m.nextPara)
		if err != nil {
			return fmt.Errorf("wait for para block %d: %w", m.nextPara, err)
		}
		m.paraBlocks = append(m.paraBlocks, para)
		m.nextPara++
	}
	m.parentBlocks = append(m.parentBlocks, block)

	epochChanged := block.SetID > m.prevSetID
	if block.Justified() || epochChanged {
		if !block.Justified() {
			m.logger.Warn("authority set changed on a block without justification",
				zap.Uint64("number", block.Number),
				zap.Uint64("set_id", block.SetID),
			)
		}
		if err := m.closeSubRange(ctx, block, epochChanged); err != nil {
			return err
		}
	}
	if epochChanged {
		if err := m.closeWindow(ctx, block); err != nil {
			return err
		}
	}
	m.prevSetID = block.SetID
	return nil
}

func (m *Manager) closeSubRange(ctx context.Context, block model.Block, epochChanged bool) error {
	dry, err := m.assembler.SetDryRange(ctx, m.parentStart, m.paraStart, m.paraBlocks, m.parentBlocks, block.SetID, epochChanged)
	m.metrics.ObserveDryRange(err, dry.Written)
	if err != nil {
		return fmt.Errorf("set dry range %d-%d: %w", m.parentStart, block.Number, err)
	}
	m.subRanges = append(m.subRanges, dry)
	m.parentStart = block.Number + 1
	m.paraStart = m.nextPara
	m.parentBlocks = nil
	m.paraBlocks = nil
	return nil
}

func (m *Manager) closeWindow(ctx context.Context, block model.Block) error {
	started := time.Now()
	blobRange, err := m.assembler.CommitBlobRange(ctx, m.subRanges)
	m.metrics.ObserveCommit(err, started)
	if err != nil {
		return fmt.Errorf("commit window %d: %w", m.window.ID, err)
	}

	finished := m.window
	if err := finished.Close(block.Number, m.nextPara-1); err != nil {
		return err
	}
	next := finished.Next(block.SetID)
	if err := m.persist(ctx, finished, next); err != nil {
		return err
	}
	m.logger.Info("window finished",
		zap.Uint64("id", finished.ID),
		zap.Int64("parent_stop", finished.ParentStop),
		zap.Int64("para_stop", finished.ParaStop),
		zap.String("blob", blobRange.Meta.Suffix()),
		zap.Uint64("next_set_id", next.SetID),
	)

	m.window = next
	m.subRanges = nil
	m.metrics.SetWindow(next.ID)
	return nil
}

// persist writes the windows and points the current window id at the last one.
func (m *Manager) persist(ctx context.Context, windows ...model.Window) error {
	batch := kv.NewBatch()
	for _, w := range windows {
		raw, err := model.Marshal(w)
		if err != nil {
			return err
		}
		batch.Put(kv.WindowKey(w.ID), raw)
	}
	last := windows[len(windows)-1]
	batch.Put(kv.CurrentWindowKey, []byte(strconv.FormatUint(last.ID, 10)))
	if err := m.store.Write(ctx, batch); err != nil {
		return fmt.Errorf("persist window %d: %w", last.ID, err)
	}
	return nil
}

// ErrNoWindow is returned by Load for unknown window ids.
var ErrNoWindow = errors.New("window not found")

// Load reads a window record.
func Load(ctx context.Context, store kv.Store, id uint64) (model.Window, error) {
	raw, err := store.Get(ctx, kv.WindowKey(id))
	if errors.Is(err, kv.ErrNotFound) {
		return model.Window{}, fmt.Errorf("%w: %d", ErrNoWindow, id)
	}
	if err != nil {
		return model.Window{}, fmt.Errorf("load window %d: %w", id, err)
	}
	var w model.Window
	if err := model.Unmarshal(raw, &w); err != nil {
		return model.Window{}, fmt.Errorf("decode window %d: %w", id, err)
	}
	return w, nil
}
