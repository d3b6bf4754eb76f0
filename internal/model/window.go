package model

import "fmt"

// Window is a contiguous span of parent and para blocks bounded by a set id change.
// Stop blocks are -1 while the window is open.
type Window struct {
	ID          uint64 `cbor:"1,keyasint"`
	ParentStart int64  `cbor:"2,keyasint"`
	ParentStop  int64  `cbor:"3,keyasint"`
	ParaStart   int64  `cbor:"4,keyasint"`
	ParaStop    int64  `cbor:"5,keyasint"`
	SetID       uint64 `cbor:"6,keyasint"`
	Finished    bool   `cbor:"7,keyasint"`
}

// NewWindow opens a window starting at the given block numbers.
func NewWindow(id uint64, parentStart, paraStart uint64, setID uint64) Window {
	return Window{
		ID:          id,
		ParentStart: int64(parentStart),
		ParentStop:  -1,
		ParaStart:   int64(paraStart),
		ParaStop:    -1,
		SetID:       setID,
	}
}

// Close records the stop blocks. A window can only be closed once and the
// stop blocks never move backwards past the start.
func (w *Window) Close(parentStop, paraStop uint64) error {
	if w.Finished {
		return fmt.Errorf("window %d already finished", w.ID)
	}
	if int64(parentStop) < w.ParentStart {
		return fmt.Errorf("window %d parent stop %d before start %d", w.ID, parentStop, w.ParentStart)
	}
	w.ParentStop = int64(parentStop)
	w.ParaStop = int64(paraStop)
	w.Finished = true
	return nil
}

// Next opens the window that follows a finished one.
func (w Window) Next(setID uint64) Window {
	return NewWindow(w.ID+1, uint64(w.ParentStop+1), uint64(w.ParaStop+1), setID)
}
