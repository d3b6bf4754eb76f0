package syncclient

import "go.uber.org/atomic"

// Status holds the synced-to watermarks of a worker. Every cursor only moves forward.
type Status struct {
	parentHeader atomic.Uint64
	paraHeader   atomic.Uint64
	paraBlock    atomic.Uint64
}

func (s *Status) ParentHeaderSynchedTo() uint64 { return s.parentHeader.Load() }
func (s *Status) ParaHeaderSynchedTo() uint64   { return s.paraHeader.Load() }
func (s *Status) ParaBlockDispatchedTo() uint64 { return s.paraBlock.Load() }

// Advance raises each cursor to the given value when it is ahead.
func (s *Status) Advance(parentHeader, paraHeader, paraBlock uint64) {
	advance(&s.parentHeader, parentHeader)
	advance(&s.paraHeader, paraHeader)
	advance(&s.paraBlock, paraBlock)
}

func advance(cursor *atomic.Uint64, to uint64) bool {
	for {
		current := cursor.Load()
		if to <= current {
			return false
		}
		if cursor.CompareAndSwap(current, to) {
			return true
		}
	}
}
