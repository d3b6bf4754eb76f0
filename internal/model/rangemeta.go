package model

import "fmt"

// RangeMeta points at the stored payloads covering a span of blocks on both chains.
// ParaStop equals ParaStart-1 when the range carries no para blocks.
type RangeMeta struct {
	ParentStart   uint64   `cbor:"1,keyasint"`
	ParentStop    uint64   `cbor:"2,keyasint"`
	ParaStart     uint64   `cbor:"3,keyasint"`
	ParaStop      uint64   `cbor:"4,keyasint"`
	HeadersKey    string   `cbor:"5,keyasint"`
	BlocksKey     string   `cbor:"6,keyasint"`
	ParentNumbers []uint64 `cbor:"7,keyasint"`
	ParaNumbers   []uint64 `cbor:"8,keyasint"`
	SetID         uint64   `cbor:"9,keyasint"`
	SetChanged    bool     `cbor:"10,keyasint"`
	Committed     bool     `cbor:"11,keyasint"`
}

// Suffix is the storage key suffix built from the four boundary numbers.
func (m RangeMeta) Suffix() string {
	return RangeSuffix(m.ParentStart, m.ParentStop, m.ParaStart, m.ParaStop)
}

// HasParaBlocks reports whether the range dispatches any para block.
func (m RangeMeta) HasParaBlocks() bool {
	return len(m.ParaNumbers) > 0
}

// RangeSuffix formats the boundary numbers of a range.
func RangeSuffix(parentStart, parentStop, paraStart, paraStop uint64) string {
	return fmt.Sprintf("%012d-%012d-%012d-%012d", parentStart, parentStop, paraStart, paraStop)
}

// BlobRange is the merged payload of one or more dry ranges, delivered to
// enclaves in a single round trip.
type BlobRange struct {
	Meta      RangeMeta
	SubRanges []RangeMeta
}
