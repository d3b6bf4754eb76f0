package model

// Block is a finalized block fetched from either chain.
type Block struct {
	Number        uint64 `cbor:"1,keyasint"`
	Hash          string `cbor:"2,keyasint"`
	ParentHash    string `cbor:"3,keyasint"`
	Header        []byte `cbor:"4,keyasint"`
	SetID         uint64 `cbor:"5,keyasint"`
	Justification []byte `cbor:"6,keyasint,omitempty"`
	// SyncPayload is the encoded header sent to enclaves during header sync.
	SyncPayload []byte `cbor:"7,keyasint,omitempty"`
	// DispatchPayload is the encoded block body (para chain only).
	DispatchPayload []byte `cbor:"8,keyasint,omitempty"`

	// ParaNumber is the para head number included in a parent block.
	ParaNumber uint64 `cbor:"9,keyasint,omitempty"`
	// ParaHeadProof is the storage proof of that para head.
	ParaHeadProof [][]byte `cbor:"10,keyasint,omitempty"`
	// AuthoritySet and AuthoritySetProof are set on parent blocks that enact a set change.
	AuthoritySet      []byte   `cbor:"11,keyasint,omitempty"`
	AuthoritySetProof [][]byte `cbor:"12,keyasint,omitempty"`
}

// Justified reports whether the block carries a finality proof.
func (b Block) Justified() bool {
	return len(b.Justification) > 0
}

// Genesis captures the material an enclave needs to bootstrap light clients.
type Genesis struct {
	ParaID            uint32   `cbor:"1,keyasint"`
	ParentNumber      uint64   `cbor:"2,keyasint"`
	ParentHeader      []byte   `cbor:"3,keyasint"`
	Authorities       []byte   `cbor:"4,keyasint"`
	AuthoritiesProof  [][]byte `cbor:"5,keyasint"`
	ParaNumber        uint64   `cbor:"6,keyasint"`
	ParaHeader        []byte   `cbor:"7,keyasint"`
	GenesisState      []byte   `cbor:"8,keyasint"`
	ParentSetID       uint64   `cbor:"9,keyasint"`
	ParentGenesisHash string   `cbor:"10,keyasint"`
	ParaGenesisHash   string   `cbor:"11,keyasint"`
}
