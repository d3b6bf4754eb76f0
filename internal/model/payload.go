package model

// HeaderToSync is a header with its optional justification.
type HeaderToSync struct {
	Header        []byte `cbor:"1,keyasint"`
	Justification []byte `cbor:"2,keyasint,omitempty"`
}

// AuthoritySetChange carries the new authority set and its inclusion proof.
type AuthoritySetChange struct {
	AuthoritySet []byte   `cbor:"1,keyasint"`
	Proof        [][]byte `cbor:"2,keyasint"`
}

// CombinedHeaders is the header-sync payload posted to enclaves.
type CombinedHeaders struct {
	RelayHeaders       []HeaderToSync      `cbor:"1,keyasint"`
	AuthoritySetChange *AuthoritySetChange `cbor:"2,keyasint,omitempty"`
	ParaHeaders        [][]byte            `cbor:"3,keyasint"`
	ParaHeadProof      [][]byte            `cbor:"4,keyasint,omitempty"`
}

// DispatchBlocks is the block-dispatch payload posted to enclaves.
type DispatchBlocks struct {
	Blocks [][]byte `cbor:"1,keyasint"`
}
