package model

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var encMode cbor.EncMode

func init() {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic("model: cbor enc mode: " + err.Error())
	}
	encMode = mode
}

// Marshal serializes a value into canonical CBOR.
func Marshal(v any) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("cbor marshal %T: %w", v, err)
	}
	return b, nil
}

// Unmarshal deserializes CBOR into dst.
func Unmarshal(data []byte, dst any) error {
	if err := cbor.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("cbor unmarshal %T: %w", dst, err)
	}
	return nil
}
