// Package model defines domain models shared by the bridge pipeline.
package model

import "fmt"

// Chain identifies one of the two chains the bridge follows.
type Chain string

var (
	// Parent is the relay chain providing finality proofs.
	Parent Chain = "parent"
	// Para is the parachain anchored into the parent chain.
	Para Chain = "para"
)

// UnmarshalFlag implements go-flags value parsing.
func (c *Chain) UnmarshalFlag(value string) error {
	parsed, err := ParseChain(value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseChain converts a chain name into a Chain.
func ParseChain(value string) (Chain, error) {
	switch Chain(value) {
	case Parent:
		return Parent, nil
	case Para:
		return Para, nil
	default:
		return "", fmt.Errorf("unknown chain %q", value)
	}
}
