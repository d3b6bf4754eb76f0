package kv

import (
	"fmt"
)

// Marker is the value stored under existence and completion markers.
var Marker = []byte("1")

func pad(n uint64) string {
	return fmt.Sprintf("%012d", n)
}

// BlockKey is the key of a persisted block.
func BlockKey(chain string, number uint64) string {
	return "block/" + chain + "/" + pad(number)
}

// BlockExistsKey is the fast-path existence flag of a block.
func BlockExistsKey(chain string, number uint64) string {
	return BlockKey(chain, number) + "/exists"
}

// BlockHeadKey holds the last persisted block number of a chain.
func BlockHeadKey(chain string) string {
	return "block/" + chain + "/head"
}

// FinalizedKey holds the last known finalized height of a chain.
func FinalizedKey(chain string) string {
	return "chain/" + chain + "/finalized"
}

// GenesisKey is the key of the genesis material for a para id.
func GenesisKey(paraID uint32) string {
	return fmt.Sprintf("genesis/%d", paraID)
}

// WindowKey is the key of a window record.
func WindowKey(id uint64) string {
	return "window/" + pad(id)
}

// CurrentWindowKey holds the id of the window being accumulated.
const CurrentWindowKey = "window/current"

// DryHeadersKey and friends address the payloads of a dry range.
func DryHeadersKey(suffix string) string { return "dry/" + suffix + "/headers" }
func DryBlocksKey(suffix string) string { return "dry/" + suffix + "/blocks" }
func DryWrittenKey(suffix string) string { return "dry/" + suffix + "/written" }

// BlobHeadersKey and friends address the payloads of a committed blob range.
func BlobHeadersKey(suffix string) string { return "blob/" + suffix + "/headers" }
func BlobBlocksKey(suffix string) string { return "blob/" + suffix + "/blocks" }
func BlobCommittedKey(suffix string) string { return "blob/" + suffix + "/committed" }

// RangeMetaKey indexes dry range metadata by chain and block number.
func RangeMetaKey(chain string, number uint64) string {
	return "meta/" + chain + "/" + pad(number)
}

// BlobMetaKey indexes committed blob metadata by chain and window start number.
func BlobMetaKey(chain string, number uint64) string {
	return "meta/blob/" + chain + "/" + pad(number)
}

// ProgressKey holds the highest block number covered by a written dry range.
func ProgressKey(chain string) string {
	return "progress/" + chain
}

// RunnerKey holds the fencing token of a lifecycle runner.
func RunnerKey(runnerID string) string {
	return "lifecycle/runner/" + runnerID
}
