package enclave

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Phala-Network/runtime-bridge-sub000/internal/model"
)

const (
	PathInitRuntime        = "/init_runtime"
	PathGetInfo            = "/get_info"
	PathGetRuntimeInfo     = "/get_runtime_info"
	PathGetEgressMessages  = "/get_egress_messages"
	PathSyncCombinedHeader = "/bin_api/sync_combined_headers"
	PathDispatchBlock      = "/bin_api/dispatch_block"
	PathKick               = "/kick"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

type nonce struct {
	Value string `json:"value"`
}

type request struct {
	Input any   `json:"input"`
	Nonce nonce `json:"nonce"`
}

type envelope struct {
	Status  string `json:"status"`
	Payload string `json:"payload"`
}

// InitRuntimeRequest bootstraps an enclave runtime.
type InitRuntimeRequest struct {
	SkipRA       bool   `json:"skip_ra"`
	IsParachain  bool   `json:"is_parachain"`
	GenesisInfo  []byte `json:"bridge_genesis_info_b64"`
	GenesisState []byte `json:"genesis_state_b64"`
	Operator     string `json:"operator,omitempty"`
	DebugSetKey  string `json:"debug_set_key,omitempty"`
}

// NewInitRuntimeRequest builds the init request from captured genesis material.
func NewInitRuntimeRequest(genesis model.Genesis, skipRA bool, operator string) (InitRuntimeRequest, error) {
	info, err := model.Marshal(genesis)
	if err != nil {
		return InitRuntimeRequest{}, fmt.Errorf("encode genesis info: %w", err)
	}
	return InitRuntimeRequest{
		SkipRA:       skipRA,
		IsParachain:  true,
		GenesisInfo:  info,
		GenesisState: genesis.GenesisState,
		Operator:     operator,
	}, nil
}

// RuntimeInfo is the signed registration material of an enclave.
type RuntimeInfo struct {
	EncodedRuntimeInfo string          `json:"encoded_runtime_info"`
	GenesisBlockHash   string          `json:"genesis_block_hash,omitempty"`
	PublicKey          string          `json:"public_key"`
	ECDHPublicKey      string          `json:"ecdh_public_key"`
	Attestation        json.RawMessage `json:"attestation,omitempty"`
}

// Attested reports whether the runtime info carries a remote attestation report.
func (r RuntimeInfo) Attested() bool {
	return len(r.Attestation) > 0 && string(r.Attestation) != "null"
}

type runtimeInfoRequest struct {
	ForceRefreshRA bool `json:"force_refresh_ra"`
}

// Info is the enclave's self-reported state. HeaderNum and BlockNum are the
// next numbers the enclave expects.
type Info struct {
	Initialized      bool   `json:"initialized"`
	Registered       bool   `json:"registered"`
	GenesisBlockHash string `json:"genesis_block_hash"`
	PublicKey        string `json:"public_key"`
	ECDHPublicKey    string `json:"ecdh_public_key"`
	HeaderNum        uint64 `json:"headernum"`
	ParaHeaderNum    uint64 `json:"para_headernum"`
	BlockNum         uint64 `json:"blocknum"`
	StateRoot        string `json:"state_root"`
	DevMode          bool   `json:"dev_mode"`
	PendingMessages  uint64 `json:"pending_messages"`
	Score            uint64 `json:"score"`
	Version          string `json:"version"`
	GitRevision      string `json:"git_revision"`
}

// Cursors converts the expected-next numbers into synced-to watermarks.
func (i Info) Cursors() (parentHeader, paraHeader, paraBlock uint64) {
	return prev(i.HeaderNum), prev(i.ParaHeaderNum), prev(i.BlockNum)
}

// RuntimeSnapshot converts Info into the polled worker state.
func (i Info) RuntimeSnapshot(now time.Time) model.WorkerRuntimeInfo {
	parentHeader, paraHeader, paraBlock := i.Cursors()
	return model.WorkerRuntimeInfo{
		Initialized:        i.Initialized,
		Registered:         i.Registered,
		PublicKey:          i.PublicKey,
		ECDHPublicKey:      i.ECDHPublicKey,
		ParentHeaderSynced: parentHeader,
		ParaHeaderSynced:   paraHeader,
		ParaBlockDispatch:  paraBlock,
		PendingMessages:    i.PendingMessages,
		Score:              i.Score,
		Version:            i.Version,
		UpdatedAt:          now,
	}
}

func prev(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return n - 1
}

// SyncedTo is the answer of a header sync call.
type SyncedTo struct {
	RelaychainSyncedTo uint64 `json:"relaychain_synced_to"`
	ParachainSyncedTo  uint64 `json:"parachain_synced_to"`
}

type dispatchedTo struct {
	DispatchedTo uint64 `json:"dispatched_to"`
}

type egressMessages struct {
	Messages string `json:"messages"`
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}
