package ipc

import (
	"encoding/json"
	"fmt"
)

// Action is a closed set of methods carried by envelopes.
type Action uint8

const (
	ActionUnknown Action = iota
	// Lifecycle commands, served by the lifecycle process.
	ActionStartWorker
	ActionKickWorker
	ActionRestartWorker
	// Chain access, served by the transaction service.
	ActionSubmitTx
	ActionQueryWorkerState
)

var actionNames = map[Action]string{
	ActionStartWorker:      "start_worker",
	ActionKickWorker:       "kick_worker",
	ActionRestartWorker:    "restart_worker",
	ActionSubmitTx:         "submit_tx",
	ActionQueryWorkerState: "query_worker_state",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// ParseAction resolves a method name.
func ParseAction(method string) (Action, error) {
	for action, name := range actionNames {
		if name == method {
			return action, nil
		}
	}
	return ActionUnknown, fmt.Errorf("%w: %q", ErrUnknownAction, method)
}

func (a Action) MarshalJSON() ([]byte, error) {
	if _, ok := actionNames[a]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, a)
	}
	return json.Marshal(a.String())
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var method string
	if err := json.Unmarshal(data, &method); err != nil {
		return err
	}
	parsed, err := ParseAction(method)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// WorkerCommand is the payload of the lifecycle commands.
type WorkerCommand struct {
	WorkerIDs []string `json:"worker_ids"`
}

// WorkerStateQuery is the payload of ActionQueryWorkerState.
type WorkerStateQuery struct {
	PublicKey string `json:"public_key"`
}
