package lifecycle

import "fmt"

// State is the lifecycle state of a worker.
type State uint8

const (
	Idle State = iota
	Starting
	Synching
	Synced
	PreMining
	Mining
	Error
	Kicked
)

var stateNames = [...]string{
	Idle:      "idle",
	Starting:  "starting",
	Synching:  "synching",
	Synced:    "synced",
	PreMining: "pre_mining",
	Mining:    "mining",
	Error:     "error",
	Kicked:    "kicked",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// StateNames lists every state, for metrics.
func StateNames() []string {
	return stateNames[:]
}

// Event drives a worker from one state to another.
type Event uint8

const (
	EventStart Event = iota + 1
	EventMarkSynching
	EventMarkSynced
	EventMarkPreMining
	EventMarkMining
	EventError
	EventKick
)

var eventNames = map[Event]string{
	EventStart:         "start",
	EventMarkSynching:  "mark_synching",
	EventMarkSynced:    "mark_synced",
	EventMarkPreMining: "mark_pre_mining",
	EventMarkMining:    "mark_mining",
	EventError:         "error",
	EventKick:          "kick",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", uint8(e))
}

var transitions = map[State]map[Event]State{
	Idle:      {EventStart: Starting},
	Starting:  {EventMarkSynching: Synching},
	Synching:  {EventMarkSynced: Synced},
	Synced:    {EventMarkPreMining: PreMining},
	PreMining: {EventMarkMining: Mining},
	Mining:    {},
	Error:     {EventStart: Starting},
	Kicked:    {EventStart: Starting, EventKick: Kicked},
}

// Transition returns the state event leads to from. ok is false when the
// event is not accepted in from. A result equal to from is a no-op.
func Transition(from State, event Event) (to State, ok bool) {
	switch event {
	case EventError:
		return Error, true
	case EventKick:
		if from != Kicked {
			return Kicked, true
		}
	}
	to, ok = transitions[from][event]
	return to, ok
}
