// Package client implements the attaching terminal client of spec.md
// §4.F: a data-driven state machine, Ctrl-B prefix dispatch, layout
// recomputation, and the attach ceremony. It is grounded on
// original_source/src/client/client.c's dispatch_event/table pair, kept
// as data rather than a conditional chain per spec.md §9's design note.
package client

import "fmt"

// State is one of the four FSM states (spec.md §4.F).
type State int

const (
	Boot State = iota
	Running
	Resizing
	Exiting
)

func (s State) String() string {
	switch s {
	case Boot:
		return "BOOT"
	case Running:
		return "RUNNING"
	case Resizing:
		return "RESIZING"
	case Exiting:
		return "EXITING"
	default:
		return "?"
	}
}

// Event is one FSM input.
type Event int

const (
	EvStdinRead Event = iota
	EvPTYRead
	EvWinch
	EvChldExit
	EvInterrupt
	EvEOFStdin
	EvEOFPTY
	EvEnableRawMode
	EvDetached
	EvPaneSplit
	EvSyncInput
)

func (e Event) String() string {
	switch e {
	case EvStdinRead:
		return "STDIN_READ"
	case EvPTYRead:
		return "PTY_READ"
	case EvWinch:
		return "WINCH"
	case EvChldExit:
		return "CHLD_EXIT"
	case EvInterrupt:
		return "INTERRUPT"
	case EvEOFStdin:
		return "EOF_STDIN"
	case EvEOFPTY:
		return "EOF_PTY"
	case EvEnableRawMode:
		return "ENABLE_RAW_MODE"
	case EvDetached:
		return "DETACHED"
	case EvPaneSplit:
		return "PANE_SPLIT"
	case EvSyncInput:
		return "SYNC_INPUT"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// action is a keybind-style "(client) -> void" handler, matching spec.md
// §9's "store in a small flat table of records, not a deep type
// hierarchy" note for keybind actions, reused here for FSM actions.
type action func(c *Client, ev Event, data any)

// transition is one (state, event) -> (state, action) record.
type transition struct {
	state State
	event Event
	next  State
	act   action
}

// table is the FSM expressed as data and scanned linearly (spec.md §9
// "Transition table"), matching original_source's static const array.
var table = []transition{
	{Boot, EvEnableRawMode, Running, (*Client).actEnableRawMode},
	{Running, EvWinch, Running, (*Client).actResize},
	{Running, EvChldExit, Exiting, (*Client).actChildExit},
	{Running, EvEOFPTY, Exiting, (*Client).actChildExit},
	{Running, EvPTYRead, Running, (*Client).actPTYRead},
	{Running, EvStdinRead, Running, (*Client).actStdinRead},
	{Running, EvDetached, Exiting, (*Client).actDetach},
	{Running, EvPaneSplit, Running, (*Client).actPaneSplit},
	{Running, EvEOFStdin, Exiting, nil},
	{Running, EvInterrupt, Exiting, nil},
	{Running, EvSyncInput, Running, (*Client).actToggleSyncInput},
	{Exiting, EvStdinRead, Exiting, nil},
	{Exiting, EvPTYRead, Exiting, nil},
}

// Dispatch applies the one matching (state, event) transition, running
// its action if any, and always advancing c.state. Unmatched pairs are
// logged and leave the state unchanged (spec.md §8 invariant 5 "FSM
// determinism").
func (c *Client) Dispatch(ev Event, data any) {
	for _, t := range table {
		if t.state == c.state && t.event == ev {
			if t.act != nil {
				t.act(c, ev, data)
			}
			c.state = t.next
			return
		}
	}
	c.log.Warnf("client: unhandled FSM event %v in state %v", ev, c.state)
}
