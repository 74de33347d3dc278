package server

import (
	"net"

	"github.com/LatosProject/muxkit/internal/pane"
)

// Session is the server-side container for exactly one Window, persisting
// across client detaches (spec.md §3 "Session").
type Session struct {
	ID     int
	Window *pane.Window

	conn     net.Conn // nil while detached
	detached bool

	Rows, Cols int

	// snapshots holds the latest serialized grid per pane id, uploaded by
	// the client on GRID_SAVE before detaching and consumed (freed) when
	// the server ships it to the next attaching client.
	snapshots map[int][]byte

	fullyExited bool
	hadPane     bool // set once the first pane is created; guards reapPid below
}

func newSession(id int) *Session {
	return &Session{
		ID:        id,
		Window:    pane.NewWindow("main"),
		snapshots: make(map[int][]byte),
	}
}

// Conn returns the session's current client connection, or nil if
// detached.
func (s *Session) Conn() net.Conn { return s.conn }

// Detached reports whether the session currently has no attached client.
func (s *Session) Detached() bool { return s.detached }

// LivePaneCount returns the number of panes whose child has not yet been
// reaped (pid != -1).
func (s *Session) LivePaneCount() int {
	n := 0
	for _, p := range s.Window.Panes() {
		if p.Pid != -1 {
			n++
		}
	}
	return n
}
