// Package pane implements the Window/Pane geometry model of spec.md §3-§4.C:
// a window is an ordered list of panes sharing screen real estate, each
// pane owning a Grid, a cursor, a PTY master, and a bound VT parser.
package pane

import (
	"os"

	"github.com/LatosProject/muxkit/internal/grid"
	"github.com/LatosProject/muxkit/internal/list"
	"github.com/LatosProject/muxkit/internal/vt"
)

// Geometry is a pane's position and size within the enclosing terminal.
type Geometry struct {
	XOff, YOff int
	SX, SY     int
}

// Pane is a bounded region within a Window.
type Pane struct {
	ID   int
	Geom Geometry

	CX, CY int // cursor, 0 <= CX < W, 0 <= CY < H

	Grid   *grid.Grid
	Parser *vt.Parser

	Master *os.File // PTY master; nil until pane_set_master_fd
	Pid    int      // child shell pid, -1 once reaped
}

// Window is an ordered set of Panes, a human-readable name, and the
// per-window pane-id counter.
type Window struct {
	Name       string
	panes      *list.List[*Pane]
	nextPaneID int
	active     *list.Element[*Pane]
}

// NewWindow allocates a window with an empty pane list and pane-id
// counter 0 (window_create).
func NewWindow(name string) *Window {
	return &Window{Name: name, panes: list.New[*Pane]()}
}

// Panes returns the window's panes in order.
func (w *Window) Panes() []*Pane { return w.panes.Values() }

// Count returns the number of panes in the window.
func (w *Window) Count() int { return w.panes.Len() }

// Active returns the focused pane, or nil if the window has no panes.
func (w *Window) Active() *Pane {
	if w.active == nil {
		return nil
	}
	return w.active.Value
}

// SetActive focuses p; p must already belong to this window.
func (w *Window) SetActive(p *Pane) {
	for e := w.panes.Front(); e != nil; e = e.Next() {
		if e.Value == p {
			w.active = e
			return
		}
	}
}

// NextPane cycles focus to the pane after the current active one,
// wrapping to the front (the default 'o' keybind).
func (w *Window) NextPane() *Pane {
	if w.active == nil {
		return nil
	}
	if n := w.active.Next(); n != nil {
		w.active = n
	} else {
		w.active = w.panes.Front()
	}
	return w.active.Value
}

// Create allocates a pane at the given geometry, assigns it
// id = window.next_pane_id++, builds its Grid, and binds a VT parser
// whose scrollback callback pushes into that Grid's history
// (pane_create, spec.md §4.C).
func (w *Window) Create(geom Geometry) *Pane {
	p := &Pane{
		ID:   w.nextPaneID,
		Geom: geom,
		Pid:  -1,
	}
	w.nextPaneID++
	p.Grid = grid.New(geom.SX, geom.SY, grid.DefaultHistorySize)
	p.Parser = vt.New(geom.SY, geom.SX, func(cells []grid.Cell, continuation bool) {
		p.Grid.PushHistory(cells, continuation)
	}, func(out []byte) {
		if p.Master != nil {
			p.Master.Write(out)
		}
	})

	e := w.panes.PushBack(p)
	if w.panes.Len() == 1 {
		w.active = e
	}
	return p
}

// SetMasterFD attaches fd as the pane's PTY master (pane_set_master_fd).
// The VT parser's output callback already closes over p.Master, so once
// it is set parser-generated responses are written to it automatically.
func (p *Pane) SetMasterFD(f *os.File, pid int) {
	p.Master = f
	p.Pid = pid
}

// Resize reallocates the pane's grid to (sx,sy), clamping the cursor, and
// notifies the VT parser of the new size. It does not reflow history —
// callers call Pane.Grid.ResizeHistory separately (pane_resize, spec.md
// §4.C).
func (p *Pane) Resize(sx, sy int) {
	p.CX, p.CY = p.Grid.Resize(sx, sy, p.CX, p.CY)
	p.Geom.SX, p.Geom.SY = sx, sy
	p.Parser.SetSize(sy, sx)
}

// Destroy releases the pane's parser and grid. It deliberately does not
// close Master — ownership of the fd belongs to whichever process
// (server or client) holds it (pane_destroy, spec.md §4.C).
func (w *Window) Destroy(p *Pane) {
	for e := w.panes.Front(); e != nil; e = e.Next() {
		if e.Value == p {
			if w.active == e {
				w.active = nil
			}
			w.panes.Remove(e)
			return
		}
	}
}
