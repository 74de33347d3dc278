package client

import (
	"encoding/binary"
	"os"

	"golang.org/x/term"

	"github.com/LatosProject/muxkit/internal/pane"
	"github.com/LatosProject/muxkit/internal/wire"
)

// actResize implements spec.md §4.F "Layout recomputation on WINCH":
// re-read the terminal size, recompute every pane's geometry, push
// TIOCSWINSZ to each PTY master, clear, redraw, and tell the server the
// new overall size.
func (c *Client) actResize(ev Event, data any) {
	cols, rows, err := term.GetSize(c.stdinFD)
	if err != nil {
		return
	}
	c.rows, c.cols = rows, cols
	c.relayout()

	body := make([]byte, 4)
	binary.LittleEndian.PutUint16(body[0:2], uint16(rows))
	binary.LittleEndian.PutUint16(body[2:4], uint16(cols))
	wire.WriteMessage(c.conn, wire.Resize, body)

	c.redrawAll()
}

// relayout recomputes every pane's geometry for the current (c.rows,
// c.cols) and the window's current pane count, and pushes the new size
// to each PTY master (spec.md §4.F / §8.7).
func (c *Client) relayout() {
	panes := c.window.Panes()
	geoms := pane.ComputeLayout(c.cols, c.rows, len(panes))
	for i, p := range panes {
		p.Resize(geoms[i].SX, geoms[i].SY)
		p.Geom = geoms[i]
		resizePTY(p)
	}
}

// actPaneSplit implements spec.md §4.F "(RUNNING, PANE_SPLIT)": resize
// existing panes to make room, ask the server for a new pane, receive
// its master fd, and redraw.
func (c *Client) actPaneSplit(ev Event, data any) {
	n := c.window.Count() + 1
	geoms := pane.ComputeLayout(c.cols, c.rows, n)

	body := make([]byte, 4)
	binary.LittleEndian.PutUint16(body[0:2], uint16(c.rows))
	binary.LittleEndian.PutUint16(body[2:4], uint16(c.cols))
	wire.WriteMessage(c.conn, wire.Resize, body)
	wire.WriteMessage(c.conn, wire.Command, []byte("pane-split"))

	fd, err := wire.RecvFD(c.conn)
	if err != nil {
		c.log.Errorf("client: pane split: recv fd: %v", err)
		return
	}

	for i, p := range c.window.Panes() {
		p.Resize(geoms[i].SX, geoms[i].SY)
		p.Geom = geoms[i]
		resizePTY(p)
	}

	np := c.window.Create(geoms[n-1])
	np.SetMasterFD(os.NewFile(uintptr(fd), "muxkit-pty"), -1)
	resizePTY(np)
	c.window.SetActive(np)
	go c.readPTY(np)

	c.redrawAll()
}
