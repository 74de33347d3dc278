package client

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/LatosProject/muxkit/internal/config"
	"github.com/LatosProject/muxkit/internal/i18n"
	"github.com/LatosProject/muxkit/internal/logx"
	"github.com/LatosProject/muxkit/internal/pane"
	"github.com/LatosProject/muxkit/internal/render"
	"github.com/LatosProject/muxkit/internal/wire"
)

// Version is the string the status bar's right margin displays.
const Version = "muxkit 1.0"

// fsmEvent is one item on the Client's single event channel: every
// stdin/pty/signal/server source feeds this channel rather than being
// polled directly, which is this adaptation's stand-in for select()
// over arbitrary fds (see internal/server's doc comment for the same
// pattern on the daemon side).
type fsmEvent struct {
	ev   Event
	data any
}

type ptyReadData struct {
	pane *pane.Pane
	buf  []byte
}

// Client holds the one process-wide context spec.md §9 calls for
// ("the client holds one process-wide client record... can be packaged
// into a single owned context passed explicitly").
type Client struct {
	conn *net.UnixConn
	log  *logx.Logger
	cat  *i18n.Catalog
	binds config.Keybinds

	renderer *render.Renderer
	window   *pane.Window

	state        State
	ctrlBPressed bool
	syncInput    bool

	rows, cols int
	stdinFD    int
	origTerm   *term.State

	events chan fsmEvent
}

// New wires a Client around an already version-handshaked connection and
// an initial window (populated by either NewSession or AttachExisting).
func New(conn *net.UnixConn, log *logx.Logger, binds config.Keybinds, window *pane.Window, rows, cols int) *Client {
	return &Client{
		conn:     conn,
		log:      log,
		cat:      i18n.New(i18n.Detect()),
		binds:    binds,
		renderer: render.New(os.Stdout),
		window:   window,
		state:    Boot,
		rows:     rows,
		cols:     cols,
		stdinFD:  int(os.Stdin.Fd()),
		events:   make(chan fsmEvent, 64),
	}
}

// Run enters raw mode and drives the FSM until a state transition leaves
// it EXITING (stdin/pty EOF, detach, interrupt, or a dead shell).
func (c *Client) Run() {
	c.Dispatch(EvEnableRawMode, nil)

	fmt.Fprint(os.Stdout, "\033[?1049h")
	c.renderer.ClearScreen()
	c.redrawAll()

	go c.readStdin()
	for _, p := range c.window.Panes() {
		go c.readPTY(p)
	}
	go c.watchServer()
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	go func() {
		for range winch {
			c.events <- fsmEvent{EvWinch, nil}
		}
	}()
	defer signal.Stop(winch)

	for ev := range c.events {
		c.Dispatch(ev.ev, ev.data)
		if c.state == Exiting {
			return
		}
	}
}

func (c *Client) readStdin() {
	buf := make([]byte, 4096)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			cp := append([]byte(nil), buf[:n]...)
			c.events <- fsmEvent{EvStdinRead, cp}
		}
		if err != nil {
			c.events <- fsmEvent{EvEOFStdin, nil}
			return
		}
	}
}

func (c *Client) readPTY(p *pane.Pane) {
	buf := make([]byte, 65536)
	for {
		n, err := p.Master.Read(buf)
		if n > 0 {
			cp := append([]byte(nil), buf[:n]...)
			c.events <- fsmEvent{EvPTYRead, ptyReadData{p, cp}}
		}
		if err != nil {
			c.events <- fsmEvent{EvEOFPTY, p}
			return
		}
	}
}

// watchServer notices the daemon closing the connection (session fully
// exited server-side), matching client_loop's server_fd readability
// check in original_source/src/client/client.c.
func (c *Client) watchServer() {
	buf := make([]byte, 1)
	for {
		if _, err := c.conn.Read(buf); err != nil {
			c.events <- fsmEvent{EvEOFPTY, nil}
			return
		}
	}
}

// --- FSM actions ---

func (c *Client) actEnableRawMode(ev Event, data any) {
	st, err := term.MakeRaw(c.stdinFD)
	if err != nil {
		c.log.Errorf("client: raw mode: %v", err)
		return
	}
	c.origTerm = st
}

func (c *Client) restoreTerminal() {
	fmt.Fprint(os.Stdout, "\033[?1049l")
	if c.origTerm != nil {
		term.Restore(c.stdinFD, c.origTerm)
	}
}

func (c *Client) actChildExit(ev Event, data any) {
	c.restoreTerminal()
}

func (c *Client) actPTYRead(ev Event, data any) {
	d := data.(ptyReadData)
	d.pane.Parser.Write(d.buf)
	d.pane.CX, d.pane.CY = d.pane.Parser.Cursor()
	c.renderPane(d.pane)
	c.renderer.RenderStatusBar(c.rows, c.cols, c.window.Name, c.historyMarker(), Version)
	c.placeCursor()
}

func (c *Client) actStdinRead(ev Event, data any) {
	buf := data.([]byte)
	active := c.window.Active()
	for _, b := range buf {
		c.handleStdinByte(active, b)
		active = c.window.Active() // a keybind action may change focus
	}
}

func (c *Client) actDetach(ev Event, data any) {
	for _, p := range c.window.Panes() {
		blob := p.Grid.Serialize(p.ID, p.CX, p.CY)
		wire.WriteMessage(c.conn, wire.GridSave, blob)
	}
	wire.WriteMessage(c.conn, wire.Detach, nil)
	c.restoreTerminal()
}

func (c *Client) actToggleSyncInput(ev Event, data any) {
	c.syncInput = !c.syncInput
}

func (c *Client) historyMarker() string {
	if p := c.window.Active(); p != nil && p.Grid.ScrollOffset > 0 {
		return c.cat.T(i18n.StatusHistory)
	}
	return ""
}

func (c *Client) renderPane(p *pane.Pane) {
	c.renderer.RenderPane(p)
	c.renderer.RenderBorders(c.window.Panes())
}

func (c *Client) redrawAll() {
	c.renderer.ClearScreen()
	for _, p := range c.window.Panes() {
		c.renderer.RenderPane(p)
	}
	c.renderer.RenderBorders(c.window.Panes())
	c.renderer.RenderStatusBar(c.rows, c.cols, c.window.Name, c.historyMarker(), Version)
	c.placeCursor()
}

func (c *Client) placeCursor() {
	p := c.window.Active()
	if p == nil || p.Grid.ScrollOffset > 0 {
		return
	}
	fmt.Fprintf(os.Stdout, "\033[%d;%dH", p.Geom.YOff+p.CY+1, p.Geom.XOff+p.CX+1)
}

func resizePTY(p *pane.Pane) {
	pty.Setsize(p.Master, &pty.Winsize{Rows: uint16(p.Geom.SY), Cols: uint16(p.Geom.SX)})
}
