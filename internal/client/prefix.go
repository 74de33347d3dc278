package client

import (
	"os/exec"
	"strings"

	"github.com/LatosProject/muxkit/internal/pane"
)

// handleStdinByte implements spec.md §4.F "Prefix-key dispatch" for a
// single input byte, including the modal scrollback-dismissal rule.
// ctrlBPressed is a Client field rather than a C `static` local, but it
// is the same "persists across calls" flag the spec describes.
func (c *Client) handleStdinByte(active *pane.Pane, b byte) {
	if b == 0x02 { // Ctrl-B
		if c.ctrlBPressed {
			c.writeToPane(active, []byte{0x02})
			c.ctrlBPressed = false
			return
		}
		c.ctrlBPressed = true
		return
	}

	if c.ctrlBPressed {
		c.ctrlBPressed = false
		key := strings.ToLower(string(rune(b)))
		if act, ok := c.binds[key]; ok {
			c.runAction(act.Name, act.Args)
			return
		}
		c.writeToPane(active, []byte{0x02, b})
		return
	}

	if active != nil && active.Grid.ScrollOffset > 0 {
		active.Grid.ScrollOffset = 0
		c.renderPane(active)
		if b == 0x1b || b == 'q' {
			return // swallowed: dismiss scrollback only
		}
	}
	c.writeToPane(active, []byte{b})
}

// writeToPane forwards bytes to the active pane's PTY, or to every pane
// when sync-input mode is on (spec.md §9 open question: exposed behind
// the already-defined EV_SYNC_INPUT event, no new semantics invented).
func (c *Client) writeToPane(active *pane.Pane, data []byte) {
	if c.syncInput {
		for _, p := range c.window.Panes() {
			if p.Master != nil {
				p.Master.Write(data)
			}
		}
		return
	}
	if active != nil && active.Master != nil {
		active.Master.Write(data)
	}
}

// runAction executes one keybind action by name (spec.md §9 "flat table
// of records, not deep type hierarchies").
func (c *Client) runAction(name string, args []string) {
	switch name {
	case "detach":
		c.Dispatch(EvDetached, nil)
	case "split":
		c.Dispatch(EvPaneSplit, nil)
	case "next-pane":
		c.window.NextPane()
		c.redrawAll()
	case "scroll-up":
		if p := c.window.Active(); p != nil {
			p.Grid.ScrollUp(p.Geom.SY)
			c.renderPane(p)
			c.renderer.RenderStatusBar(c.rows, c.cols, c.window.Name, c.historyMarker(), Version)
		}
	case "scroll-down":
		if p := c.window.Active(); p != nil {
			p.Grid.ScrollDown(p.Geom.SY)
			c.renderPane(p)
			c.renderer.RenderStatusBar(c.rows, c.cols, c.window.Name, c.historyMarker(), Version)
		}
	case "sync-input":
		c.Dispatch(EvSyncInput, nil)
	case "exec":
		if len(args) > 0 {
			cmd := exec.Command(args[0], args[1:]...)
			cmd.Start() // fire-and-forget; the keybind does not wait for it
		}
	default:
		c.log.Warnf("client: unknown keybind action %q", name)
	}
}
