package client

import (
	"encoding/binary"
	"fmt"
	"net"
	"os"

	"github.com/creack/pty"

	"github.com/LatosProject/muxkit/internal/config"
	"github.com/LatosProject/muxkit/internal/grid"
	"github.com/LatosProject/muxkit/internal/logx"
	"github.com/LatosProject/muxkit/internal/pane"
	"github.com/LatosProject/muxkit/internal/wire"
)

func sendResize(conn net.Conn, rows, cols int) error {
	body := make([]byte, 4)
	binary.LittleEndian.PutUint16(body[0:2], uint16(rows))
	binary.LittleEndian.PutUint16(body[2:4], uint16(cols))
	return wire.WriteMessage(conn, wire.Resize, body)
}

// NewSession implements the "bare invocation: new session, attach
// immediately" path of spec.md §6: tell the server the terminal size,
// ask for one pane, and bind it as pane 0 of a fresh window.
func NewSession(conn *net.UnixConn, log *logx.Logger, binds config.Keybinds, rows, cols int) (*Client, error) {
	if err := sendResize(conn, rows, cols); err != nil {
		return nil, fmt.Errorf("client: resize: %w", err)
	}
	if err := wire.WriteMessage(conn, wire.Command, []byte("new-session")); err != nil {
		return nil, fmt.Errorf("client: new-session: %w", err)
	}
	fd, err := wire.RecvFD(conn)
	if err != nil {
		return nil, fmt.Errorf("client: recv fd: %w", err)
	}

	window := pane.NewWindow("new")
	geom := pane.ComputeLayout(cols, rows, 1)[0]
	p := window.Create(geom)
	p.SetMasterFD(os.NewFile(uintptr(fd), "muxkit-pty"), -1)

	return New(conn, log, binds, window, rows, cols), nil
}

// AttachExisting implements spec.md §4.F "Attach ceremony" for `-s ID`:
// send DETACH with the session id, read back how many panes and grid
// snapshots the server holds, and rebuild the window from them. Returns
// (nil, nil) on the documented S5 case (pane_count==0): attach failed,
// caller prints the localized message and exits 0.
//
// The window variable is declared exactly once at the top of the
// function, never re-declared inside a conditional branch — the original
// leaked pane_create's window argument by shadowing it that way
// (spec.md §9 design note), so this hoists it instead.
func AttachExisting(conn *net.UnixConn, log *logx.Logger, binds config.Keybinds, sessionID, rows, cols int) (*Client, error) {
	body := make([]byte, 4)
	binary.LittleEndian.PutUint32(body, uint32(sessionID))
	if err := wire.WriteMessage(conn, wire.Detach, body); err != nil {
		return nil, fmt.Errorf("client: attach: %w", err)
	}

	typ, resp, err := wire.ReadMessage(conn)
	if err != nil || typ != wire.Detach || len(resp) < 4 {
		return nil, fmt.Errorf("client: attach: malformed reply")
	}
	paneCount := int(binary.LittleEndian.Uint32(resp))
	if paneCount == 0 {
		return nil, nil
	}

	window := pane.NewWindow("attached")
	geoms := pane.ComputeLayout(cols, rows, paneCount)
	receivedPanes := make([]*pane.Pane, 0, paneCount)
	for i := 0; i < paneCount; i++ {
		fd, err := wire.RecvFD(conn)
		if err != nil {
			return nil, fmt.Errorf("client: attach: recv fd %d: %w", i, err)
		}
		p := window.Create(geoms[i])
		p.SetMasterFD(os.NewFile(uintptr(fd), "muxkit-pty"), -1)
		pty.Setsize(p.Master, &pty.Winsize{Rows: uint16(geoms[i].SY), Cols: uint16(geoms[i].SX)})
		receivedPanes = append(receivedPanes, p)
	}

	typ, countBody, err := wire.ReadMessage(conn)
	if err != nil || typ != wire.Detach || len(countBody) < 4 {
		return nil, fmt.Errorf("client: attach: malformed grid count")
	}
	gridCount := int(binary.LittleEndian.Uint32(countBody))

	for i := 0; i < gridCount; i++ {
		typ, gridBody, err := wire.ReadMessage(conn)
		if err != nil || typ != wire.GridSave || len(gridBody) == 0 {
			return nil, fmt.Errorf("client: attach: malformed grid %d", i)
		}
		g, paneID, cx, cy, err := grid.Deserialize(gridBody)
		if err != nil {
			return nil, fmt.Errorf("client: attach: deserialize grid %d: %w", i, err)
		}
		for _, p := range receivedPanes {
			if p.ID == paneID {
				p.Grid = g
				p.CX, p.CY = cx, cy
				p.Parser.ReplayGrid(g, cx, cy)
				break
			}
		}
	}

	if len(receivedPanes) > 0 {
		window.SetActive(receivedPanes[0])
	}
	return New(conn, log, binds, window, rows, cols), nil
}
