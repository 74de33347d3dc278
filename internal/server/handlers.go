package server

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/LatosProject/muxkit/internal/i18n"
	"github.com/LatosProject/muxkit/internal/pane"
	"github.com/LatosProject/muxkit/internal/spawn"
	"github.com/LatosProject/muxkit/internal/wire"
)

// handle fulfils "the obvious fulfillment of §4.D" for one message
// (spec.md §4.E "Per-message semantics of server_receive").
func (s *Server) handle(conn net.Conn, typ wire.MsgType, body []byte) {
	switch typ {
	case wire.ListSessions:
		s.handleListSessions(conn)
	case wire.DetachKill:
		s.handleDetachKill(conn, body)
	case wire.Command:
		s.handleCommand(conn, body)
	case wire.Resize:
		s.handleResize(conn, body)
	case wire.Detach:
		s.handleDetach(conn, body)
	case wire.GridSave:
		s.handleGridSave(conn, body)
	case wire.Exited:
		s.onConnError(conn)
	default:
		s.log.Warnf("server: unhandled message type %v", typ)
	}
}

func (s *Server) handleListSessions(conn net.Conn) {
	cat := i18n.New(i18n.Detect())
	var lines []string
	for _, sess := range s.sessionSlice() {
		lines = append(lines, fmt.Sprintf(cat.T(i18n.SessionFormat), sess.ID, sess.LivePaneCount()))
	}
	text := cat.T(i18n.NoSessions)
	if len(lines) > 0 {
		text = strings.Join(lines, "\n")
	}
	wire.WriteMessage(conn, wire.ListSessions, []byte(text))
}

func (s *Server) handleDetachKill(conn net.Conn, body []byte) {
	cat := i18n.New(i18n.Detect())
	if len(body) < 4 {
		return
	}
	id := int(wire.GetUint32(body[0:4]))
	sess := s.findSession(id)
	status := cat.T(i18n.SessionNotFound)
	if sess != nil {
		for _, p := range sess.Window.Panes() {
			if p.Pid > 0 {
				syscall.Kill(-p.Pid, syscall.SIGKILL)
			}
			if p.Master != nil {
				p.Master.Close()
			}
		}
		s.removeSession(sess)
		status = cat.T(i18n.SessionKilled)
	}
	wire.WriteMessage(conn, wire.DetachKill, []byte(status))
}

// handleCommand implements "new-session"/"pane-split": allocate a PTY,
// fork a shell, and send the master fd back via ancillary data
// (spec.md §4.E "Pane creation").
func (s *Server) handleCommand(conn net.Conn, body []byte) {
	verb := strings.TrimRight(string(body), "\x00")
	sess := s.sessionFor(conn)
	if sess.Window.Count() >= MaxPanes {
		s.log.Warnf("server: session %d at MaxPanes, refusing %s", sess.ID, verb)
		return
	}

	rows, cols := sess.Rows, sess.Cols
	if rows == 0 {
		rows = 24
	}
	if cols == 0 {
		cols = 80
	}
	n := sess.Window.Count() + 1
	geoms := pane.ComputeLayout(cols, rows, n)

	sh, err := spawn.Start(geoms[n-1].SY, geoms[n-1].SX, 0)
	if err != nil {
		s.log.Errorf("server: spawn shell: %v", err)
		return
	}

	p := sess.Window.Create(geoms[n-1])
	p.SetMasterFD(sh.Master, sh.Pid())
	sess.hadPane = true

	uc, ok := conn.(*net.UnixConn)
	if !ok {
		s.log.Errorf("server: connection is not a unix socket, cannot pass fd")
		return
	}
	fd, err := fdOf(sh.Master)
	if err != nil {
		s.log.Errorf("server: dup master fd: %v", err)
		return
	}
	if err := wireSendFD(uc, fd); err != nil {
		s.log.Errorf("server: send fd: %v", err)
	}
}

func (s *Server) handleResize(conn net.Conn, body []byte) {
	if len(body) < 4 {
		return
	}
	sess := s.sessionFor(conn)
	sess.Rows = int(binary.LittleEndian.Uint16(body[0:2]))
	sess.Cols = int(binary.LittleEndian.Uint16(body[2:4]))
}

// handleDetach implements both forms from spec.md §4.D: empty payload
// detaches the sender; a 4-byte session id attaches to that session.
func (s *Server) handleDetach(conn net.Conn, body []byte) {
	if len(body) == 0 {
		sess := s.sessionFor(conn)
		sess.detached = true
		return
	}
	id := int(wire.GetUint32(body[0:4]))
	sess := s.findSession(id)
	uc, _ := conn.(*net.UnixConn)

	if sess == nil || !sess.detached {
		wire.WriteMessage(conn, wire.Detach, wire.PutUint32(0))
		return
	}

	// Only count panes we will actually send an fd for, or the client's
	// RecvFD loop (driven by this count) desyncs against the fds that
	// actually arrive.
	var sendable []*pane.Pane
	if uc != nil {
		for _, p := range sess.Window.Panes() {
			if p.Master != nil {
				sendable = append(sendable, p)
			}
		}
	}
	wire.WriteMessage(conn, wire.Detach, wire.PutUint32(uint32(len(sendable))))
	for _, p := range sendable {
		if fd, err := fdOf(p.Master); err == nil {
			wireSendFD(uc, fd)
		}
	}
	wire.WriteMessage(conn, wire.Detach, wire.PutUint32(uint32(len(sess.snapshots))))
	for paneID, blob := range sess.snapshots {
		wire.WriteMessage(conn, wire.GridSave, blob)
		delete(sess.snapshots, paneID)
	}

	sess.conn = conn
	sess.detached = false
	if slot, ok := s.clients[conn]; ok {
		slot.session = sess
	}
}

// handleGridSave stores the uploaded snapshot for the originating pane
// (pane id is the first field of the grid header).
func (s *Server) handleGridSave(conn net.Conn, body []byte) {
	if len(body) < 4 {
		return
	}
	paneID := int(wire.GetUint32(body[0:4]))
	sess := s.sessionFor(conn)
	sess.snapshots[paneID] = append([]byte(nil), body...)
}

func (s *Server) sessionSlice() []*Session { return s.sessions.Values() }

// fdOf duplicates f's underlying fd so the server keeps its own copy
// after handing one to the client (spec.md §9 "Ownership of passed fds").
func fdOf(f interface{ Fd() uintptr }) (int, error) {
	fd := int(f.Fd())
	dup, err := syscall.Dup(fd)
	if err != nil {
		return -1, err
	}
	return dup, nil
}

func wireSendFD(conn *net.UnixConn, fd int) error {
	defer syscall.Close(fd)
	return wire.SendFD(conn, fd)
}
