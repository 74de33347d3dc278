// Package server implements the session/pane daemon (spec.md §4.E):
// socket listener, per-client admission, session registry, and
// signal-driven child reaping.
//
// The original is a single OS thread blocked in select() over the listen
// fd and every admitted client fd. Go has no portable select() over
// arbitrary fds without cgo, so this adaptation keeps the single-threaded
// *semantics* — exactly one goroutine ever mutates the session registry,
// and messages are processed to completion one at a time — while using
// one reader goroutine per connection to turn "fd is readable" into a
// channel send. All state mutation happens on the dispatch loop goroutine
// in Run; reader goroutines never touch shared state directly.
package server

import (
	"fmt"
	"net"
	"os"

	"github.com/LatosProject/muxkit/internal/list"
	"github.com/LatosProject/muxkit/internal/logx"
	"github.com/LatosProject/muxkit/internal/wire"
)

// MaxClients bounds the admitted-client array (spec.md §4.E "Admission").
const MaxClients = 64

// MaxPanes bounds panes per session (spec.md §4.E "Pane creation").
const MaxPanes = 64

// message is one framed message read off a connection, forwarded to the
// dispatch loop.
type message struct {
	conn net.Conn
	typ  wire.MsgType
	body []byte
	err  error
	done chan struct{}
}

// Server owns the session registry and the dispatch loop.
type Server struct {
	log *logx.Logger

	listener net.Listener
	sessions *list.List[*Session]
	nextID   int

	clients   map[net.Conn]*clientSlot
	incoming  chan message
	closed    chan net.Conn
	accepted  chan net.Conn
	sigchld   chan struct{}
	stop      chan struct{}
}

type clientSlot struct {
	session *Session // nil until a session-bearing message arrives
}

// New constructs an un-started Server.
func New(log *logx.Logger) *Server {
	return &Server{
		log:      log,
		sessions: list.New[*Session](),
		clients:  make(map[net.Conn]*clientSlot),
		incoming: make(chan message, 64),
		closed:   make(chan net.Conn, 64),
		accepted: make(chan net.Conn, MaxClients),
		sigchld:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

// Run listens on socketPath and drives the dispatch loop until Stop is
// called or the listener errors.
func (s *Server) Run(socketPath string) error {
	os.Remove(socketPath)
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", socketPath, err)
	}
	if err := os.Chmod(socketPath, 0700); err != nil {
		ln.Close()
		return fmt.Errorf("server: chmod %s: %w", socketPath, err)
	}
	s.listener = ln
	s.installSignalHandling()

	go s.acceptLoop()
	s.dispatchLoop()
	return nil
}

// Stop terminates the dispatch loop and closes the listener.
func (s *Server) Stop() {
	close(s.stop)
	if s.listener != nil {
		s.listener.Close()
	}
}

// acceptLoop only turns "a connection arrived" into a channel send — it
// never touches s.clients itself, so the registry stays mutated by the
// dispatch goroutine alone (see the package doc).
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		select {
		case s.accepted <- conn:
		case <-s.stop:
			conn.Close()
			return
		}
	}
}

// admit records a newly accepted connection and starts its reader.
// Only called from dispatchLoop.
func (s *Server) admit(conn net.Conn) {
	if len(s.clients) >= MaxClients {
		conn.Close()
		return
	}
	s.clients[conn] = &clientSlot{}
	go s.readLoop(conn)
}

// readLoop is the per-connection reader: it turns "message available"
// into a channel send, matching spec.md §5's "within one connection,
// messages are strictly ordered and each message is processed to
// completion before the next is read".
func (s *Server) readLoop(conn net.Conn) {
	// VERSION handshake is first in each direction.
	typ, body, err := wire.ReadMessage(conn)
	if err != nil || typ != wire.Version || len(body) != 4 || wire.GetUint32(body) != wire.ProtocolVersion {
		s.closed <- conn
		conn.Close()
		return
	}
	wire.WriteMessage(conn, wire.Version, wire.PutUint32(wire.ProtocolVersion))

	for {
		typ, body, err := wire.ReadMessage(conn)
		if err != nil {
			s.incoming <- message{conn: conn, err: err}
			return
		}
		done := make(chan struct{})
		s.incoming <- message{conn: conn, typ: typ, body: body, done: done}
		// Ordering guarantee: wait for the dispatcher to finish this
		// message before reading the next one off the wire.
		select {
		case <-done:
		case <-s.stop:
			return
		}
	}
}

func (s *Server) dispatchLoop() {
	for {
		select {
		case <-s.stop:
			return
		case conn := <-s.accepted:
			s.admit(conn)
		case m := <-s.incoming:
			if m.err != nil {
				s.onConnError(m.conn)
				continue
			}
			s.handle(m.conn, m.typ, m.body)
			close(m.done)
		case <-s.sigchld:
			s.reapChildren()
		}
		s.sweepDetached()
	}
}

func (s *Server) onConnError(conn net.Conn) {
	delete(s.clients, conn)
	conn.Close()
	// A connection error while attached marks the owning session
	// detached rather than destroying it (spec.md §3 "Lifecycles").
	s.sessions.Each(func(e *list.Element[*Session]) {
		if e.Value.conn == conn {
			e.Value.conn = nil
			e.Value.detached = true
		}
	})
}

// sweepDetached implements event-loop step 4: any session whose client
// fd is still admitted but whose Session.detached flag is set has its
// slot cleared (spec.md §4.E).
func (s *Server) sweepDetached() {
	s.sessions.Each(func(e *list.Element[*Session]) {
		sess := e.Value
		if sess.detached && sess.conn != nil {
			conn := sess.conn
			delete(s.clients, conn)
			conn.Close()
			sess.conn = nil
		}
	})
}

// sessionFor returns the session bound to conn, creating one (per
// spec.md §4.E "Session binding") if this is the first session-bearing
// message on the connection.
func (s *Server) sessionFor(conn net.Conn) *Session {
	slot, ok := s.clients[conn]
	if !ok {
		slot = &clientSlot{}
		s.clients[conn] = slot
	}
	if slot.session != nil {
		return slot.session
	}
	sess := newSession(s.nextID)
	s.nextID++
	sess.conn = conn
	s.sessions.PushBack(sess)
	slot.session = sess
	return sess
}

func (s *Server) findSession(id int) *Session {
	var found *Session
	s.sessions.Each(func(e *list.Element[*Session]) {
		if e.Value.ID == id {
			found = e.Value
		}
	})
	return found
}

func (s *Server) removeSession(sess *Session) {
	s.sessions.EachSafe(func(e *list.Element[*Session]) {
		if e.Value == sess {
			s.sessions.Remove(e)
		}
	})
}
