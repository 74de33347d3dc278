package server

import (
	"bytes"
	"net"
	"testing"

	"github.com/LatosProject/muxkit/internal/logx"
	"github.com/LatosProject/muxkit/internal/wire"
)

// fakeConn is a minimal net.Conn stand-in; the registry tests below never
// perform real I/O through it, only use it as a map/identity key.
type fakeConn struct{ net.Conn }

func newTestServer() *Server {
	return New(logx.New("test", ""))
}

// Invariant 8: session id monotonicity — new sessions receive ids
// strictly greater than all prior ones, even across removal.
func TestSessionIDMonotonic(t *testing.T) {
	s := newTestServer()
	c1, c2, c3 := &fakeConn{}, &fakeConn{}, &fakeConn{}

	sess1 := s.sessionFor(c1)
	sess2 := s.sessionFor(c2)
	if sess2.ID <= sess1.ID {
		t.Fatalf("session ids not increasing: %d then %d", sess1.ID, sess2.ID)
	}
	s.removeSession(sess1)
	sess3 := s.sessionFor(c3)
	if sess3.ID <= sess2.ID {
		t.Fatalf("id recycled after removal: got %d, want > %d", sess3.ID, sess2.ID)
	}
}

func TestSessionForIsIdempotentPerConn(t *testing.T) {
	s := newTestServer()
	c := &fakeConn{}
	a := s.sessionFor(c)
	b := s.sessionFor(c)
	if a != b {
		t.Fatalf("sessionFor returned different sessions for the same conn")
	}
}

// S5: attach to a nonexistent session id replies pane_count=0.
func TestDetachAttachUnknownSessionZeroPanes(t *testing.T) {
	s := newTestServer()
	sess := s.findSession(42)
	if sess != nil {
		t.Fatalf("expected no session with id 42")
	}
	conn := &recordConn{}
	s.handleDetach(conn, wire.PutUint32(42))
	typ, body, err := wire.ReadMessage(&conn.out)
	if err != nil || typ != wire.Detach || len(body) != 4 || wire.GetUint32(body) != 0 {
		t.Fatalf("attach reply = (%v, %v, %v), want DETACH with pane_count 0", typ, body, err)
	}
}

// recordConn captures everything written to it; reads are not used.
type recordConn struct {
	net.Conn
	out bytes.Buffer
}

func (c *recordConn) Write(b []byte) (int, error) { return c.out.Write(b) }

func TestFindSessionAfterRemove(t *testing.T) {
	s := newTestServer()
	c := &fakeConn{}
	sess := s.sessionFor(c)
	s.removeSession(sess)
	if s.findSession(sess.ID) != nil {
		t.Fatalf("removed session still findable")
	}
}
