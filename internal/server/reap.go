package server

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/LatosProject/muxkit/internal/list"
)

// installSignalHandling starts the signal-forwarding goroutine. The
// actual handler work (spec.md §5 "minimal handlers that set an
// atomic-safe flag") is just "wake the dispatch loop"; reapChildren does
// the real work on the single dispatch goroutine.
func (s *Server) installSignalHandling() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGCHLD)
	go func() {
		for {
			select {
			case <-ch:
				select {
				case s.sigchld <- struct{}{}:
				default:
				}
			case <-s.stop:
				signal.Stop(ch)
				return
			}
		}
	}()
}

// reapChildren implements event-loop step 5 (spec.md §4.E): waitpid loop
// reaping every exited child, closing the owning pane's master fd and
// marking its pid slot -1; when all of a session's panes have exited,
// fully remove the session.
func (s *Server) reapChildren() {
	for {
		var ws syscall.WaitStatus
		pid, err := syscall.Wait4(-1, &ws, syscall.WNOHANG, nil)
		if err != nil || pid <= 0 {
			return
		}
		s.reapPid(pid)
	}
}

func (s *Server) reapPid(pid int) {
	var toRemove []*Session
	s.sessions.Each(func(e *list.Element[*Session]) {
		sess := e.Value
		for _, p := range sess.Window.Panes() {
			if p.Pid == pid {
				if p.Master != nil {
					p.Master.Close()
				}
				p.Pid = -1
			}
		}
		// A session that never got past COMMAND (e.g. a RESIZE arriving
		// before its first pane exists) has zero live panes too; only
		// sweep sessions that actually had one and lost it.
		if sess.hadPane && sess.LivePaneCount() == 0 && !sess.fullyExited {
			sess.fullyExited = true
			if sess.conn != nil {
				sess.conn.Close()
				delete(s.clients, sess.conn)
				sess.conn = nil
			}
			toRemove = append(toRemove, sess)
		}
	})
	for _, sess := range toRemove {
		s.removeSession(sess)
	}
}
