package server

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/LatosProject/muxkit/internal/sockpath"
	"github.com/LatosProject/muxkit/internal/wire"
)

// EnsureRunning fulfils spec.md §4.E "Daemonization" in an idiomatic Go
// shape: the original double-forks the running process so the same
// binary image becomes both foreground attacher and background daemon.
// Go cannot safely fork the runtime this way, so the equivalent here is
// the teacher's ensureDaemon/pingDaemon pattern: re-exec the daemon
// binary detached (Setsid) and poll until it accepts connections. The
// lockfile in internal/sockpath serializes the race where two clients
// simultaneously find no server and both try to start one.
func EnsureRunning(daemonBinary, socketPath string) (net.Conn, error) {
	if conn, err := dial(socketPath); err == nil {
		return conn, nil
	}

	lock, ok, err := sockpath.TryAcquire(socketPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another process is starting the daemon; just wait for it.
		return waitAndDial(socketPath, 30, 100*time.Millisecond)
	}
	defer lock.Release()

	if conn, err := dial(socketPath); err == nil {
		return conn, nil
	}

	cmd := exec.Command(daemonBinary, "-sock", socketPath)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err == nil {
		cmd.Stdin, cmd.Stdout, cmd.Stderr = devnull, devnull, devnull
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("daemonize: start %s: %w", daemonBinary, err)
	}
	go cmd.Wait() // reap the detached process's own exit; daemon outlives us

	return waitAndDial(socketPath, 30, 100*time.Millisecond)
}

func waitAndDial(socketPath string, attempts int, interval time.Duration) (net.Conn, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		conn, err := dial(socketPath)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		time.Sleep(interval)
	}
	return nil, fmt.Errorf("daemonize: daemon did not come up: %w", lastErr)
}

// dial connects and performs the VERSION handshake (spec.md §4.D).
func dial(socketPath string) (net.Conn, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, err
	}
	if err := wire.WriteMessage(conn, wire.Version, wire.PutUint32(wire.ProtocolVersion)); err != nil {
		conn.Close()
		return nil, err
	}
	typ, body, err := wire.ReadMessage(conn)
	if err != nil || typ != wire.Version || len(body) != 4 || wire.GetUint32(body) != wire.ProtocolVersion {
		conn.Close()
		return nil, fmt.Errorf("daemonize: protocol version mismatch")
	}
	return conn, nil
}
