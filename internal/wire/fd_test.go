package wire

import (
	"net"
	"os"
	"syscall"
	"testing"
)

// TestSendRecvFDRoundTrip passes a real fd (a temp file) across a loopback
// Unix socket pair and confirms the receiver can read back what the
// sender wrote through its original fd (spec.md §4.D "FD passing").
func TestSendRecvFDRoundTrip(t *testing.T) {
	tmp, err := os.CreateTemp("", "muxkit-fd-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmp.Name())
	const want = "hello from the passed fd"
	if _, err := tmp.WriteString(want); err != nil {
		t.Fatal(err)
	}

	server, client := socketPair(t)
	defer server.Close()
	defer client.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- SendFD(server, int(tmp.Fd())) }()

	fd, err := RecvFD(client)
	if err != nil {
		t.Fatalf("RecvFD: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("SendFD: %v", err)
	}

	f := os.NewFile(uintptr(fd), "received")
	defer f.Close()
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, len(want))
	if _, err := f.Read(buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != want {
		t.Fatalf("got %q, want %q", buf, want)
	}
}

// socketPair builds a connected pair of *net.UnixConn via socketpair(2),
// without needing a filesystem path.
func socketPair(t *testing.T) (*net.UnixConn, *net.UnixConn) {
	t.Helper()
	fds, err := syscall.Socketpair(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err != nil {
		t.Fatal(err)
	}
	a, err := fdToUnixConn(fds[0])
	if err != nil {
		t.Fatal(err)
	}
	b, err := fdToUnixConn(fds[1])
	if err != nil {
		t.Fatal(err)
	}
	return a, b
}

func fdToUnixConn(fd int) (*net.UnixConn, error) {
	f := os.NewFile(uintptr(fd), "socketpair")
	conn, err := net.FileConn(f)
	f.Close()
	if err != nil {
		return nil, err
	}
	return conn.(*net.UnixConn), nil
}
