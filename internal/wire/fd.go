package wire

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// SendFD passes fd as ancillary data (SCM_RIGHTS) over conn, accompanied
// by a 1-byte filler payload so the receiver has ordinary data to read
// alongside the control message (spec.md §4.D "FD passing").
func SendFD(conn *net.UnixConn, fd int) error {
	rights := unix.UnixRights(fd)
	n, oobn, err := conn.WriteMsgUnix([]byte{0}, rights, nil)
	if err != nil {
		return fmt.Errorf("wire: send fd: %w", err)
	}
	if n != 1 || oobn != len(rights) {
		return fmt.Errorf("wire: send fd: short write (n=%d oobn=%d)", n, oobn)
	}
	return nil
}

// RecvFD reads one filler byte plus an ancillary SCM_RIGHTS message
// carrying exactly one file descriptor.
func RecvFD(conn *net.UnixConn) (int, error) {
	buf := make([]byte, 1)
	oob := make([]byte, unix.CmsgSpace(4))
	_, oobn, _, _, err := conn.ReadMsgUnix(buf, oob)
	if err != nil {
		return -1, fmt.Errorf("wire: recv fd: %w", err)
	}
	msgs, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return -1, fmt.Errorf("wire: parse control message: %w", err)
	}
	if len(msgs) == 0 {
		return -1, fmt.Errorf("wire: recv fd: no control message")
	}
	fds, err := unix.ParseUnixRights(&msgs[0])
	if err != nil {
		return -1, fmt.Errorf("wire: parse unix rights: %w", err)
	}
	if len(fds) != 1 {
		return -1, fmt.Errorf("wire: recv fd: expected 1 fd, got %d", len(fds))
	}
	return fds[0], nil
}
