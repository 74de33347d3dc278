// Package wire implements the client↔server message framing (spec.md
// §4.D): a 16-byte header (signed 32-bit type, 64-bit payload length)
// followed by that many payload bytes, plus the out-of-band file
// descriptor passing used to hand PTY masters across the socket.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MsgType enumerates the wire message catalog. Only the types the core
// uses are normative; IDENTIFY/READ/WRITE are reserved numeric codes with
// no implemented behavior (spec.md §9 open question).
type MsgType int32

const (
	Version MsgType = iota + 1
	ListSessions
	DetachKill
	Command
	Resize
	Detach
	GridSave
	Exited

	// Reserved: declared for protocol-number stability, never dispatched.
	Identify
	Read
	Write
)

func (t MsgType) String() string {
	switch t {
	case Version:
		return "VERSION"
	case ListSessions:
		return "LIST_SESSIONS"
	case DetachKill:
		return "DETACHKILL"
	case Command:
		return "COMMAND"
	case Resize:
		return "RESIZE"
	case Detach:
		return "DETACH"
	case GridSave:
		return "GRID_SAVE"
	case Exited:
		return "EXITED"
	case Identify:
		return "IDENTIFY"
	case Read:
		return "READ"
	case Write:
		return "WRITE"
	default:
		return fmt.Sprintf("MsgType(%d)", int32(t))
	}
}

// ProtocolVersion is the 4-byte payload exchanged as the first message in
// each direction; a mismatch is a protocol-level fatal error.
const ProtocolVersion = 1

const HeaderSize = 16

// WriteMessage writes one framed message: header then payload.
func WriteMessage(w io.Writer, typ MsgType, payload []byte) error {
	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(typ))
	binary.LittleEndian.PutUint64(hdr[8:16], uint64(len(payload)))
	if err := writeFull(w, hdr[:]); err != nil {
		return fmt.Errorf("wire: write header: %w", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if err := writeFull(w, payload); err != nil {
		return fmt.Errorf("wire: write payload: %w", err)
	}
	return nil
}

// ReadMessage reads one framed message's header and payload.
func ReadMessage(r io.Reader) (MsgType, []byte, error) {
	var hdr [HeaderSize]byte
	if err := readFull(r, hdr[:]); err != nil {
		return 0, nil, fmt.Errorf("wire: read header: %w", err)
	}
	typ := MsgType(binary.LittleEndian.Uint32(hdr[0:4]))
	length := binary.LittleEndian.Uint64(hdr[8:16])
	if length == 0 {
		return typ, nil, nil
	}
	payload := make([]byte, length)
	if err := readFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("wire: read payload: %w", err)
	}
	return typ, payload, nil
}

// writeFull loops on short writes, matching the "short/interrupted I/O
// transparently retried" policy of spec.md §7.
func writeFull(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}

// PutUint32 / PutUint64 expose the header's little-endian encoding to
// callers that build fixed-size sub-payloads (session ids, counts).
func PutUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func PutUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func GetUint32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func GetUint64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }
