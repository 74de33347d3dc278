package wire

import (
	"bytes"
	"testing"
)

func TestWriteReadMessageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMessage(&buf, Command, []byte("new-session\x00")); err != nil {
		t.Fatal(err)
	}
	typ, payload, err := ReadMessage(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if typ != Command {
		t.Fatalf("type = %v, want Command", typ)
	}
	if string(payload) != "new-session\x00" {
		t.Fatalf("payload = %q", payload)
	}
}

func TestEmptyPayloadMessage(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMessage(&buf, ListSessions, nil); err != nil {
		t.Fatal(err)
	}
	typ, payload, err := ReadMessage(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if typ != ListSessions || len(payload) != 0 {
		t.Fatalf("got type=%v payload=%v", typ, payload)
	}
}

func TestHeaderSizeIs16Bytes(t *testing.T) {
	var buf bytes.Buffer
	WriteMessage(&buf, Version, nil)
	if buf.Len() != HeaderSize {
		t.Fatalf("header-only message length = %d, want %d", buf.Len(), HeaderSize)
	}
}
