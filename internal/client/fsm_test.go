package client

import (
	"io"
	"os"
	"testing"

	"github.com/LatosProject/muxkit/internal/logx"
	"github.com/LatosProject/muxkit/internal/pane"
)

// Invariant 5: FSM determinism — every listed (state, event) pair takes
// exactly its recorded transition. Only action-less transitions are
// exercised here; the others touch the terminal/network and are not
// dispatched by this test.
func TestFSMTransitionsMatchTable(t *testing.T) {
	for _, tr := range table {
		if tr.act != nil {
			continue
		}
		c := &Client{state: tr.state, log: logx.New("test", ""), window: pane.NewWindow("w")}
		c.Dispatch(tr.event, nil)
		if c.state != tr.next {
			t.Fatalf("(%v,%v): state = %v, want %v", tr.state, tr.event, c.state, tr.next)
		}
	}
}

func TestFSMUnhandledPairLeavesStateUnchanged(t *testing.T) {
	c := &Client{state: Exiting, log: logx.New("test", ""), window: pane.NewWindow("w")}
	c.Dispatch(EvWinch, nil)
	if c.state != Exiting {
		t.Fatalf("unhandled (EXITING,WINCH) changed state to %v", c.state)
	}
}

// Invariant 6: prefix-key idempotence — 0x02 0x02 with no scrollback
// active writes exactly one 0x02 to the active pane and clears the flag.
func TestPrefixIdempotence(t *testing.T) {
	c := &Client{log: logx.New("test", ""), window: pane.NewWindow("w")}
	p := c.window.Create(pane.Geometry{SX: 10, SY: 5})
	c.window.SetActive(p)
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	p.SetMasterFD(w, -1)

	c.handleStdinByte(p, 0x02)
	if !c.ctrlBPressed {
		t.Fatalf("expected ctrlBPressed after first 0x02")
	}
	c.handleStdinByte(p, 0x02)
	if c.ctrlBPressed {
		t.Fatalf("expected ctrlBPressed cleared after second 0x02")
	}
	w.Close()
	got, _ := io.ReadAll(r)
	if string(got) != "\x02" {
		t.Fatalf("pane received %q, want exactly one 0x02", got)
	}
}

func TestPrefixUnknownKeyFallsThroughAsTwoBytes(t *testing.T) {
	c := &Client{log: logx.New("test", ""), window: pane.NewWindow("w")}
	p := c.window.Create(pane.Geometry{SX: 10, SY: 5})
	c.window.SetActive(p)
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	p.SetMasterFD(w, -1)

	c.handleStdinByte(p, 0x02)
	c.handleStdinByte(p, 'z') // not in Default() binds
	if c.ctrlBPressed {
		t.Fatalf("expected ctrlBPressed cleared after dispatch attempt")
	}
	w.Close()
	got, _ := io.ReadAll(r)
	if string(got) != "\x02z" {
		t.Fatalf("pane received %q, want 0x02 followed by 'z'", got)
	}
}
