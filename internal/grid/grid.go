package grid

import (
	"encoding/binary"
	"fmt"
)

// DefaultHistorySize is the default Hmax used by pane_create.
const DefaultHistorySize = 1000

// Grid is a rectangular array of cells plus a circular scrollback history.
// It is owned by exactly one Pane.
type Grid struct {
	W, H  int
	cells []Cell // row-major, len == W*H

	Hmax          int
	historyCells  []Cell  // ring buffer, len == Hmax*W
	historyFlags  []uint8 // continuation flag per history row
	C             int     // monotonic write counter: total lines ever pushed
	ScrollOffset  int     // S, clamped to [0, min(C, Hmax)]
}

// New allocates a W×H grid, zero-initialized (blank cells), with history
// sized to hmax rows. hmax<=0 disables history (a grid with no scrollback).
func New(w, h, hmax int) *Grid {
	if hmax < 0 {
		hmax = 0
	}
	g := &Grid{W: w, H: h, Hmax: hmax}
	g.cells = make([]Cell, w*h)
	for i := range g.cells {
		g.cells[i] = Blank
	}
	if hmax > 0 {
		g.historyCells = make([]Cell, hmax*w)
		for i := range g.historyCells {
			g.historyCells[i] = Blank
		}
		g.historyFlags = make([]uint8, hmax)
	}
	return g
}

// Cell returns the live cell at (x,y).
func (g *Grid) Cell(x, y int) Cell { return g.cells[y*g.W+x] }

// SetCell writes the live cell at (x,y).
func (g *Grid) SetCell(x, y int, c Cell) { g.cells[y*g.W+x] = c }

// Row returns a slice view of live row y (length W).
func (g *Grid) Row(y int) []Cell { return g.cells[y*g.W : (y+1)*g.W] }

// HistoryCount is min(C, Hmax), the number of valid history rows.
func (g *Grid) HistoryCount() int {
	if g.Hmax == 0 {
		return 0
	}
	if g.C < g.Hmax {
		return g.C
	}
	return g.Hmax
}

// PushHistory writes cols cells and a continuation bit into history slot
// C mod Hmax and increments C. Cells beyond W are ignored; cells short of
// W are left as blanks (spec.md §4.B "Push to history").
func (g *Grid) PushHistory(cols []Cell, continuation bool) {
	if g.Hmax == 0 {
		return
	}
	slot := g.C % g.Hmax
	row := g.historyCells[slot*g.W : (slot+1)*g.W]
	for i := range row {
		if i < len(cols) {
			row[i] = cols[i]
		} else {
			row[i] = Blank
		}
	}
	var flag uint8
	if continuation {
		flag = 1
	}
	g.historyFlags[slot] = flag
	g.C++
}

// ScrollUp increases S by n, clamped to min(C, Hmax).
func (g *Grid) ScrollUp(n int) {
	g.ScrollOffset += n
	if max := g.HistoryCount(); g.ScrollOffset > max {
		g.ScrollOffset = max
	}
}

// ScrollDown decreases S by n, clamped at 0.
func (g *Grid) ScrollDown(n int) {
	g.ScrollOffset -= n
	if g.ScrollOffset < 0 {
		g.ScrollOffset = 0
	}
}

// GetDisplayLine resolves display row y per spec.md §4.B "Scroll offset".
// It returns (row, ok); ok is false for a blank out-of-scrollback row.
func (g *Grid) GetDisplayLine(y int) ([]Cell, bool) {
	if g.ScrollOffset == 0 {
		return g.Row(y), true
	}
	a := g.HistoryCount()
	h := a - g.ScrollOffset + y
	if h < 0 {
		return nil, false
	}
	if h >= a {
		return g.Row(h - a), true
	}
	var idx int
	if g.C <= g.Hmax {
		idx = h
	} else {
		idx = (g.C%g.Hmax + h) % g.Hmax
	}
	return g.historyCells[idx*g.W : (idx+1)*g.W], true
}

// Resize reallocates the live cells to (sx,sy), copying the top-left
// min(W,sx) x min(H,sy) region. History is untouched — reflow is a
// separate explicit call (ResizeHistory). Returns the clamped cursor.
func (g *Grid) Resize(sx, sy, cx, cy int) (newCx, newCy int) {
	next := make([]Cell, sx*sy)
	for i := range next {
		next[i] = Blank
	}
	copyW, copyH := minInt(g.W, sx), minInt(g.H, sy)
	for y := 0; y < copyH; y++ {
		srcRow := g.cells[y*g.W : y*g.W+copyW]
		copy(next[y*sx:y*sx+copyW], srcRow)
	}
	g.cells = next
	g.W, g.H = sx, sy
	if cx >= sx {
		cx = sx - 1
	}
	if cx < 0 {
		cx = 0
	}
	if cy >= sy {
		cy = sy - 1
	}
	if cy < 0 {
		cy = 0
	}
	return cx, cy
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// --- Binary serialization (spec.md §4.B "Binary serialization") ---

const headerWords = 8
const headerBytes = headerWords * 4

// Serialize packs (header, live cells, history rows in logical
// oldest-first order) into a single buffer.
func (g *Grid) Serialize(paneID, cx, cy int) []byte {
	stored := g.HistoryCount()
	buf := make([]byte, headerBytes+len(g.cells)*cellWire+stored*g.W*cellWire)
	putU32(buf[0:4], uint32(paneID))
	putU32(buf[4:8], uint32(cx))
	putU32(buf[8:12], uint32(cy))
	putU32(buf[12:16], uint32(g.W))
	putU32(buf[16:20], uint32(g.H))
	putU32(buf[20:24], uint32(g.Hmax))
	putU32(buf[24:28], uint32(g.C))
	putU32(buf[28:32], uint32(g.ScrollOffset))

	off := headerBytes
	for _, c := range g.cells {
		c.encode(buf[off : off+cellWire])
		off += cellWire
	}

	// Linearize the ring: oldest stored row is at C-stored, walking
	// forward mod Hmax, newest last.
	if stored > 0 {
		start := (g.C - stored) % g.Hmax
		if start < 0 {
			start += g.Hmax
		}
		for i := 0; i < stored; i++ {
			slot := (start + i) % g.Hmax
			row := g.historyCells[slot*g.W : (slot+1)*g.W]
			for _, c := range row {
				c.encode(buf[off : off+cellWire])
				off += cellWire
			}
		}
	}
	return buf
}

// Deserialize reconstructs a Grid (and the pane id / cursor it was saved
// with) from a Serialize buffer. C is reset to `stored` so indexing
// restarts from zero — the ring is no longer rotated.
func Deserialize(buf []byte) (g *Grid, paneID, cx, cy int, err error) {
	if len(buf) < headerBytes {
		return nil, 0, 0, 0, fmt.Errorf("grid: truncated header (%d bytes)", len(buf))
	}
	paneID = int(binary.LittleEndian.Uint32(buf[0:4]))
	cx = int(binary.LittleEndian.Uint32(buf[4:8]))
	cy = int(binary.LittleEndian.Uint32(buf[8:12]))
	w := int(binary.LittleEndian.Uint32(buf[12:16]))
	h := int(binary.LittleEndian.Uint32(buf[16:20]))
	hmax := int(binary.LittleEndian.Uint32(buf[20:24]))
	c := int(binary.LittleEndian.Uint32(buf[24:28]))
	_ = c
	s := int(binary.LittleEndian.Uint32(buf[28:32]))

	stored := hmax
	if c < hmax {
		stored = c
	}
	if hmax == 0 {
		stored = 0
	}
	want := headerBytes + w*h*cellWire + stored*w*cellWire
	if len(buf) < want {
		return nil, 0, 0, 0, fmt.Errorf("grid: truncated payload: have %d want %d", len(buf), want)
	}

	g = New(w, h, hmax)
	off := headerBytes
	for i := range g.cells {
		g.cells[i] = decodeCell(buf[off : off+cellWire])
		off += cellWire
	}
	for row := 0; row < stored; row++ {
		for x := 0; x < w; x++ {
			g.historyCells[row*w+x] = decodeCell(buf[off : off+cellWire])
			off += cellWire
		}
		g.historyFlags[row] = 0
	}
	g.C = stored
	if s > stored {
		s = stored
	}
	g.ScrollOffset = s
	return g, paneID, cx, cy, nil
}

func putU32(dst []byte, v uint32) { binary.LittleEndian.PutUint32(dst, v) }
