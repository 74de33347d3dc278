// Package vt adapts github.com/vito/midterm — the VT/ANSI parser this
// system treats as an external collaborator — to the grid callback contract
// in spec.md §6: a scrollback-push callback invoked with the cells of a
// line that scrolled off the top, and an output callback for parser-
// generated responses (cursor reports, OSC color replies) that must be
// written back to the PTY master.
package vt

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/vito/midterm"

	"github.com/LatosProject/muxkit/internal/grid"
)

// ScrollCallback is invoked once per line evicted from the terminal's
// visible window, oldest evicted line first.
type ScrollCallback func(cells []grid.Cell, continuation bool)

// Parser wraps a midterm.Terminal, feeding it raw PTY bytes and detecting
// lines that scroll off the top so they can be pushed into a Grid's
// history. midterm keeps line content as []rune (Terminal.Content) with
// styling tracked out-of-band in Terminal.Format; this adapter only needs
// the rune content to build grid.Cell glyphs, so it does not consult
// Format when building history rows (history cells carry no SGR state in
// this core, matching the plain-glyph scrollback contract of §4.B).
type Parser struct {
	mu   sync.Mutex
	term *midterm.Terminal

	rows, cols int
	onScroll   ScrollCallback
	output     func([]byte)

	lastWrite time.Time
}

// New constructs a parser bound to a (rows,cols) screen. onScroll is called
// for every line evicted from view; output is called with bytes the parser
// itself wants written back to the PTY master (cursor position reports,
// OSC color query replies).
func New(rows, cols int, onScroll ScrollCallback, output func([]byte)) *Parser {
	return &Parser{
		term:     midterm.NewTerminal(rows, cols),
		rows:     rows,
		cols:     cols,
		onScroll: onScroll,
		output:   output,
	}
}

// SetSize resizes the underlying terminal (pane_resize notifying the VT
// parser of a new size, spec.md §4.C).
func (p *Parser) SetSize(rows, cols int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows, p.cols = rows, cols
	p.term.Resize(rows, cols)
}

// Write feeds raw PTY output bytes to the parser (input_write, spec.md
// §6), detects scrolled-off lines, and reports OSC10/11 color queries to
// the output callback so callers can answer them on the PTY master.
func (p *Parser) Write(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.output != nil {
		p.respondOSC(data)
	}

	before := p.snapshotTop(p.rows)
	p.term.Write(data)
	p.lastWrite = time.Now()
	after := p.snapshotTop(p.rows)
	p.detectScroll(before, after)
}

func (p *Parser) respondOSC(data []byte) {
	if bytes.Contains(data, []byte("\033]10;?")) {
		p.output([]byte("\033]10;rgb:ffff/ffff/ffff\033\\"))
	}
	if bytes.Contains(data, []byte("\033]11;?")) {
		p.output([]byte("\033]11;rgb:0000/0000/0000\033\\"))
	}
}

// snapshotTop deep-copies up to n content rows for later shift comparison.
func (p *Parser) snapshotTop(n int) [][]rune {
	content := p.term.Content
	if len(content) < n {
		n = len(content)
	}
	out := make([][]rune, n)
	for i := 0; i < n; i++ {
		out[i] = append([]rune(nil), content[i]...)
	}
	return out
}

// detectScroll finds the largest shift k such that after[0:rows-k] equals
// before[k:rows] — i.e. the view scrolled up by k lines — and reports the
// k evicted lines (before[0:k]) to onScroll, oldest first. This is a
// best-effort adapter heuristic: midterm has no native "line evicted"
// hook, so eviction is inferred from content identity rather than a
// parser callback.
func (p *Parser) detectScroll(before, after [][]rune) {
	if p.onScroll == nil || len(before) == 0 || len(after) == 0 {
		return
	}
	rows := len(before)
	if len(after) < rows {
		rows = len(after)
	}
	for k := rows - 1; k >= 1; k-- {
		if rowsEqual(before, after, k, rows) {
			for i := 0; i < k; i++ {
				p.onScroll(toGridCells(before[i]), false)
			}
			return
		}
	}
}

func rowsEqual(before, after [][]rune, shift, rows int) bool {
	for i := 0; i < rows-shift; i++ {
		if !runeRowEqual(before[shift+i], after[i]) {
			return false
		}
	}
	return true
}

func runeRowEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func toGridCells(row []rune) []grid.Cell {
	out := make([]grid.Cell, len(row))
	for i, r := range row {
		g := grid.Cell{Width: 1, Flags: grid.DefaultFlags}
		if r == 0 {
			r = ' '
		}
		g.SetGlyph(string(r))
		if r >= 0x1100 {
			g.Width = 2 // coarse East-Asian-width approximation
		}
		out[i] = g
	}
	return out
}

// ReplayGrid issues the escape sequence described in spec.md §6 ("the grid
// sync on reattach") to rebuild the parser's screen from a restored Grid:
// home, clear, reset, then per line a cursor move and per cell an SGR
// prefix and the glyph.
func (p *Parser) ReplayGrid(g *grid.Grid, cx, cy int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var buf bytes.Buffer
	buf.WriteString("\033[H\033[2J\033[0m")
	for y := 0; y < g.H; y++ {
		fmt.Fprintf(&buf, "\033[%d;1H", y+1)
		for _, c := range g.Row(y) {
			writeCellSGR(&buf, c)
			buf.WriteString(c.GlyphString())
		}
	}
	fmt.Fprintf(&buf, "\033[%d;%dH", cy+1, cx+1)
	p.term.Write(buf.Bytes())
}

func writeCellSGR(buf *bytes.Buffer, c grid.Cell) {
	buf.WriteString("\033[0m")
	if c.Attr&grid.AttrBold != 0 {
		buf.WriteString("\033[1m")
	}
	if c.Attr&grid.AttrUnderline != 0 {
		buf.WriteString("\033[4m")
	}
	if c.Attr&grid.AttrItalic != 0 {
		buf.WriteString("\033[3m")
	}
	if c.Attr&grid.AttrReverse != 0 {
		buf.WriteString("\033[7m")
	}
	if c.Flags&grid.FlagDefaultFg == 0 {
		fmt.Fprintf(buf, "\033[38;5;%dm", c.Fg)
	}
	if c.Flags&grid.FlagDefaultBg == 0 {
		fmt.Fprintf(buf, "\033[48;5;%dm", c.Bg)
	}
}

// Cursor returns the parser's current cursor position.
func (p *Parser) Cursor() (x, y int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.term.Cursor.X, p.term.Cursor.Y
}

// IsIdle reports whether the parser has seen no input for at least d.
func (p *Parser) IsIdle(d time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.lastWrite.IsZero() && time.Since(p.lastWrite) > d
}

// Content returns the raw midterm terminal, for code that needs
// region/format information directly.
func (p *Parser) Content() *midterm.Terminal { return p.term }
