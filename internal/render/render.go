// Package render turns the cell model into an ANSI escape stream: panes,
// a status bar, and borders between panes (spec.md §4.G). Output is
// delta-encoded: the renderer tracks the last emitted (fg,bg,attr,flags)
// and only emits SGR codes when a cell's differ from it.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/LatosProject/muxkit/internal/grid"
	"github.com/LatosProject/muxkit/internal/pane"
)

// sgrState is the renderer's notion of "last emitted" cell style.
type sgrState struct {
	fg, bg, attr, flags uint8
	valid               bool
}

// Renderer writes ANSI output for a Window to an io.Writer (normally the
// client's stdout).
type Renderer struct {
	w       io.Writer
	profile termenv.Profile
	last    sgrState
}

// New constructs a Renderer writing to w. The color profile is detected
// via termenv so 256-color output degrades gracefully on dumber
// terminals.
func New(w io.Writer) *Renderer {
	return &Renderer{w: w, profile: termenv.EnvColorProfile()}
}

// HideCursor / ShowCursor bracket a full-screen redraw.
func (r *Renderer) HideCursor() { fmt.Fprint(r.w, "\033[?25l") }
func (r *Renderer) ShowCursor() { fmt.Fprint(r.w, "\033[?25h") }

// ClearScreen clears the whole terminal and homes the cursor (raw-mode
// entry / WINCH layout redraw, spec.md §4.F).
func (r *Renderer) ClearScreen() { fmt.Fprint(r.w, "\033[H\033[2J") }

// RenderPane draws one pane's visible rows at its geometry offset
// (spec.md §4.G "Pane render loop").
func (r *Renderer) RenderPane(p *pane.Pane) {
	r.HideCursor()
	r.last = sgrState{}
	for y := 0; y < p.Geom.SY; y++ {
		fmt.Fprintf(r.w, "\033[%d;%dH", p.Geom.YOff+y+1, p.Geom.XOff+1)
		row, ok := p.Grid.GetDisplayLine(y)
		if !ok {
			continue
		}
		for _, c := range row {
			r.emitCell(c)
		}
	}
	fmt.Fprint(r.w, "\033[0m")
	r.last = sgrState{}

	if p.Grid.ScrollOffset > 0 {
		return
	}
	fmt.Fprintf(r.w, "\033[%d;%dH", p.Geom.YOff+p.CY+1, p.Geom.XOff+p.CX+1)
	r.ShowCursor()
}

func (r *Renderer) emitCell(c grid.Cell) {
	cur := sgrState{fg: c.Fg, bg: c.Bg, attr: c.Attr, flags: c.Flags}
	if !r.last.valid || cur != r.last {
		fmt.Fprint(r.w, "\033[0m")
		var codes []string
		if c.Attr&grid.AttrBold != 0 {
			codes = append(codes, "1")
		}
		if c.Attr&grid.AttrUnderline != 0 {
			codes = append(codes, "4")
		}
		if c.Attr&grid.AttrItalic != 0 {
			codes = append(codes, "3")
		}
		if c.Attr&grid.AttrReverse != 0 {
			codes = append(codes, "7")
		}
		if len(codes) > 0 {
			fmt.Fprintf(r.w, "\033[%sm", strings.Join(codes, ";"))
		}
		if c.Flags&grid.FlagDefaultFg == 0 {
			seq := r.profile.Color(fmt.Sprintf("%d", c.Fg)).Sequence(false)
			fmt.Fprintf(r.w, "\033[%sm", seq)
		}
		if c.Flags&grid.FlagDefaultBg == 0 {
			seq := r.profile.Color(fmt.Sprintf("%d", c.Bg)).Sequence(true)
			fmt.Fprintf(r.w, "\033[%sm", seq)
		}
		cur.valid = true
		r.last = cur
	}
	g := c.GlyphString()
	if g == "" {
		g = " "
	}
	fmt.Fprint(r.w, g)
}

// RenderBorders draws a vertical box-drawing separator after every pane
// except the last in the window (spec.md §4.G "Borders").
func (r *Renderer) RenderBorders(panes []*pane.Pane) {
	for i, p := range panes {
		if i == len(panes)-1 {
			continue
		}
		col := p.Geom.XOff + p.Geom.SX + 1
		for y := 0; y < p.Geom.SY; y++ {
			fmt.Fprintf(r.w, "\033[%d;%dH│", p.Geom.YOff+y+1, col)
		}
	}
}

// DisplayWidth counts columns the way spec.md §4.G requires: wide
// (East-Asian-width) glyphs count as 2 columns. go-runewidth already
// implements exactly this table.
func DisplayWidth(s string) int { return runewidth.StringWidth(s) }

// RenderStatusBar draws the bottom row: inverse-video window name,
// optional scrollback marker, right-padded version string (spec.md §4.G
// "Status bar").
func (r *Renderer) RenderStatusBar(row, cols int, windowName, historyMarker, version string) {
	fmt.Fprintf(r.w, "\033[%d;1H", row)
	fmt.Fprint(r.w, "\033[7;34;47m")
	left := fmt.Sprintf(" %s ", windowName)
	if historyMarker != "" {
		left += historyMarker + " "
	}
	used := DisplayWidth(left) + DisplayWidth(version)
	pad := cols - used
	if pad < 1 {
		pad = 1
	}
	fmt.Fprint(r.w, left)
	fmt.Fprint(r.w, strings.Repeat(" ", pad))
	fmt.Fprint(r.w, version)
	fmt.Fprint(r.w, "\033[K\033[0m")
}
