// Package grid implements the per-pane screen buffer: the live cell array,
// the circular scrollback history, resize reflow, and the binary snapshot
// format exchanged as a GRID_SAVE payload.
package grid

// Attribute bits, bit0=bold bit1=underline bit2=italic bit3=reverse.
const (
	AttrBold = 1 << iota
	AttrUnderline
	AttrItalic
	AttrReverse
)

// Flag bits, bit0=default fg bit1=default bg. Default-color flags override
// the palette index on that channel when set.
const (
	FlagDefaultFg = 1 << iota
	FlagDefaultBg
)

// DefaultFlags is the flag mask new/padding cells are initialized with so
// they render without a stray background (spec.md §4.B step 5).
const DefaultFlags = FlagDefaultFg | FlagDefaultBg

// cellWire is the on-the-wire layout of a Cell: 5 bytes of glyph (up to 4
// UTF-8 bytes plus a NUL terminator, matching the original's `char ch[5]`),
// then width, fg, bg, attr, flags — 10 bytes total.
const cellWire = 10

// Cell is the minimum addressable screen position.
type Cell struct {
	Glyph [4]byte // UTF-8 grapheme, left-aligned, NUL-padded
	Width uint8   // display width, 1 or 2
	Fg    uint8   // foreground palette index
	Bg    uint8   // background palette index
	Attr  uint8   // AttrBold | AttrUnderline | AttrItalic | AttrReverse
	Flags uint8   // FlagDefaultFg | FlagDefaultBg
}

// Blank is the zero cell: a space glyph, default colors, no attributes.
var Blank = Cell{Glyph: [4]byte{' '}, Width: 1, Flags: DefaultFlags}

// SetGlyph copies s (at most 4 bytes) into the cell's glyph field.
func (c *Cell) SetGlyph(s string) {
	c.Glyph = [4]byte{}
	n := len(s)
	if n > 4 {
		n = 4
	}
	copy(c.Glyph[:], s[:n])
}

// GlyphString returns the glyph as a Go string, trimmed at the first NUL.
func (c Cell) GlyphString() string {
	n := 0
	for n < len(c.Glyph) && c.Glyph[n] != 0 {
		n++
	}
	return string(c.Glyph[:n])
}

// IsBlank reports whether the cell's glyph is a space or empty — the
// trimming rule used by trailing-blank detection (spec.md §4.B step 3, 6).
func (c Cell) IsBlank() bool {
	g := c.GlyphString()
	return g == "" || g == " "
}

func (c Cell) encode(dst []byte) {
	copy(dst[0:4], c.Glyph[:])
	dst[4] = 0
	dst[5] = c.Width
	dst[6] = c.Fg
	dst[7] = c.Bg
	dst[8] = c.Attr
	dst[9] = c.Flags
}

func decodeCell(src []byte) Cell {
	var c Cell
	copy(c.Glyph[:], src[0:4])
	c.Width = src[5]
	c.Fg = src[6]
	c.Bg = src[7]
	c.Attr = src[8]
	c.Flags = src[9]
	return c
}
