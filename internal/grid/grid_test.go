package grid

import "testing"

func rowOf(s string) []Cell {
	cells := make([]Cell, len(s))
	for i, r := range s {
		cells[i] = Cell{Glyph: [4]byte{byte(r)}, Width: 1, Flags: DefaultFlags}
	}
	return cells
}

func rowString(row []Cell) string {
	b := make([]byte, len(row))
	for i, c := range row {
		g := c.GlyphString()
		if g == "" {
			b[i] = ' '
		} else {
			b[i] = g[0]
		}
	}
	return string(b)
}

// S1: push/pull history.
func TestScenarioS1PushPullHistory(t *testing.T) {
	g := New(4, 2, 3)
	g.PushHistory(rowOf("AAAA"), false)
	g.PushHistory(rowOf("BBBB"), false)
	g.PushHistory(rowOf("CCCC"), false)
	g.PushHistory(rowOf("DDDD"), false)

	if g.HistoryCount() != 3 {
		t.Fatalf("history count = %d, want 3", g.HistoryCount())
	}
	g.ScrollUp(3)
	if row, ok := g.GetDisplayLine(0); !ok || rowString(row) != "BBBB" {
		t.Fatalf("row0 = %q, want BBBB", rowString(row))
	}
	if row, ok := g.GetDisplayLine(1); !ok || rowString(row) != "CCCC" {
		t.Fatalf("row1 = %q, want CCCC", rowString(row))
	}
	g.ScrollUp(1000)
	if g.ScrollOffset != 3 {
		t.Fatalf("scroll offset = %d, want capped at 3", g.ScrollOffset)
	}
	g.ScrollDown(1)
	if row, ok := g.GetDisplayLine(0); !ok || rowString(row) != "CCCC" {
		t.Fatalf("after scroll_down(1) row0 = %q, want CCCC", rowString(row))
	}
}

// S2: reflow narrow -> wide joins a wrapped logical line.
func TestScenarioS2ReflowNarrowToWide(t *testing.T) {
	g := New(5, 2, 10)
	g.PushHistory(rowOf("hello"), false)
	g.PushHistory(rowOf("world"), true)

	if err := g.ResizeHistory(10); err != nil {
		t.Fatal(err)
	}
	if g.HistoryCount() != 1 {
		t.Fatalf("history count = %d, want 1", g.HistoryCount())
	}
	row, _ := g.GetDisplayLineAbsolute(0)
	if rowString(row)[:10] != "helloworld" {
		t.Fatalf("row = %q, want helloworld", rowString(row))
	}
}

// S3: reflow wide -> narrow splits one logical line into two continuation
// rows.
func TestScenarioS3ReflowWideToNarrow(t *testing.T) {
	g := New(8, 2, 10)
	g.PushHistory(rowOf("abcdef  "), false)

	if err := g.ResizeHistory(3); err != nil {
		t.Fatal(err)
	}
	if g.HistoryCount() != 2 {
		t.Fatalf("history count = %d, want 2", g.HistoryCount())
	}
	r0, f0 := g.GetDisplayLineAbsolute(0)
	r1, f1 := g.GetDisplayLineAbsolute(1)
	if rowString(r0) != "abc" || f0 != 0 {
		t.Fatalf("row0 = %q flag=%d, want abc/0", rowString(r0), f0)
	}
	if rowString(r1) != "def" || f1 != 1 {
		t.Fatalf("row1 = %q flag=%d, want def/1", rowString(r1), f1)
	}
}

// S4: serialize round-trip of a small grid.
func TestScenarioS4SerializeRoundTrip(t *testing.T) {
	g := New(2, 1, 1)
	g.SetCell(0, 0, Cell{Glyph: [4]byte{'X'}, Width: 1, Fg: 7, Bg: 0, Attr: 0, Flags: 0})
	g.SetCell(1, 0, Cell{Glyph: [4]byte{'Y'}, Width: 1, Fg: 4, Bg: 0, Attr: 1, Flags: 3})

	buf := g.Serialize(0, 1, 0)
	if len(buf) != headerBytes+2*cellWire {
		t.Fatalf("serialized length = %d, want %d", len(buf), headerBytes+2*cellWire)
	}
	g2, _, cx, cy, err := Deserialize(buf)
	if err != nil {
		t.Fatal(err)
	}
	if cx != 1 || cy != 0 {
		t.Fatalf("cursor = (%d,%d), want (1,0)", cx, cy)
	}
	if g2.Cell(0, 0) != g.Cell(0, 0) || g2.Cell(1, 0) != g.Cell(1, 0) {
		t.Fatalf("round-tripped cells differ: got %+v %+v", g2.Cell(0, 0), g2.Cell(1, 0))
	}
}

func TestGridSizeInvariant(t *testing.T) {
	g := New(10, 4, 50)
	if len(g.cells) != 10*4 {
		t.Fatalf("cells len = %d, want %d", len(g.cells), 40)
	}
	if len(g.historyCells) != 50*10 {
		t.Fatalf("history cells len = %d, want %d", len(g.historyCells), 500)
	}
}

func TestScrollBoundAfterArbitrarySequence(t *testing.T) {
	g := New(3, 2, 4)
	for i := 0; i < 9; i++ {
		g.PushHistory(rowOf("abc"), i%2 == 1)
	}
	g.ScrollUp(100)
	g.ScrollDown(1)
	g.ScrollUp(2)
	max := g.HistoryCount()
	if g.ScrollOffset > max {
		t.Fatalf("scroll offset %d exceeds bound %d", g.ScrollOffset, max)
	}
}
