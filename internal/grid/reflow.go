package grid

// logicalLine is one reconstructed logical line: the concatenation of the
// cells of one or more physical history rows joined by continuation flags.
type logicalLine struct {
	cells []Cell
}

// linearize walks the ring buffer and returns history rows oldest-first,
// plus their continuation flags, exactly as Serialize does.
func (g *Grid) linearize() ([][]Cell, []uint8) {
	stored := g.HistoryCount()
	rows := make([][]Cell, stored)
	flags := make([]uint8, stored)
	if stored == 0 {
		return rows, flags
	}
	start := (g.C - stored) % g.Hmax
	if start < 0 {
		start += g.Hmax
	}
	for i := 0; i < stored; i++ {
		slot := (start + i) % g.Hmax
		row := make([]Cell, g.W)
		copy(row, g.historyCells[slot*g.W:(slot+1)*g.W])
		rows[i] = row
		flags[i] = g.historyFlags[slot]
	}
	return rows, flags
}

// reconstructLogicalLines groups physical rows into logical lines: a line
// starts at a row whose continuation flag is 0 (or the first row) and
// absorbs every following row flagged as a continuation (spec.md §4.B
// "Reflow on width change" step 2).
func reconstructLogicalLines(rows [][]Cell, flags []uint8) []logicalLine {
	var lines []logicalLine
	for i, row := range rows {
		if i == 0 || flags[i] == 0 {
			lines = append(lines, logicalLine{cells: append([]Cell(nil), row...)})
			continue
		}
		last := &lines[len(lines)-1]
		last.cells = append(last.cells, row...)
	}
	return lines
}

// trimTrailingBlank removes trailing space/null cells from a logical line
// (step 3). A line that becomes fully empty yields an empty slice, for
// which wrapLine emits exactly one blank output row.
func trimTrailingBlank(cells []Cell) []Cell {
	end := len(cells)
	for end > 0 && cells[end-1].IsBlank() {
		end--
	}
	if end == 0 {
		return nil
	}
	return cells[:end]
}

// wrapLine re-lays one logical line's cells into rows of width newW,
// carrying wide cells over the boundary rather than splitting them
// (step 4 and the wide-cell tie-break).
func wrapLine(cells []Cell, newW int) ([][]Cell, []uint8) {
	if len(cells) == 0 {
		row := make([]Cell, newW)
		for i := range row {
			row[i] = Cell{Glyph: [4]byte{' '}, Width: 1, Flags: DefaultFlags}
		}
		return [][]Cell{row}, []uint8{0}
	}

	var outRows [][]Cell
	var outFlags []uint8
	cur := make([]Cell, 0, newW)
	flush := func() {
		row := make([]Cell, newW)
		for i := range row {
			row[i] = Cell{Glyph: [4]byte{' '}, Width: 1, Flags: DefaultFlags}
		}
		copy(row, cur)
		flag := uint8(0)
		if len(outRows) > 0 {
			flag = 1
		}
		outRows = append(outRows, row)
		outFlags = append(outFlags, flag)
		cur = cur[:0]
	}

	for _, c := range cells {
		w := int(c.Width)
		if w == 0 {
			w = 1
		}
		if len(cur)+w > newW {
			// Flushing here pads the remainder of the current row with
			// blanks, which is exactly the placeholder the wide-cell
			// tie-break rule calls for: the wide cell moves to the next
			// row whole instead of splitting across the boundary.
			flush()
		}
		cur = append(cur, c)
	}
	if len(cur) > 0 || len(outRows) == 0 {
		flush()
	}
	return outRows, outFlags
}

// GetDisplayLineAbsolute returns the i-th history row in oldest-first
// logical order together with its continuation flag, independent of the
// current scroll offset. Intended for tests and snapshot inspection.
func (g *Grid) GetDisplayLineAbsolute(i int) ([]Cell, uint8) {
	rows, flags := g.linearize()
	if i < 0 || i >= len(rows) {
		return nil, 0
	}
	return rows[i], flags[i]
}

// ResizeHistory reflows the scrollback history to a new width (spec.md
// §4.B "Reflow on width change"). It does not touch the live grid; callers
// resize the live grid separately via Resize. The grid's width field is
// updated to newW once the reflow completes, since grid and history share
// W.
func (g *Grid) ResizeHistory(newW int) error {
	if newW < 1 {
		return errInvalidWidth
	}
	rows, flags := g.linearize()
	lines := reconstructLogicalLines(rows, flags)

	var outRows [][]Cell
	var outFlags []uint8
	for _, ln := range lines {
		trimmed := trimTrailingBlank(ln.cells)
		wrapped, wflags := wrapLine(trimmed, newW)
		outRows = append(outRows, wrapped...)
		outFlags = append(outFlags, wflags...)
	}

	// Trim trailing fully-blank output rows (step 6).
	end := len(outRows)
	for end > 0 && rowIsBlank(outRows[end-1]) {
		end--
	}
	outRows = outRows[:end]
	outFlags = outFlags[:end]

	// Keep the last min(total, Hmax) rows (step 7).
	if g.Hmax > 0 && len(outRows) > g.Hmax {
		drop := len(outRows) - g.Hmax
		outRows = outRows[drop:]
		outFlags = outFlags[drop:]
	}

	hmax := g.Hmax
	g.W = newW
	if hmax > 0 {
		g.historyCells = make([]Cell, hmax*newW)
		for i := range g.historyCells {
			g.historyCells[i] = Blank
		}
		g.historyFlags = make([]uint8, hmax)
		for i, row := range outRows {
			copy(g.historyCells[i*newW:(i+1)*newW], row)
			g.historyFlags[i] = outFlags[i]
		}
	}
	g.C = len(outRows)
	if g.ScrollOffset > g.C {
		g.ScrollOffset = g.C
	}
	return nil
}

func rowIsBlank(row []Cell) bool {
	for _, c := range row {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

type reflowError string

func (e reflowError) Error() string { return string(e) }

const errInvalidWidth = reflowError("grid: new width must be >= 1")
