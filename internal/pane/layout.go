package pane

// ComputeLayout implements spec.md §4.F "Layout recomputation on WINCH or
// pane add/remove" and the arithmetic invariant in §8.7: given a usable
// area (rows-1) x cols and n panes, each pane gets width
// (cols-(n-1))/n, with the last pane absorbing the integer-division
// remainder so that Σwᵢ + (n-1) == cols exactly. Every pane spans the
// full height (rows-1), yoff=0; xoff accumulates width+1 per pane (the
// extra column hosts the border).
func ComputeLayout(cols, rows, n int) []Geometry {
	if n <= 0 {
		return nil
	}
	height := rows - 1
	if height < 0 {
		height = 0
	}
	usable := cols - (n - 1)
	if usable < n {
		usable = n // degenerate: guarantee every pane is at least 1 column
	}
	base := usable / n
	remainder := usable % n

	geoms := make([]Geometry, n)
	xoff := 0
	for i := 0; i < n; i++ {
		w := base
		if i == n-1 {
			w += remainder
		}
		geoms[i] = Geometry{XOff: xoff, YOff: 0, SX: w, SY: height}
		xoff += w + 1
	}
	return geoms
}
