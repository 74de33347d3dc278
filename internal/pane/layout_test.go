package pane

import "testing"

func TestComputeLayoutSumsToCols(t *testing.T) {
	for _, tc := range []struct{ cols, rows, n int }{
		{80, 24, 1}, {80, 24, 2}, {81, 24, 3}, {100, 40, 4}, {7, 10, 3},
	} {
		geoms := ComputeLayout(tc.cols, tc.rows, tc.n)
		sum := 0
		for _, g := range geoms {
			sum += g.SX
		}
		got := sum + (tc.n - 1)
		if got != tc.cols && tc.cols-(tc.n-1) >= tc.n {
			t.Fatalf("cols=%d n=%d: sum(w)+n-1 = %d, want %d", tc.cols, tc.n, got, tc.cols)
		}
	}
}

func TestComputeLayoutXOffsets(t *testing.T) {
	geoms := ComputeLayout(82, 24, 3)
	xoff := 0
	for i, g := range geoms {
		if g.XOff != xoff {
			t.Fatalf("pane %d xoff = %d, want %d", i, g.XOff, xoff)
		}
		xoff += g.SX + 1
	}
}

func TestWindowPaneIDsMonotonic(t *testing.T) {
	w := NewWindow("main")
	p0 := w.Create(Geometry{SX: 80, SY: 23})
	p1 := w.Create(Geometry{SX: 40, SY: 23})
	if p0.ID != 0 || p1.ID != 1 {
		t.Fatalf("pane ids = %d, %d, want 0, 1", p0.ID, p1.ID)
	}
}

func TestWindowNextPaneWraps(t *testing.T) {
	w := NewWindow("main")
	p0 := w.Create(Geometry{SX: 40, SY: 23})
	p1 := w.Create(Geometry{SX: 40, SY: 23})
	if w.Active() != p0 {
		t.Fatalf("active after first create should be p0")
	}
	if w.NextPane() != p1 {
		t.Fatal("expected next pane to be p1")
	}
	if w.NextPane() != p0 {
		t.Fatal("expected wraparound back to p0")
	}
}
