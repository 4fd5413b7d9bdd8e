package d2

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestHexLattice(t *testing.T) {
	const h = 0.5
	box := Box{Min: r2.Vec{}, Max: r2.Vec{X: 1, Y: 1}}
	got := box.HexLattice(h)
	// Rows at y=0, dy, 2dy hold 3, 2 and 3 points.
	if len(got) != 8 {
		t.Fatalf("want 8 lattice points, got %d: %v", len(got), got)
	}
	dy := h * math.Sqrt(3) / 2
	if got[3] != (r2.Vec{X: h / 2, Y: dy}) {
		t.Errorf("odd row not offset: %v", got[3])
	}
	for _, p := range got {
		if !box.Contains(p) {
			t.Errorf("lattice point %v outside box", p)
		}
	}
	// Nearest neighbors are h apart.
	if d := r2.Norm(r2.Sub(got[0], got[3])); math.Abs(d-h) > 1e-12 {
		t.Errorf("neighbor distance %g, want %g", d, h)
	}
	if box.HexLattice(0) != nil || (Box{}).HexLattice(h) != nil {
		t.Error("degenerate lattice not nil")
	}
}

func TestOrient(t *testing.T) {
	a, b, c := r2.Vec{}, r2.Vec{X: 1}, r2.Vec{Y: 1}
	if Orient(a, b, c) != 1 || Orient(a, c, b) != -1 {
		t.Error("bad orientation sign")
	}
	if Orient(a, b, r2.Vec{X: 2}) != 0 {
		t.Error("collinear points not zero")
	}
}

func TestSet(t *testing.T) {
	s := Set{{X: 1, Y: -2}, {X: -3, Y: 4}, {X: 0.5, Y: 0}}
	bb := s.Bounds()
	if bb.Min != (r2.Vec{X: -3, Y: -2}) || bb.Max != (r2.Vec{X: 1, Y: 4}) {
		t.Errorf("bad bounds %v", bb)
	}
	if i := s.IndexWithin(r2.Vec{X: 0.5 + 1e-10}, 1e-9); i != 2 {
		t.Errorf("IndexWithin found %d, want 2", i)
	}
	if i := s.IndexWithin(r2.Vec{X: 7}, 1e-9); i != -1 {
		t.Errorf("IndexWithin found %d, want -1", i)
	}
}

func TestRotate(t *testing.T) {
	got := Rotate(r2.Vec{X: 1}, math.Pi/2)
	if !EqualWithin(got, r2.Vec{Y: 1}, 1e-15) {
		t.Errorf("rotate got %v", got)
	}
	if !IsFinite(got) || IsFinite(r2.Vec{X: math.NaN()}) || IsFinite(r2.Vec{Y: math.Inf(1)}) {
		t.Error("IsFinite misreports")
	}
}
