package form2_test

import (
	"math"
	"testing"

	"github.com/soypat/distmesh"
	"github.com/soypat/distmesh/form2"
	"gonum.org/v1/gonum/spatial/r2"
)

func eval(t *testing.T, f distmesh.Field, pos ...r2.Vec) []float64 {
	t.Helper()
	var vp distmesh.VecPool
	dst := make([]float64, len(pos))
	if err := f.Evaluate(pos, dst, &vp); err != nil {
		t.Fatal(err)
	}
	if err := vp.AssertAllReleased(); err != nil {
		t.Fatal(err)
	}
	return dst
}

func checkDistances(t *testing.T, name string, f distmesh.Field, pos []r2.Vec, want []float64) {
	t.Helper()
	const tol = 1e-12
	got := eval(t, f, pos...)
	for i := range want {
		if math.Abs(got[i]-want[i]) > tol {
			t.Errorf("%s at %v: got %g, want %g", name, pos[i], got[i], want[i])
		}
	}
}

func TestShapes(t *testing.T) {
	circle, err := form2.Circle(2)
	if err != nil {
		t.Fatal(err)
	}
	checkDistances(t, "circle", circle,
		[]r2.Vec{{}, {X: 3}, {X: 0, Y: -2}},
		[]float64{-2, 1, 0})

	rect, err := form2.Rectangle(r2.Box{Min: r2.Vec{X: -1, Y: -1}, Max: r2.Vec{X: 3, Y: 1}})
	if err != nil {
		t.Fatal(err)
	}
	checkDistances(t, "rectangle", rect,
		[]r2.Vec{{X: 1}, {X: 4}, {X: 6, Y: 5}, {X: 2.5, Y: 0}, {X: -1, Y: 1}},
		[]float64{-1, 1, 5, -0.5, 0})

	tri, err := form2.Polygon([]r2.Vec{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 4}})
	if err != nil {
		t.Fatal(err)
	}
	checkDistances(t, "polygon", tri,
		[]r2.Vec{{X: 1, Y: 1}, {X: 2, Y: -1}, {X: -3, Y: -4}, {X: 2, Y: 2}},
		[]float64{-1, 1, 5, 0})

	// Clockwise vertex order describes the same region.
	cw, err := form2.Polygon([]r2.Vec{{X: 0, Y: 4}, {X: 4, Y: 0}, {X: 0, Y: 0}})
	if err != nil {
		t.Fatal(err)
	}
	checkDistances(t, "clockwise polygon", cw,
		[]r2.Vec{{X: 1, Y: 1}, {X: 2, Y: -1}},
		[]float64{-1, 1})
}

func TestShapeErrors(t *testing.T) {
	if _, err := form2.Circle(-1); err == nil {
		t.Error("expected error for negative radius")
	}
	if _, err := form2.Rectangle(r2.Box{}); err == nil {
		t.Error("expected error for empty rectangle")
	}
	if _, err := form2.Polygon([]r2.Vec{{}, {X: 1}}); err == nil {
		t.Error("expected error for two vertex polygon")
	}
	if _, err := form2.Polygon([]r2.Vec{{}, {X: 1}, {X: 2}}); err == nil {
		t.Error("expected error for flat polygon")
	}
	if _, err := form2.Nagon(2, 1); err == nil {
		t.Error("expected error for 2-gon")
	}
	if _, err := form2.Union(); err == nil {
		t.Error("expected error for empty union")
	}
	if _, err := form2.Difference(nil, nil); err == nil {
		t.Error("expected error for nil difference")
	}
	c1, _ := form2.Circle(1)
	far, _ := form2.Translate(c1, r2.Vec{X: 10})
	if _, err := form2.Intersection(c1, far); err == nil {
		t.Error("expected error for disjoint intersection")
	}
	if _, err := form2.DistanceGraded(c1, 0, 1, 0); err == nil {
		t.Error("expected error for zero hmin")
	}
}

func TestCombinators(t *testing.T) {
	outer, _ := form2.Circle(2)
	inner, _ := form2.Circle(1)
	annulus, err := form2.Difference(outer, inner)
	if err != nil {
		t.Fatal(err)
	}
	checkDistances(t, "annulus", annulus,
		[]r2.Vec{{}, {X: 1.5}, {X: 3}},
		[]float64{1, -0.5, 1})

	shifted, err := form2.Translate(inner, r2.Vec{X: 2})
	if err != nil {
		t.Fatal(err)
	}
	union, err := form2.Union(inner, shifted)
	if err != nil {
		t.Fatal(err)
	}
	checkDistances(t, "union", union,
		[]r2.Vec{{}, {X: 2}, {X: 1, Y: 0}, {X: -2}},
		[]float64{-1, -1, 0, 1})
	bb := union.Bounds()
	if bb.Min != (r2.Vec{X: -1, Y: -1}) || bb.Max != (r2.Vec{X: 3, Y: 1}) {
		t.Errorf("union bounds %v", bb)
	}

	half, _ := form2.Translate(inner, r2.Vec{X: 1})
	lens, err := form2.Intersection(inner, half)
	if err != nil {
		t.Fatal(err)
	}
	checkDistances(t, "intersection", lens,
		[]r2.Vec{{X: 0.5}, {X: 0}, {X: -1}},
		[]float64{-0.5, 0, 1})
	if lb := lens.Bounds(); lb.Min.X != 0 || lb.Max.X != 1 {
		t.Errorf("intersection bounds %v", lb)
	}

	rect, _ := form2.Rectangle(r2.Box{Min: r2.Vec{X: 0, Y: -1}, Max: r2.Vec{X: 4, Y: 1}})
	rot, err := form2.Rotate(rect, math.Pi/2)
	if err != nil {
		t.Fatal(err)
	}
	got := eval(t, rot, r2.Vec{X: 0, Y: 2}, r2.Vec{X: 2, Y: 2})
	if math.Abs(got[0]+1) > 1e-12 || math.Abs(got[1]-1) > 1e-12 {
		t.Errorf("rotated rectangle distances %v", got)
	}
	rb := rot.Bounds()
	if math.Abs(rb.Min.X+1) > 1e-12 || math.Abs(rb.Max.Y-4) > 1e-12 {
		t.Errorf("rotated bounds %v", rb)
	}

	grown, err := form2.Offset(inner, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	checkDistances(t, "offset", grown,
		[]r2.Vec{{}, {X: 1.5}},
		[]float64{-1.5, 0})
	if grown.Bounds().Max != (r2.Vec{X: 1.5, Y: 1.5}) {
		t.Errorf("offset bounds %v", grown.Bounds())
	}
}

func TestDensityFields(t *testing.T) {
	u := form2.Uniform()
	checkDistances(t, "uniform", u, []r2.Vec{{}, {X: 100}}, []float64{1, 1})

	c, _ := form2.Circle(1)
	g, err := form2.DistanceGraded(c, 0.1, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	checkDistances(t, "graded", g,
		[]r2.Vec{{X: 1}, {X: 0.8}, {}},
		[]float64{0.1, 0.5, 1})
}

func TestNagon(t *testing.T) {
	v, err := form2.Nagon(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []r2.Vec{{X: 2}, {Y: 2}, {X: -2}, {Y: -2}}
	for i := range want {
		if r2.Norm(r2.Sub(v[i], want[i])) > 1e-12 {
			t.Errorf("vertex %d: got %v, want %v", i, v[i], want[i])
		}
	}
}
