package distmesh

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/soypat/distmesh/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

func unitCircle(p r2.Vec) float64 { return r2.Norm(p) - 1 }

func uniformField(p r2.Vec) float64 { return 1 }

func TestSpringForces(t *testing.T) {
	const tol = 1e-12
	var vp VecPool
	var sp springs
	nodes := []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}}
	bars := [][2]int{{0, 1}}
	force := make([]r2.Vec, len(nodes))
	// Single bar of length 1: L0 = 1.2, F = 0.2 pushing endpoints apart.
	err := sp.compute(PointFunc(uniformField), nodes, bars, 0, 1.2, force, &vp)
	if err != nil {
		t.Fatal(err)
	}
	if !d2.EqualWithin(force[0], r2.Vec{X: -0.2}, tol) || !d2.EqualWithin(force[1], r2.Vec{X: 0.2}, tol) {
		t.Errorf("unexpected forces %v", force)
	}
	if math.Abs(sp.target[0]-1.2) > tol || math.Abs(sp.length[0]-1) > tol {
		t.Errorf("unexpected bar state L=%g L0=%g", sp.length[0], sp.target[0])
	}

	// Fixed nodes receive no force.
	err = sp.compute(PointFunc(uniformField), nodes, bars, 1, 1.2, force, &vp)
	if err != nil {
		t.Fatal(err)
	}
	if force[0] != (r2.Vec{}) || !d2.EqualWithin(force[1], r2.Vec{X: 0.2}, tol) {
		t.Errorf("fixed node moved: %v", force)
	}

	// Stretched bars exert no force.
	err = sp.compute(PointFunc(uniformField), nodes, bars, 0, 0.5, force, &vp)
	if err != nil {
		t.Fatal(err)
	}
	if force[0] != (r2.Vec{}) || force[1] != (r2.Vec{}) {
		t.Errorf("stretched bar produced force %v", force)
	}
	if err := vp.AssertAllReleased(); err != nil {
		t.Fatal(err)
	}
}

func TestSpringForcesBalance(t *testing.T) {
	var vp VecPool
	var sp springs
	nodes := []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.5, Y: 0.8}, {X: 0.4, Y: 0.3}}
	bars := [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	force := make([]r2.Vec, len(nodes))
	err := sp.compute(PointFunc(uniformField), nodes, bars, 0, 1.2, force, &vp)
	if err != nil {
		t.Fatal(err)
	}
	// Equal and opposite forces sum to zero.
	var sum r2.Vec
	for _, f := range force {
		sum = r2.Add(sum, f)
	}
	if r2.Norm(sum) > 1e-12 {
		t.Errorf("net force %v not zero", sum)
	}
}

func TestSpringZeroLengthBar(t *testing.T) {
	var vp VecPool
	var sp springs
	nodes := []r2.Vec{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 0}}
	bars := [][2]int{{0, 1}, {1, 2}}
	force := make([]r2.Vec, len(nodes))
	err := sp.compute(PointFunc(uniformField), nodes, bars, 0, 1.2, force, &vp)
	if err != nil {
		t.Fatal(err)
	}
	for i, f := range force {
		if !d2.IsFinite(f) {
			t.Errorf("non-finite force on node %d: %v", i, f)
		}
	}
	if force[0] != (r2.Vec{}) {
		t.Errorf("zero length bar contributed force %v", force[0])
	}
}

func TestRemoveOvercompressed(t *testing.T) {
	sp := springs{
		length: []float64{1, 0.1},
		target: []float64{1.2, 0.5},
	}
	nodes := []r2.Vec{{X: 0}, {X: 1}, {X: 1.1}}
	bars := [][2]int{{0, 1}, {1, 2}}
	got, removed := sp.removeOvercompressed(nodes, bars, 2)
	if removed != 1 {
		t.Fatalf("want 1 removed node, got %d", removed)
	}
	if diff := cmp.Diff([]r2.Vec{{X: 0}, {X: 1}}, got); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}

	// Without fixed nodes both endpoints go.
	nodes = []r2.Vec{{X: 0}, {X: 1}, {X: 1.1}}
	got, removed = sp.removeOvercompressed(nodes, bars, 0)
	if removed != 2 || len(got) != 1 || got[0] != (r2.Vec{X: 0}) {
		t.Errorf("unexpected result %v, removed %d", got, removed)
	}
}

func TestGradient(t *testing.T) {
	const tol = 1e-6
	pos := []r2.Vec{{X: 2, Y: 0}, {X: 0, Y: -3}, {X: 1, Y: 1}}
	grad := make([]r2.Vec, len(pos))
	var vp VecPool
	err := Gradient(PointFunc(unitCircle), pos, grad, 1e-6, &vp)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range pos {
		want := r2.Unit(p)
		if !d2.EqualWithin(grad[i], want, tol) {
			t.Errorf("gradient at %v: got %v, want %v", p, grad[i], want)
		}
	}
	// Linear fields have exact central differences.
	linear := PointFunc(func(p r2.Vec) float64 { return 3*p.X - 2*p.Y })
	err = Gradient(linear, pos, grad, 1e-3, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := range grad {
		if !d2.EqualWithin(grad[i], r2.Vec{X: 3, Y: -2}, tol) {
			t.Errorf("linear gradient: got %v", grad[i])
		}
	}
	if err := vp.AssertAllReleased(); err != nil {
		t.Fatal(err)
	}
	if err := Gradient(linear, pos, grad[:1], 1e-3, nil); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestProjectOutside(t *testing.T) {
	const tol = 1e-6
	var vp VecPool
	nodes := []r2.Vec{{X: 3, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: -1.5}, {X: 0.5, Y: 0}}
	dist := make([]float64, len(nodes))
	err := PointFunc(unitCircle).Evaluate(nodes, dist, &vp)
	if err != nil {
		t.Fatal(err)
	}
	n, err := projectOutside(PointFunc(unitCircle), nodes, dist, 1, 1e-8, &vp)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("want 2 projected nodes, got %d", n)
	}
	want := []r2.Vec{{X: 3, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: -1}, {X: 0.5, Y: 0}}
	for i := range want {
		if !d2.EqualWithin(nodes[i], want[i], tol) {
			t.Errorf("node %d: got %v, want %v", i, nodes[i], want[i])
		}
	}
	if err := vp.AssertAllReleased(); err != nil {
		t.Fatal(err)
	}
}

func TestProjectZeroGradient(t *testing.T) {
	var vp VecPool
	flat := PointFunc(func(r2.Vec) float64 { return 1 })
	nodes := []r2.Vec{{X: 1, Y: 2}}
	dist := []float64{1}
	_, err := projectOutside(flat, nodes, dist, 0, 1e-8, &vp)
	if err != nil {
		t.Fatal(err)
	}
	if nodes[0] != (r2.Vec{X: 1, Y: 2}) {
		t.Errorf("node moved with zero gradient: %v", nodes[0])
	}
}

func TestInteriorTriangles(t *testing.T) {
	var vp VecPool
	nodes := []r2.Vec{{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 0, Y: 0.5}, {X: 2, Y: 2}, {X: 3, Y: 2}}
	tris := [][3]int{{0, 1, 2}, {1, 3, 4}}
	got, err := interiorTriangles(PointFunc(unitCircle), nodes, tris, 0.01, &vp)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][3]int{{0, 1, 2}}, got); diff != "" {
		t.Errorf("interior triangles mismatch (-want +got):\n%s", diff)
	}
	if err := vp.AssertAllReleased(); err != nil {
		t.Fatal(err)
	}
}

func TestDelaunayOrientation(t *testing.T) {
	nodes := []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0.4, Y: 0.6}}
	tris, err := Delaunay{}.Triangulate(nodes)
	if err != nil {
		t.Fatal(err)
	}
	if len(tris) != 4 {
		t.Fatalf("want 4 triangles, got %d", len(tris))
	}
	for _, tri := range tris {
		if d2.Orient(nodes[tri[0]], nodes[tri[1]], nodes[tri[2]]) <= 0 {
			t.Errorf("triangle %v not counter-clockwise", tri)
		}
	}
	_, err = Delaunay{}.Triangulate([]r2.Vec{{X: 0}, {X: 1}, {X: 2}})
	if err == nil {
		t.Error("expected error triangulating collinear points")
	}
}

func TestBufPool(t *testing.T) {
	var vp VecPool
	a := vp.Float.Acquire(10)
	b := vp.Float.Acquire(5)
	if len(a) != 10 || len(b) != 5 {
		t.Fatalf("bad lengths %d %d", len(a), len(b))
	}
	if err := vp.AssertAllReleased(); err == nil {
		t.Error("expected leak to be detected")
	}
	if err := vp.Float.Release(a); err != nil {
		t.Fatal(err)
	}
	if err := vp.Float.Release(a); err == nil {
		t.Error("expected double release error")
	}
	// Released buffer is reused for smaller requests.
	c := vp.Float.Acquire(3)
	if &c[:1][0] != &a[:1][0] {
		t.Error("released buffer not reused")
	}
	vp.Float.Release(c)
	vp.Float.Release(b)
	z := vp.V2.Acquire(0)
	if err := vp.V2.Release(z); err != nil {
		t.Fatal(err)
	}
	if err := vp.AssertAllReleased(); err != nil {
		t.Fatal(err)
	}
	if err := vp.Float.Release(make([]float64, 3)); err == nil {
		t.Error("expected error releasing foreign buffer")
	}
}
