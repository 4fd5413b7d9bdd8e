package distmesh

import (
	"github.com/fogleman/delaunay"
	"github.com/pkg/errors"
	"github.com/soypat/distmesh/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Triangulator computes a triangulation of a point set. Triangles are
// returned as index triples into nodes.
type Triangulator interface {
	Triangulate(nodes []r2.Vec) ([][3]int, error)
}

// TriangulatorFunc adapts a function to the Triangulator interface.
type TriangulatorFunc func(nodes []r2.Vec) ([][3]int, error)

// Triangulate calls f(nodes).
func (f TriangulatorFunc) Triangulate(nodes []r2.Vec) ([][3]int, error) { return f(nodes) }

// Delaunay computes Delaunay triangulations of the convex hull of the node
// set. Triangles are oriented counter-clockwise.
type Delaunay struct{}

// Triangulate returns the Delaunay triangulation of nodes. An error is
// returned for point sets with no triangulation such as collinear sets.
func (Delaunay) Triangulate(nodes []r2.Vec) ([][3]int, error) {
	if len(nodes) < 3 {
		return nil, errors.Errorf("need at least 3 points to triangulate, got %d", len(nodes))
	}
	pts := make([]delaunay.Point, len(nodes))
	for i, p := range nodes {
		pts[i] = delaunay.Point{X: p.X, Y: p.Y}
	}
	tri, err := delaunay.Triangulate(pts)
	if err != nil {
		return nil, errors.Wrap(err, "delaunay")
	}
	ts := tri.Triangles
	tris := make([][3]int, 0, len(ts)/3)
	for i := 0; i+2 < len(ts); i += 3 {
		t := [3]int{ts[i], ts[i+1], ts[i+2]}
		if d2.Orient(nodes[t[0]], nodes[t[1]], nodes[t[2]]) < 0 {
			t[1], t[2] = t[2], t[1]
		}
		tris = append(tris, t)
	}
	return tris, nil
}

// interiorTriangles keeps the triangles whose centroid lies inside the
// domain by more than geps. fd is evaluated over all centroids in a single
// call. The filtering is done in place over tris.
func interiorTriangles(fd Field, nodes []r2.Vec, tris [][3]int, geps float64, vp *VecPool) ([][3]int, error) {
	if len(tris) == 0 {
		return tris, nil
	}
	centroids := vp.V2.Acquire(len(tris))
	defer vp.V2.Release(centroids)
	dist := vp.Float.Acquire(len(tris))
	defer vp.Float.Release(dist)
	for i, t := range tris {
		centroids[i] = d2.Centroid(nodes[t[0]], nodes[t[1]], nodes[t[2]])
	}
	err := fd.Evaluate(centroids, dist, vp)
	if err != nil {
		return nil, errors.Wrap(err, "evaluating distance at centroids")
	}
	n := 0
	for i, t := range tris {
		if dist[i] < -geps {
			tris[n] = t
			n++
		}
	}
	return tris[:n], nil
}
