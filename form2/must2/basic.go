package must2

import (
	"math"

	"github.com/soypat/distmesh"
	"github.com/soypat/distmesh/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

const tolerance = 1e-9

// 2D Circle

// circle is the 2d signed distance object for a circle.
type circle struct {
	radius float64
}

// Circle returns the SDF2 for a 2d circle centered at the origin.
func Circle(radius float64) distmesh.SDF2 {
	if !(radius > 0) {
		panic("radius <= 0")
	}
	return &circle{radius: radius}
}

// Evaluate stores the distance to the circle of every position in dist.
func (s *circle) Evaluate(pos []r2.Vec, dist []float64, userData any) error {
	r := s.radius
	for i, p := range pos {
		dist[i] = r2.Norm(p) - r
	}
	return nil
}

// Bounds returns the bounding box of a 2d circle.
func (s *circle) Bounds() r2.Box {
	d := d2.Elem(s.radius)
	return r2.Box{Min: r2.Scale(-1, d), Max: d}
}

// 2D Rectangle

// rectangle is the 2d signed distance object for an axis aligned rectangle.
type rectangle struct {
	center r2.Vec
	half   r2.Vec
}

// Rectangle returns the exact SDF2 of the axis aligned rectangle spanning bb.
// Corners are sharp: the distance field is not differentiable there.
func Rectangle(bb r2.Box) distmesh.SDF2 {
	if d2.Box(bb).Empty() {
		panic("empty rectangle")
	}
	return &rectangle{
		center: d2.Box(bb).Center(),
		half:   r2.Scale(0.5, d2.Box(bb).Size()),
	}
}

// Evaluate stores the distance to the rectangle of every position in dist.
func (s *rectangle) Evaluate(pos []r2.Vec, dist []float64, userData any) error {
	b := s.half
	for i, p := range pos {
		d := r2.Sub(d2.AbsElem(r2.Sub(p, s.center)), b)
		dist[i] = r2.Norm(d2.MaxElem(d, r2.Vec{})) + math.Min(0, d2.Max(d))
	}
	return nil
}

// Bounds returns the bounding box of the rectangle.
func (s *rectangle) Bounds() r2.Box {
	return r2.Box{Min: r2.Sub(s.center, s.half), Max: r2.Add(s.center, s.half)}
}

// 2D Polygon

// polygon is an SDF2 made from a closed set of line segments.
type polygon struct {
	vertex []r2.Vec  // vertices, closed loop
	vector []r2.Vec  // unit line vectors
	length []float64 // line lengths
	bb     r2.Box
}

// Polygon returns an SDF2 made from a closed set of line segments. The
// loop is closed automatically if the last vertex differs from the first.
// Inside and outside are decided by winding number so either orientation
// works.
func Polygon(vertex []r2.Vec) distmesh.SDF2 {
	n := len(vertex)
	if n < 3 {
		panic("number of vertices < 3")
	}
	s := polygon{}
	s.vertex = append(s.vertex, vertex...)
	if !d2.EqualWithin(vertex[0], vertex[n-1], tolerance) {
		s.vertex = append(s.vertex, vertex[0])
	}
	nsegs := len(s.vertex) - 1
	if nsegs < 3 {
		panic("number of distinct vertices < 3")
	}
	s.vector = make([]r2.Vec, nsegs)
	s.length = make([]float64, nsegs)
	for i := 0; i < nsegs; i++ {
		l := r2.Sub(s.vertex[i+1], s.vertex[i])
		s.length[i] = r2.Norm(l)
		if s.length[i] == 0 {
			panic("repeated polygon vertex")
		}
		s.vector[i] = r2.Unit(l)
	}
	s.bb = r2.Box(d2.Set(s.vertex).Bounds())
	if d2.Box(s.bb).Empty() {
		panic("polygon has no area")
	}
	return &s
}

// Evaluate stores the distance to the polygon of every position in dist.
func (s *polygon) Evaluate(pos []r2.Vec, dist []float64, userData any) error {
	for i, p := range pos {
		dist[i] = s.distance(p)
	}
	return nil
}

func (s *polygon) distance(p r2.Vec) float64 {
	dd := math.MaxFloat64 // d^2 to polygon (>0)
	wn := 0               // winding number (inside/outside)
	nsegs := len(s.vertex) - 1
	pb := r2.Sub(p, s.vertex[0])
	for i := 0; i < nsegs; i++ {
		a := s.vertex[i]
		b := s.vertex[i+1]
		pa := pb
		pb = r2.Sub(p, b)

		t := r2.Dot(pa, s.vector[i])                                  // t-parameter of projection onto line
		dn := r2.Dot(pa, r2.Vec{X: s.vector[i].Y, Y: -s.vector[i].X}) // normal distance from p to line

		switch {
		case t < 0:
			dd = math.Min(dd, r2.Norm2(pa))
		case t > s.length[i]:
			dd = math.Min(dd, r2.Norm2(pb))
		default:
			dd = math.Min(dd, dn*dn)
		}

		// See: http://geomalgorithms.com/a03-_inclusion.html
		if a.Y <= p.Y {
			if b.Y > p.Y && dn < 0 { // upward crossing, p left of segment
				wn++
			}
		} else if b.Y <= p.Y && dn > 0 { // downward crossing, p right of segment
			wn--
		}
	}
	d := math.Sqrt(dd)
	if wn != 0 {
		return -d
	}
	return d
}

// Bounds returns the bounding box of a 2d polygon.
func (s *polygon) Bounds() r2.Box {
	return s.bb
}

// Nagon return the vertices of a N sided regular polygon centered at the
// origin with its first vertex on the positive x axis.
func Nagon(n int, radius float64) d2.Set {
	if n < 3 {
		panic("n < 3")
	}
	if !(radius > 0) {
		panic("radius <= 0")
	}
	v := make(d2.Set, n)
	dtheta := 2 * math.Pi / float64(n)
	for i := range v {
		v[i] = d2.Rotate(r2.Vec{X: radius}, float64(i)*dtheta)
	}
	return v
}
