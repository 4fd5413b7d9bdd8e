package must2

import (
	"math"

	"github.com/soypat/distmesh"
	"github.com/soypat/distmesh/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Union of SDF2s

type union struct {
	s  []distmesh.SDF2
	bb r2.Box
}

// Union returns the union of the given SDF2s. The resulting distance is
// exact outside the shapes and a bound inside where they overlap.
func Union(sdfs ...distmesh.SDF2) distmesh.SDF2 {
	if len(sdfs) == 0 {
		panic("no sdfs given to Union")
	}
	for _, s := range sdfs {
		if s == nil {
			panic("nil sdf argument to Union")
		}
	}
	if len(sdfs) == 1 {
		return sdfs[0]
	}
	u := union{s: append([]distmesh.SDF2(nil), sdfs...)}
	bb := d2.Box(sdfs[0].Bounds())
	for _, s := range sdfs[1:] {
		bb = bb.Extend(d2.Box(s.Bounds()))
	}
	u.bb = r2.Box(bb)
	return &u
}

// Evaluate stores the minimum of the distances of the shapes in dist.
func (u *union) Evaluate(pos []r2.Vec, dist []float64, userData any) error {
	vp, err := distmesh.GetVecPool(userData)
	if err != nil {
		return err
	}
	err = u.s[0].Evaluate(pos, dist, userData)
	if err != nil {
		return err
	}
	aux := vp.Float.Acquire(len(dist))
	defer vp.Float.Release(aux)
	for _, s := range u.s[1:] {
		err = s.Evaluate(pos, aux, userData)
		if err != nil {
			return err
		}
		for i, d := range aux {
			dist[i] = math.Min(dist[i], d)
		}
	}
	return nil
}

// Bounds returns the bounding box enclosing all shapes.
func (u *union) Bounds() r2.Box { return u.bb }

// Difference of SDF2s

type diff struct {
	s1, s2 distmesh.SDF2
}

// Difference returns the region of s1 that is not in s2.
func Difference(s1, s2 distmesh.SDF2) distmesh.SDF2 {
	if s1 == nil || s2 == nil {
		panic("nil sdf argument to Difference")
	}
	return &diff{s1: s1, s2: s2}
}

// Evaluate stores max(d1, -d2) in dist.
func (u *diff) Evaluate(pos []r2.Vec, dist []float64, userData any) error {
	vp, err := distmesh.GetVecPool(userData)
	if err != nil {
		return err
	}
	aux := vp.Float.Acquire(len(dist))
	defer vp.Float.Release(aux)
	err = u.s1.Evaluate(pos, dist, userData)
	if err != nil {
		return err
	}
	err = u.s2.Evaluate(pos, aux, userData)
	if err != nil {
		return err
	}
	for i, d := range aux {
		dist[i] = math.Max(dist[i], -d)
	}
	return nil
}

// Bounds returns the bounding box of s1.
func (u *diff) Bounds() r2.Box { return u.s1.Bounds() }

// Intersection of SDF2s

type intersect struct {
	s1, s2 distmesh.SDF2
	bb     r2.Box
}

// Intersection returns the region contained in both s1 and s2.
func Intersection(s1, s2 distmesh.SDF2) distmesh.SDF2 {
	if s1 == nil || s2 == nil {
		panic("nil sdf argument to Intersection")
	}
	b1, b2 := s1.Bounds(), s2.Bounds()
	bb := r2.Box{Min: d2.MaxElem(b1.Min, b2.Min), Max: d2.MinElem(b1.Max, b2.Max)}
	if d2.Box(bb).Empty() {
		panic("sdfs do not intersect")
	}
	return &intersect{s1: s1, s2: s2, bb: bb}
}

// Evaluate stores max(d1, d2) in dist.
func (u *intersect) Evaluate(pos []r2.Vec, dist []float64, userData any) error {
	vp, err := distmesh.GetVecPool(userData)
	if err != nil {
		return err
	}
	aux := vp.Float.Acquire(len(dist))
	defer vp.Float.Release(aux)
	err = u.s1.Evaluate(pos, dist, userData)
	if err != nil {
		return err
	}
	err = u.s2.Evaluate(pos, aux, userData)
	if err != nil {
		return err
	}
	for i, d := range aux {
		dist[i] = math.Max(dist[i], d)
	}
	return nil
}

// Bounds returns the overlap of the bounding boxes.
func (u *intersect) Bounds() r2.Box { return u.bb }

// Translation

type translate struct {
	s     distmesh.SDF2
	delta r2.Vec
}

// Translate moves the shape s by delta.
func Translate(s distmesh.SDF2, delta r2.Vec) distmesh.SDF2 {
	if s == nil {
		panic("nil sdf argument to Translate")
	}
	if !d2.IsFinite(delta) {
		panic("non-finite translation")
	}
	return &translate{s: s, delta: delta}
}

// Evaluate evaluates the underlying shape at positions moved by -delta.
func (t *translate) Evaluate(pos []r2.Vec, dist []float64, userData any) error {
	vp, err := distmesh.GetVecPool(userData)
	if err != nil {
		return err
	}
	moved := vp.V2.Acquire(len(pos))
	defer vp.V2.Release(moved)
	for i, p := range pos {
		moved[i] = r2.Sub(p, t.delta)
	}
	return t.s.Evaluate(moved, dist, userData)
}

// Bounds returns the translated bounding box.
func (t *translate) Bounds() r2.Box {
	return r2.Box(d2.Box(t.s.Bounds()).Translate(t.delta))
}

// Rotation

type rotate struct {
	s     distmesh.SDF2
	theta float64
	bb    r2.Box
}

// Rotate rotates the shape s by theta radians counter-clockwise about the
// origin.
func Rotate(s distmesh.SDF2, theta float64) distmesh.SDF2 {
	if s == nil {
		panic("nil sdf argument to Rotate")
	}
	if math.IsNaN(theta) || math.IsInf(theta, 0) {
		panic("non-finite rotation angle")
	}
	verts := d2.Box(s.Bounds()).Vertices()
	for i := range verts {
		verts[i] = d2.Rotate(verts[i], theta)
	}
	return &rotate{s: s, theta: theta, bb: r2.Box(verts.Bounds())}
}

// Evaluate evaluates the underlying shape at positions rotated by -theta.
func (r *rotate) Evaluate(pos []r2.Vec, dist []float64, userData any) error {
	vp, err := distmesh.GetVecPool(userData)
	if err != nil {
		return err
	}
	rotated := vp.V2.Acquire(len(pos))
	defer vp.V2.Release(rotated)
	for i, p := range pos {
		rotated[i] = d2.Rotate(p, -r.theta)
	}
	return r.s.Evaluate(rotated, dist, userData)
}

// Bounds returns the box enclosing the rotated bounding box.
func (r *rotate) Bounds() r2.Box { return r.bb }

// Offset

type offset struct {
	s      distmesh.SDF2
	radius float64
}

// Offset grows the shape by radius, or shrinks it for negative radius. Convex
// corners of a grown shape are rounded.
func Offset(s distmesh.SDF2, radius float64) distmesh.SDF2 {
	if s == nil {
		panic("nil sdf argument to Offset")
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) {
		panic("non-finite offset")
	}
	return &offset{s: s, radius: radius}
}

// Evaluate stores the underlying distance minus the offset radius in dist.
func (o *offset) Evaluate(pos []r2.Vec, dist []float64, userData any) error {
	err := o.s.Evaluate(pos, dist, userData)
	if err != nil {
		return err
	}
	for i := range dist {
		dist[i] -= o.radius
	}
	return nil
}

// Bounds returns the underlying bounding box enlarged by the offset radius.
func (o *offset) Bounds() r2.Box {
	if o.radius <= 0 {
		return o.s.Bounds()
	}
	return r2.Box(d2.Box(o.s.Bounds()).Enlarge(d2.Elem(2 * o.radius)))
}
