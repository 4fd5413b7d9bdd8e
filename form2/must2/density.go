package must2

import (
	"math"

	"github.com/soypat/distmesh"
	"gonum.org/v1/gonum/spatial/r2"
)

type graded struct {
	s          distmesh.Field
	hmin, rate float64
	hmax       float64
}

// DistanceGraded returns a density field that grows linearly with the
// distance to the zero level set of s: h = hmin + rate*|d|, capped at hmax.
// A zero hmax means no cap. Use it to refine a mesh near a boundary.
func DistanceGraded(s distmesh.Field, hmin, rate, hmax float64) distmesh.Field {
	switch {
	case s == nil:
		panic("nil field argument to DistanceGraded")
	case !(hmin > 0):
		panic("hmin <= 0")
	case rate < 0 || math.IsNaN(rate):
		panic("negative or NaN rate")
	case hmax != 0 && !(hmax >= hmin):
		panic("hmax < hmin")
	}
	return &graded{s: s, hmin: hmin, rate: rate, hmax: hmax}
}

// Evaluate stores the graded edge length of every position in dst.
func (g *graded) Evaluate(pos []r2.Vec, dst []float64, userData any) error {
	err := g.s.Evaluate(pos, dst, userData)
	if err != nil {
		return err
	}
	for i, d := range dst {
		h := g.hmin + g.rate*math.Abs(d)
		if g.hmax > 0 {
			h = math.Min(h, g.hmax)
		}
		dst[i] = h
	}
	return nil
}
