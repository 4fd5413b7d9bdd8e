package form2

import (
	"github.com/soypat/distmesh"
	"github.com/soypat/distmesh/form2/must2"
	"gonum.org/v1/gonum/spatial/r2"
)

type uniform struct{}

// Uniform returns the density field that requests the same edge length
// everywhere.
func Uniform() distmesh.Field { return uniform{} }

func (uniform) Evaluate(pos []r2.Vec, dst []float64, userData any) error {
	for i := range dst {
		dst[i] = 1
	}
	return nil
}

// DistanceGraded returns a density field h = hmin + rate*|d| where d is the
// value of s, capped at hmax unless hmax is zero. With s a signed distance
// field this refines the mesh near the boundary of s.
func DistanceGraded(s distmesh.Field, hmin, rate, hmax float64) (_ distmesh.Field, err error) {
	defer recoverShape(&err)
	return must2.DistanceGraded(s, hmin, rate, hmax), err
}
