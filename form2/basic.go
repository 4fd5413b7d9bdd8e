// Package form2 provides signed distance fields of common planar shapes,
// boolean and rigid combinations of them, and density fields for use with
// distmesh. Constructors return an error for invalid arguments. Package
// must2 holds panicking versions of the same constructors.
package form2

import (
	"fmt"
	"runtime/debug"

	"github.com/soypat/distmesh"
	"github.com/soypat/distmesh/form2/must2"
	"gonum.org/v1/gonum/spatial/r2"
)

type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s", s.panicObj)
}

func recoverShape(err *error) {
	if a := recover(); a != nil {
		*err = &shapeErr{
			panicObj: a,
			stack:    string(debug.Stack()),
		}
	}
}

// Circle returns the SDF2 for a 2d circle centered at the origin.
func Circle(radius float64) (s distmesh.SDF2, err error) {
	defer recoverShape(&err)
	return must2.Circle(radius), err
}

// Rectangle returns the exact SDF2 of the axis aligned rectangle spanning bb.
func Rectangle(bb r2.Box) (s distmesh.SDF2, err error) {
	defer recoverShape(&err)
	return must2.Rectangle(bb), err
}

// Polygon returns an SDF2 made from a closed set of line segments.
func Polygon(vertex []r2.Vec) (s distmesh.SDF2, err error) {
	defer recoverShape(&err)
	return must2.Polygon(vertex), err
}

// Nagon return the vertices of a N sided regular polygon.
func Nagon(n int, radius float64) (v []r2.Vec, err error) {
	defer recoverShape(&err)
	return must2.Nagon(n, radius), err
}

// Union returns the union of the given SDF2s.
func Union(sdfs ...distmesh.SDF2) (s distmesh.SDF2, err error) {
	defer recoverShape(&err)
	return must2.Union(sdfs...), err
}

// Difference returns the region of s1 that is not in s2.
func Difference(s1, s2 distmesh.SDF2) (s distmesh.SDF2, err error) {
	defer recoverShape(&err)
	return must2.Difference(s1, s2), err
}

// Intersection returns the region contained in both s1 and s2.
func Intersection(s1, s2 distmesh.SDF2) (s distmesh.SDF2, err error) {
	defer recoverShape(&err)
	return must2.Intersection(s1, s2), err
}

// Translate moves s by delta.
func Translate(s distmesh.SDF2, delta r2.Vec) (_ distmesh.SDF2, err error) {
	defer recoverShape(&err)
	return must2.Translate(s, delta), err
}

// Rotate rotates s by theta radians counter-clockwise about the origin.
func Rotate(s distmesh.SDF2, theta float64) (_ distmesh.SDF2, err error) {
	defer recoverShape(&err)
	return must2.Rotate(s, theta), err
}

// Offset grows s by radius, or shrinks it for negative radius.
func Offset(s distmesh.SDF2, radius float64) (_ distmesh.SDF2, err error) {
	defer recoverShape(&err)
	return must2.Offset(s, radius), err
}
