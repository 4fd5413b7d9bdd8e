package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Box is a 2d bounding box.
type Box r2.Box

// Extend returns a box enclosing two 2d boxes.
func (a Box) Extend(b Box) Box {
	return Box{
		Min: MinElem(a.Min, b.Min),
		Max: MaxElem(a.Max, b.Max),
	}
}

// Translate translates a 2d box.
func (a Box) Translate(v r2.Vec) Box {
	return Box{r2.Add(a.Min, v), r2.Add(a.Max, v)}
}

// Size returns the size of a 2d box.
func (a Box) Size() r2.Vec {
	return r2.Sub(a.Max, a.Min)
}

// Center returns the center of a 2d box.
func (a Box) Center() r2.Vec {
	return r2.Add(a.Min, r2.Scale(0.5, a.Size()))
}

// Enlarge returns a new 2d box enlarged by a size vector.
func (a Box) Enlarge(v r2.Vec) Box {
	v = r2.Scale(0.5, v)
	return Box{r2.Sub(a.Min, v), r2.Add(a.Max, v)}
}

// Empty returns true if the box has no area or has inverted bounds.
func (a Box) Empty() bool {
	sz := a.Size()
	return !(sz.X > 0 && sz.Y > 0)
}

// Contains checks if the 2d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r2.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y &&
		v.X <= a.Max.X && v.Y <= a.Max.Y
}

// Vertices returns a slice of 2d box corner vertices.
func (a Box) Vertices() Set {
	v := make([]r2.Vec, 4)
	v[0] = a.Min                          // bl
	v[1] = r2.Vec{X: a.Max.X, Y: a.Min.Y} // br
	v[2] = r2.Vec{X: a.Min.X, Y: a.Max.Y} // tl
	v[3] = a.Max                          // tr
	return v
}

// HexLattice lays out points inside the box in rows spaced h*sqrt(3)/2 apart
// with points spaced h apart along a row. Every odd row is shifted by h/2 so
// that neighboring points form near equilateral triangles.
func (a Box) HexLattice(h float64) Set {
	if h <= 0 || a.Empty() {
		return nil
	}
	dy := h * math.Sqrt(3) / 2
	// Absorb rounding so that the far edge of the box is not lost.
	tol := 1e-9 * h
	sz := a.Size()
	nx := int(math.Floor((sz.X+tol)/h)) + 1
	ny := int(math.Floor((sz.Y+tol)/dy)) + 1
	lattice := make(Set, 0, nx*ny)
	for j := 0; j < ny; j++ {
		y := a.Min.Y + float64(j)*dy
		offset := 0.0
		if j%2 == 1 {
			offset = h / 2
		}
		for i := 0; i < nx; i++ {
			x := a.Min.X + offset + float64(i)*h
			if x > a.Max.X+tol {
				break
			}
			lattice = append(lattice, r2.Vec{X: x, Y: y})
		}
	}
	return lattice
}
