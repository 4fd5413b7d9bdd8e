package distmesh

import (
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
)

// Field is a scalar field over the plane evaluated in batches. Both the
// signed distance function describing a domain and the density function
// describing the desired edge length are Fields.
type Field interface {
	// Evaluate evaluates the field over pos positions. dst and pos must
	// be of same length. Resulting values are stored in dst.
	//
	// userData facilitates getting data to the evaluators for use in
	// processing, such as a [VecPool].
	Evaluate(pos []r2.Vec, dst []float64, userData any) error
}

// SDF2 is a signed distance field that knows its bounding box.
// The distance is negative inside the domain, zero on its boundary
// and positive outside.
type SDF2 interface {
	Field
	// Bounds returns the SDF's bounding box such that all of the shape is contained within.
	Bounds() r2.Box
}

// FieldFunc adapts a batch function to the Field interface.
type FieldFunc func(pos []r2.Vec, dst []float64) error

// Evaluate calls f(pos, dst).
func (f FieldFunc) Evaluate(pos []r2.Vec, dst []float64, userData any) error {
	return f(pos, dst)
}

// PointFunc adapts a function of a single point to the Field interface.
type PointFunc func(p r2.Vec) float64

// Evaluate calls f on every position.
func (f PointFunc) Evaluate(pos []r2.Vec, dst []float64, userData any) error {
	for i, p := range pos {
		dst[i] = f(p)
	}
	return nil
}

// Smallest batch handed to a single goroutine by ParallelField.
const minParallelChunk = 256

// ParallelField returns a Field that splits each batch among up to workers
// goroutines. Each goroutine evaluates f with its own VecPool so f need not
// be safe for concurrent use of scratch buffers, though it must be safe for
// concurrent calls to Evaluate. If workers <= 0 GOMAXPROCS is used.
// The bounding box of f is kept when f is an SDF2.
func ParallelField(f Field, workers int) Field {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	pf := parallelField{f: f, workers: workers}
	if s, ok := f.(SDF2); ok {
		return &parallelSDF2{parallelField: pf, bb: s.Bounds()}
	}
	return &pf
}

type parallelField struct {
	f       Field
	workers int
}

func (pf *parallelField) Evaluate(pos []r2.Vec, dst []float64, userData any) error {
	n := len(pos)
	if len(dst) != n {
		return errors.Errorf("position and destination length mismatch: %d != %d", n, len(dst))
	}
	if pf.workers == 1 || n < 2*minParallelChunk {
		return pf.f.Evaluate(pos, dst, userData)
	}
	chunk := max((n+pf.workers-1)/pf.workers, minParallelChunk)
	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		start, end := start, min(start+chunk, n)
		g.Go(func() error {
			var vp VecPool
			err := pf.f.Evaluate(pos[start:end], dst[start:end], &vp)
			if err != nil {
				return err
			}
			return vp.AssertAllReleased()
		})
	}
	return g.Wait()
}

type parallelSDF2 struct {
	parallelField
	bb r2.Box
}

func (ps *parallelSDF2) Bounds() r2.Box { return ps.bb }
