package distmesh

import (
	"math"

	"github.com/pkg/errors"
	"github.com/soypat/distmesh/internal/d2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// springs holds the per bar state of the force model. Bars behave as
// springs that only repel: a bar shorter than its desired length pushes its
// endpoints apart and a longer bar exerts no force.
type springs struct {
	// length is the current length L of each bar.
	length []float64
	// target is the desired length L0 of each bar.
	target []float64
}

// compute evaluates bar lengths and desired lengths and accumulates the
// resulting net force on every node into force, which must be of the same
// length as nodes. Forces on the first nfix nodes are zeroed. The density
// field is evaluated over all bar midpoints in a single call.
func (s *springs) compute(fh Field, nodes []r2.Vec, bars [][2]int, nfix int, fscale float64, force []r2.Vec, vp *VecPool) error {
	for i := range force {
		force[i] = r2.Vec{}
	}
	nb := len(bars)
	if nb == 0 {
		return nil
	}
	s.length = grow(s.length, nb)
	s.target = grow(s.target, nb)
	mid := vp.V2.Acquire(nb)
	defer vp.V2.Release(mid)
	for i, b := range bars {
		p1, p2 := nodes[b[0]], nodes[b[1]]
		s.length[i] = r2.Norm(r2.Sub(p1, p2))
		mid[i] = d2.Midpoint(p1, p2)
	}
	// hbar is stored in target and scaled in place.
	err := fh.Evaluate(mid, s.target, vp)
	if err != nil {
		return errors.Wrap(err, "evaluating density at bar midpoints")
	}
	sumL2 := floats.Dot(s.length, s.length)
	sumH2 := floats.Dot(s.target, s.target)
	if !(sumH2 > 0) || math.IsInf(sumH2, 0) {
		return errors.Errorf("density field sum of squares at bar midpoints is %g", sumH2)
	}
	floats.Scale(fscale*math.Sqrt(sumL2/sumH2), s.target)

	for i, b := range bars {
		L := s.length[i]
		F := s.target[i] - L
		if F <= 0 || L == 0 {
			continue
		}
		// Force vector along the bar pointing from b[1] to b[0].
		fv := r2.Scale(F/L, r2.Sub(nodes[b[0]], nodes[b[1]]))
		force[b[0]] = r2.Add(force[b[0]], fv)
		force[b[1]] = r2.Sub(force[b[1]], fv)
	}
	for i := 0; i < nfix && i < len(force); i++ {
		force[i] = r2.Vec{}
	}
	return nil
}

// removeOvercompressed deletes the non-fixed endpoints of every bar whose
// desired length exceeds twice its actual length. Fixed nodes keep their
// positions at the front of nodes. It returns the shortened node slice
// and the number of removed nodes. Must be called after compute.
func (s *springs) removeOvercompressed(nodes []r2.Vec, bars [][2]int, nfix int) ([]r2.Vec, int) {
	remove := make(map[int]struct{})
	for i, b := range bars {
		if s.target[i] <= 2*s.length[i] {
			continue
		}
		for _, idx := range b {
			if idx >= nfix {
				remove[idx] = struct{}{}
			}
		}
	}
	if len(remove) == 0 {
		return nodes, 0
	}
	n := nfix
	for i := nfix; i < len(nodes); i++ {
		if _, ok := remove[i]; ok {
			continue
		}
		nodes[n] = nodes[i]
		n++
	}
	return nodes[:n], len(nodes) - n
}

// grow returns a slice of length n reusing buf's storage when possible.
func grow[T any](buf []T, n int) []T {
	if cap(buf) < n {
		return make([]T, n)
	}
	return buf[:n]
}
