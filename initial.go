package distmesh

import (
	"math/rand"

	"github.com/pkg/errors"
	"github.com/soypat/distmesh/internal/d2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// Initialize creates the starting node set for relaxation. A hexagonal lattice
// of spacing h0 is laid over bbox, points outside the domain described by fd
// are discarded, and the rest are sampled with a probability proportional to
// the squared inverse of the desired edge length fh so the density of nodes
// follows fh. The deduplicated fixed points pfix are prepended and their count
// is returned as nfix.
//
// An empty domain is not an error: the returned set then holds only the fixed
// points.
func Initialize(fd, fh Field, h0 float64, bbox r2.Box, pfix []r2.Vec, cfg Config) (nodes []r2.Vec, nfix int, err error) {
	switch {
	case !(h0 > 0):
		return nil, 0, errors.Errorf("non-positive edge length h0=%g", h0)
	case d2.Box(bbox).Empty():
		return nil, 0, errors.Errorf("empty bounding box %v", bbox)
	}
	if err = cfg.Validate(); err != nil {
		return nil, 0, err
	}
	cfg = cfg.withDefaults()
	var vp VecPool
	nodes, nfix, err = initialize(fd, fh, h0, bbox, pfix, cfg, &vp)
	if err != nil {
		return nil, 0, err
	}
	return nodes, nfix, vp.AssertAllReleased()
}

func initialize(fd, fh Field, h0 float64, bbox r2.Box, pfix []r2.Vec, cfg Config, vp *VecPool) ([]r2.Vec, int, error) {
	geps := cfg.GeomEps * h0
	lattice := d2.Box(bbox).HexLattice(h0)

	// Keep lattice points inside the domain.
	if len(lattice) > 0 {
		dist := vp.Float.Acquire(len(lattice))
		err := fd.Evaluate(lattice, dist, vp)
		if err != nil {
			vp.Float.Release(dist)
			return nil, 0, errors.Wrap(err, "evaluating distance over lattice")
		}
		n := 0
		for i, p := range lattice {
			if dist[i] <= -geps {
				lattice[n] = p
				n++
			}
		}
		lattice = lattice[:n]
		vp.Float.Release(dist)
	}

	// Rejection sampling by density.
	if len(lattice) > 0 {
		prob := vp.Float.Acquire(len(lattice))
		err := fh.Evaluate(lattice, prob, vp)
		if err != nil {
			vp.Float.Release(prob)
			return nil, 0, errors.Wrap(err, "evaluating density over lattice")
		}
		for i, h := range prob {
			prob[i] = 1 / (h * h)
		}
		pmax := floats.Max(prob)
		rng := rand.New(rand.NewSource(cfg.Seed))
		n := 0
		for i, p := range lattice {
			if rng.Float64() < prob[i]/pmax {
				lattice[n] = p
				n++
			}
		}
		lattice = lattice[:n]
		vp.Float.Release(prob)
	}

	// Fixed points first, deduplicated.
	tol := 1e-8 * h0
	var fixed d2.Set
	for _, p := range pfix {
		if fixed.IndexWithin(p, tol) < 0 {
			fixed = append(fixed, p)
		}
	}
	nodes := make([]r2.Vec, 0, len(fixed)+len(lattice))
	nodes = append(nodes, fixed...)
	for _, p := range lattice {
		if fixed.IndexWithin(p, tol) < 0 {
			nodes = append(nodes, p)
		}
	}
	return nodes, len(fixed), nil
}
