package distmesh

import (
	"context"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/soypat/distmesh/meshutil"
	"gonum.org/v1/gonum/spatial/r2"
)

// Status describes how a relaxation run ended.
type Status int

const (
	// Converged means every interior node moved less than DPTol*h0 in the
	// last step.
	Converged Status = iota
	// Exhausted means MaxIterations steps ran without converging. The mesh
	// is usable but may not be at equilibrium.
	Exhausted
	// Collapsed means the node set could no longer be triangulated. The
	// mesh is the last valid one.
	Collapsed
	// Canceled means the context was done before the run ended.
	Canceled
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	case Collapsed:
		return "collapsed"
	case Canceled:
		return "canceled"
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

// Mesh is a triangle mesh. Triangles index into Nodes and are oriented
// counter-clockwise.
type Mesh struct {
	Nodes     []r2.Vec
	Triangles [][3]int
}

// Result is the outcome of a mesh generation run.
type Result struct {
	Mesh
	// NFix is the number of fixed nodes at the start of Nodes.
	NFix   int
	Status Status
	// Iterations is the number of iterations run.
	Iterations int
	// Retriangulations counts the triangulations computed.
	Retriangulations int
	// MaxMove is the largest relative displacement of an interior node in
	// the last step, measured in units of h0.
	MaxMove float64
	// MaxMoves is the history of MaxMove, one entry per relaxation step.
	MaxMoves []float64
}

// Generate meshes the domain where fd is negative with triangles whose edge
// lengths follow fh relative to h0, the edge length where fh evaluates to 1.
// The initial nodes are laid out over bbox, see Initialize. If bbox is the zero
// value and fd is an SDF2 its bounding box is used. The points of pfix are
// kept fixed during relaxation and come first in the resulting nodes.
//
// A non-nil error is returned when the mesh could not be generated. If no
// node besides the fixed points lies inside the domain ErrDegenerateDomain is
// returned before relaxation starts. On ErrCollapsed or cancellation the
// Result still holds the last valid mesh.
// Running out of iterations is not an error, see Result.Status.
func Generate(ctx context.Context, fd, fh Field, h0 float64, bbox r2.Box, pfix []r2.Vec, cfg Config) (Result, error) {
	if bbox == (r2.Box{}) {
		if s, ok := fd.(SDF2); ok {
			bbox = s.Bounds()
		}
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	cfg = cfg.withDefaults()
	nodes, nfix, err := Initialize(fd, fh, h0, bbox, pfix, cfg)
	if err != nil {
		return Result{}, err
	}
	if len(nodes) == nfix {
		return Result{}, errors.Wrapf(ErrDegenerateDomain, "no nodes inside domain besides %d fixed", nfix)
	}
	cfg.Logger.WithFields(logrus.Fields{
		"nodes": len(nodes),
		"fixed": nfix,
	}).Debug("initialized node set")
	return relax(ctx, fd, fh, h0, nodes, nfix, cfg)
}

// Relax runs the relaxation loop from the given node set, the first nfix of
// which are held fixed. It can be used to resume a run from a previous
// Result's nodes. nodes is not modified.
func Relax(ctx context.Context, fd, fh Field, h0 float64, nodes []r2.Vec, nfix int, cfg Config) (Result, error) {
	switch {
	case !(h0 > 0):
		return Result{}, errors.Errorf("non-positive edge length h0=%g", h0)
	case nfix < 0 || nfix > len(nodes):
		return Result{}, errors.Errorf("fixed node count %d out of range [0, %d]", nfix, len(nodes))
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	cfg = cfg.withDefaults()
	return relax(ctx, fd, fh, h0, append([]r2.Vec(nil), nodes...), nfix, cfg)
}

func relax(ctx context.Context, fd, fh Field, h0 float64, nodes []r2.Vec, nfix int, cfg Config) (Result, error) {
	if len(nodes) < 3 {
		return Result{}, errors.Wrapf(ErrDegenerateDomain, "got %d nodes", len(nodes))
	}
	r := relaxer{
		fd:   fd,
		fh:   fh,
		h0:   h0,
		cfg:  cfg,
		log:  cfg.Logger,
		p:    nodes,
		nfix: nfix,
	}
	res, err := r.run(ctx)
	if leak := r.vp.AssertAllReleased(); leak != nil && err == nil {
		err = leak
	}
	r.log.WithFields(logrus.Fields{
		"status":     res.Status,
		"iterations": res.Iterations,
		"maxmove":    res.MaxMove,
		"nodes":      len(res.Nodes),
		"triangles":  len(res.Triangles),
	}).Info("relaxation finished")
	return res, err
}

// relaxer holds the state of a single relaxation run.
type relaxer struct {
	fd, fh Field
	h0     float64
	cfg    Config
	log    logrus.FieldLogger
	vp     VecPool

	p    []r2.Vec
	nfix int
	// pold holds the node positions at the last triangulation and is the
	// node set of last.
	pold []r2.Vec
	tris [][3]int
	bars [][2]int
	// stale is set when p no longer matches tris.
	stale bool
	// last is the most recent valid mesh.
	last Mesh

	sp    springs
	force []r2.Vec
	dist  []float64

	res Result
}

func (r *relaxer) run(ctx context.Context) (Result, error) {
	var (
		geps     = r.cfg.GeomEps * r.h0
		deps     = r.cfg.DiffEps * r.h0
		interval = r.cfg.DensityControlInterval
	)
	r.res.NFix = r.nfix
	r.stale = true
	for it := 0; it < r.cfg.MaxIterations; it++ {
		if err := ctx.Err(); err != nil {
			return r.finish(Canceled), err
		}
		r.res.Iterations = it + 1
		if len(r.p) < 3 {
			return r.collapse(errors.Errorf("%d nodes left", len(r.p)))
		}
		if r.stale || r.maxDisplacement()/r.h0 > r.cfg.TTol {
			err := r.retriangulate(geps)
			if err != nil {
				return r.collapse(err)
			}
			r.log.WithFields(logrus.Fields{
				"iteration": it,
				"nodes":     len(r.p),
				"triangles": len(r.tris),
				"bars":      len(r.bars),
			}).Debug("retriangulated")
		}

		r.force = grow(r.force, len(r.p))
		err := r.sp.compute(r.fh, r.p, r.bars, r.nfix, r.cfg.FScale, r.force, &r.vp)
		if err != nil {
			return r.finish(Collapsed), err
		}

		if interval > 0 && (it+1)%interval == 0 {
			var removed int
			r.p, removed = r.sp.removeOvercompressed(r.p, r.bars, r.nfix)
			if removed > 0 {
				r.stale = true
				r.log.WithFields(logrus.Fields{
					"iteration": it,
					"removed":   removed,
					"nodes":     len(r.p),
				}).Debug("density control removed nodes")
				continue
			}
		}

		// Explicit Euler step. Forces on fixed nodes are zero.
		dt := r.cfg.DeltaT
		for i := r.nfix; i < len(r.p); i++ {
			r.p[i] = r2.Add(r.p[i], r2.Scale(dt, r.force[i]))
		}

		r.dist = grow(r.dist, len(r.p))
		err = r.fd.Evaluate(r.p, r.dist, &r.vp)
		if err != nil {
			return r.finish(Collapsed), errors.Wrap(err, "evaluating distance at nodes")
		}
		_, err = projectOutside(r.fd, r.p, r.dist, r.nfix, deps, &r.vp)
		if err != nil {
			return r.finish(Collapsed), err
		}

		var maxmove float64
		for i := r.nfix; i < len(r.p); i++ {
			if r.dist[i] < -geps {
				maxmove = math.Max(maxmove, dt*r2.Norm(r.force[i]))
			}
		}
		maxmove /= r.h0
		r.res.MaxMove = maxmove
		r.res.MaxMoves = append(r.res.MaxMoves, maxmove)
		if maxmove < r.cfg.DPTol {
			return r.finish(Converged), nil
		}
	}
	return r.finish(Exhausted), nil
}

// retriangulate recomputes the interior triangles and bars of the current
// node positions and records them as the last valid mesh.
func (r *relaxer) retriangulate(geps float64) error {
	tris, err := r.cfg.Triangulator.Triangulate(r.p)
	if err != nil {
		return err
	}
	tris, err = interiorTriangles(r.fd, r.p, tris, geps, &r.vp)
	if err != nil {
		return err
	}
	if len(tris) == 0 {
		return errors.New("no triangles inside domain")
	}
	r.pold = append([]r2.Vec(nil), r.p...)
	r.tris = tris
	r.bars = meshutil.Edges(tris)
	r.stale = false
	r.last = Mesh{Nodes: r.pold, Triangles: tris}
	r.res.Retriangulations++
	return nil
}

// maxDisplacement returns the largest distance a node moved since the last
// triangulation.
func (r *relaxer) maxDisplacement() float64 {
	var max2 float64
	for i, p := range r.p {
		max2 = math.Max(max2, r2.Norm2(r2.Sub(p, r.pold[i])))
	}
	return math.Sqrt(max2)
}

func (r *relaxer) collapse(cause error) (Result, error) {
	r.stale = true
	return r.finish(Collapsed), errors.Wrapf(ErrCollapsed, "iteration %d: %v", r.res.Iterations-1, cause)
}

// finish fills in the Result with copies of the current mesh, or of the last
// valid one if the current nodes do not match the triangles.
func (r *relaxer) finish(status Status) Result {
	res := r.res
	res.Status = status
	mesh := Mesh{Nodes: r.p, Triangles: r.tris}
	if r.stale {
		mesh = r.last
	}
	res.Nodes = append([]r2.Vec(nil), mesh.Nodes...)
	res.Triangles = append([][3]int(nil), mesh.Triangles...)
	return res
}
