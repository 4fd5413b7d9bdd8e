package distmesh

import "github.com/pkg/errors"

var (
	// ErrDegenerateDomain is returned when fewer than three nodes exist
	// before relaxation starts, typically because the distance field is
	// positive over the whole bounding box. No mesh is returned.
	ErrDegenerateDomain = errors.New("degenerate domain: fewer than 3 nodes to triangulate")

	// ErrCollapsed is returned when the node set can no longer be
	// triangulated during relaxation. The accompanying Result holds the
	// last valid mesh.
	ErrCollapsed = errors.New("mesh collapsed during relaxation")
)
