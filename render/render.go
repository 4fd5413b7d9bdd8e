// Package render writes planar triangle meshes to STL files and draws them
// as images.
package render

import (
	"io"

	"github.com/soypat/distmesh"
	"gonum.org/v1/gonum/spatial/r2"
)

// Triangle2 is a planar triangle given by its three vertices.
type Triangle2 [3]r2.Vec

// Renderer streams triangles. ReadTriangles returns io.EOF once all
// triangles have been read.
type Renderer interface {
	ReadTriangles(t []Triangle2) (int, error)
}

// NewMeshRenderer returns a Renderer over the triangles of m.
func NewMeshRenderer(m distmesh.Mesh) Renderer {
	return &meshRenderer{mesh: m}
}

type meshRenderer struct {
	mesh distmesh.Mesh
	next int
}

func (r *meshRenderer) ReadTriangles(t []Triangle2) (n int, err error) {
	tris := r.mesh.Triangles[r.next:]
	nodes := r.mesh.Nodes
	for n < len(t) && n < len(tris) {
		idx := tris[n]
		t[n] = Triangle2{nodes[idx[0]], nodes[idx[1]], nodes[idx[2]]}
		n++
	}
	r.next += n
	if r.next == len(r.mesh.Triangles) {
		err = io.EOF
	}
	return n, err
}
