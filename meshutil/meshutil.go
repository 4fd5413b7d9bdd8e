// Package meshutil provides post-processing and inspection routines for
// triangle meshes given as a node list and index triples.
package meshutil

import (
	"math"
	"sort"

	"github.com/soypat/distmesh/internal/d2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// Edges returns the unique edges of the triangles. Each edge is stored with
// its lower node index first and the result is sorted.
func Edges(tris [][3]int) [][2]int {
	edges := make([][2]int, 0, 3*len(tris))
	for _, t := range tris {
		for j := 0; j < 3; j++ {
			edges = append(edges, edgeOf(t[j], t[(j+1)%3]))
		}
	}
	sortEdges(edges)
	// Compact duplicates in place.
	n := 0
	for i := range edges {
		if i > 0 && edges[i] == edges[n-1] {
			continue
		}
		edges[n] = edges[i]
		n++
	}
	return edges[:n:n]
}

// BoundaryEdges returns the edges that belong to exactly one triangle.
// Edges keep the direction they have in their triangle so that boundary
// loops of counter-clockwise triangles run counter-clockwise.
func BoundaryEdges(tris [][3]int) [][2]int {
	count := make(map[[2]int]int, 3*len(tris))
	for _, t := range tris {
		for j := 0; j < 3; j++ {
			count[edgeOf(t[j], t[(j+1)%3])]++
		}
	}
	var boundary [][2]int
	for _, t := range tris {
		for j := 0; j < 3; j++ {
			a, b := t[j], t[(j+1)%3]
			if count[edgeOf(a, b)] == 1 {
				boundary = append(boundary, [2]int{a, b})
			}
		}
	}
	sortEdges(boundary)
	return boundary
}

// Areas returns the signed area of every triangle. Counter-clockwise
// triangles have positive area.
func Areas(nodes []r2.Vec, tris [][3]int) []float64 {
	areas := make([]float64, len(tris))
	for i, t := range tris {
		areas[i] = 0.5 * d2.Orient(nodes[t[0]], nodes[t[1]], nodes[t[2]])
	}
	return areas
}

// Quality returns the radius ratio 2*r/R of every triangle where r is the
// inscribed radius and R the circumscribed radius. Equilateral triangles
// have quality 1 and degenerate triangles have quality 0.
func Quality(nodes []r2.Vec, tris [][3]int) []float64 {
	q := make([]float64, len(tris))
	for i, t := range tris {
		a := r2.Norm(r2.Sub(nodes[t[1]], nodes[t[2]]))
		b := r2.Norm(r2.Sub(nodes[t[2]], nodes[t[0]]))
		c := r2.Norm(r2.Sub(nodes[t[0]], nodes[t[1]]))
		den := a * b * c
		if den == 0 {
			continue
		}
		q[i] = (b + c - a) * (c + a - b) * (a + b - c) / den
	}
	return q
}

// EdgeStats summarizes the lengths of a set of edges.
type EdgeStats struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Stats computes length statistics of the edges over nodes.
func Stats(nodes []r2.Vec, edges [][2]int) EdgeStats {
	if len(edges) == 0 {
		return EdgeStats{}
	}
	lengths := EdgeLengths(nodes, edges)
	mean, std := stat.MeanStdDev(lengths, nil)
	return EdgeStats{
		Count:  len(lengths),
		Min:    floats.Min(lengths),
		Max:    floats.Max(lengths),
		Mean:   mean,
		StdDev: std,
	}
}

// EdgeLengths returns the length of every edge.
func EdgeLengths(nodes []r2.Vec, edges [][2]int) []float64 {
	lengths := make([]float64, len(edges))
	for i, e := range edges {
		lengths[i] = r2.Norm(r2.Sub(nodes[e[0]], nodes[e[1]]))
	}
	return lengths
}

// Fix cleans up a mesh: nodes closer than tol times the largest extent of
// the mesh are merged, nodes not referenced by any triangle are removed and
// triangles are oriented counter-clockwise. Surviving nodes keep their
// relative order so a prefix of fixed nodes stays a prefix. The inputs are
// not modified.
func Fix(nodes []r2.Vec, tris [][3]int, tol float64) ([]r2.Vec, [][3]int) {
	if len(nodes) == 0 {
		return nil, nil
	}
	snap := tol * d2.Max(d2.Set(nodes).Bounds().Size())
	// Merge duplicates keeping the first occurrence.
	remap := make([]int, len(nodes))
	var unique []r2.Vec
	if snap > 0 {
		seen := make(map[[2]int64]int, len(nodes))
		for i, p := range nodes {
			key := [2]int64{int64(math.Round(p.X / snap)), int64(math.Round(p.Y / snap))}
			if j, ok := seen[key]; ok {
				remap[i] = j
				continue
			}
			seen[key] = len(unique)
			remap[i] = len(unique)
			unique = append(unique, p)
		}
	} else {
		unique = append(unique, nodes...)
		for i := range remap {
			remap[i] = i
		}
	}

	// Drop triangles that lost a vertex to merging and mark used nodes.
	used := make([]bool, len(unique))
	fixed := make([][3]int, 0, len(tris))
	for _, t := range tris {
		t = [3]int{remap[t[0]], remap[t[1]], remap[t[2]]}
		if t[0] == t[1] || t[1] == t[2] || t[2] == t[0] {
			continue
		}
		used[t[0]], used[t[1]], used[t[2]] = true, true, true
		fixed = append(fixed, t)
	}

	compact := make([]int, len(unique))
	outNodes := make([]r2.Vec, 0, len(unique))
	for i, p := range unique {
		if !used[i] {
			compact[i] = -1
			continue
		}
		compact[i] = len(outNodes)
		outNodes = append(outNodes, p)
	}
	for i, t := range fixed {
		t = [3]int{compact[t[0]], compact[t[1]], compact[t[2]]}
		if d2.Orient(outNodes[t[0]], outNodes[t[1]], outNodes[t[2]]) < 0 {
			t[1], t[2] = t[2], t[1]
		}
		fixed[i] = t
	}
	return outNodes, fixed
}

func edgeOf(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func sortEdges(edges [][2]int) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
}
