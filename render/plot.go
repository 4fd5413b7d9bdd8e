package render

import (
	"image/color"
	"io"

	"github.com/pkg/errors"
	"github.com/soypat/distmesh"
	"github.com/soypat/distmesh/internal/d2"
	"github.com/soypat/distmesh/meshutil"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// MeshPlotter implements plot.Plotter and plot.DataRanger by drawing every
// edge of a mesh once.
type MeshPlotter struct {
	mesh  distmesh.Mesh
	edges [][2]int
	draw.LineStyle
}

// NewMeshPlotter returns a plotter of the edges of m drawn with the default
// line style.
func NewMeshPlotter(m distmesh.Mesh) *MeshPlotter {
	ls := plotter.DefaultLineStyle
	ls.Width = vg.Points(0.5)
	return &MeshPlotter{
		mesh:      m,
		edges:     meshutil.Edges(m.Triangles),
		LineStyle: ls,
	}
}

// Plot draws the mesh edges on the canvas.
func (mp *MeshPlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	nodes := mp.mesh.Nodes
	for _, e := range mp.edges {
		a, b := nodes[e[0]], nodes[e[1]]
		c.StrokeLine2(mp.LineStyle, trX(a.X), trY(a.Y), trX(b.X), trY(b.Y))
	}
}

// DataRange returns the bounding box of the mesh nodes.
func (mp *MeshPlotter) DataRange() (xmin, xmax, ymin, ymax float64) {
	if len(mp.mesh.Nodes) == 0 {
		return 0, 0, 0, 0
	}
	bb := d2.Set(mp.mesh.Nodes).Bounds()
	return bb.Min.X, bb.Max.X, bb.Min.Y, bb.Max.Y
}

// Plot returns a plot of the mesh edges with the first nfix nodes marked.
func Plot(m distmesh.Mesh, nfix int) (*plot.Plot, error) {
	if nfix < 0 || nfix > len(m.Nodes) {
		return nil, errors.Errorf("fixed node count %d out of range [0, %d]", nfix, len(m.Nodes))
	}
	p := plot.New()
	p.HideAxes()
	p.Add(NewMeshPlotter(m))
	if nfix > 0 {
		xys := make(plotter.XYs, nfix)
		for i, v := range m.Nodes[:nfix] {
			xys[i].X, xys[i].Y = v.X, v.Y
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, errors.Wrap(err, "plotting fixed nodes")
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(2)
		s.GlyphStyle.Color = color.RGBA{R: 200, A: 255}
		p.Add(s)
	}
	return p, nil
}

// WriteImage draws the mesh and writes it to w in the given image format
// such as "png" or "svg".
func WriteImage(w io.Writer, m distmesh.Mesh, nfix int, width, height vg.Length, format string) error {
	p, err := Plot(m, nfix)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return errors.Wrapf(err, "creating %s image", format)
	}
	_, err = wt.WriteTo(w)
	return err
}
