package render_test

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/soypat/distmesh/render"
	"gonum.org/v1/plot/cmpimg"
	"gonum.org/v1/plot/vg"
)

func TestWriteImage(t *testing.T) {
	const (
		// imgDelta is the normalized tolerance of the image comparison, 0 for a perfect match.
		imgDelta = 0
		size     = 6 * vg.Centimeter
	)
	m := fan(20)
	var b1, b2 bytes.Buffer
	err := render.WriteImage(&b1, m, 2, size, size, "png")
	if err != nil {
		t.Fatal(err)
	}
	err = render.WriteImage(&b2, m, 2, size, size, "png")
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(b1.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Fatal("empty image")
	}
	equal, err := cmpimg.EqualApprox("png", b1.Bytes(), b2.Bytes(), imgDelta)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Error("rendering the same mesh twice gave different images")
	}
}

func TestPlotDataRange(t *testing.T) {
	m := fan(5)
	mp := render.NewMeshPlotter(m)
	xmin, xmax, ymin, ymax := mp.DataRange()
	if xmin != 0 || xmax != 5 || ymin != 0 || ymax != 1.5 {
		t.Errorf("unexpected data range x[%g, %g] y[%g, %g]", xmin, xmax, ymin, ymax)
	}
	if _, err := render.Plot(m, len(m.Nodes)+1); err == nil {
		t.Error("expected error for out of range fixed node count")
	}
	if err := render.WriteImage(&bytes.Buffer{}, m, 0, vg.Centimeter, vg.Centimeter, "bogus"); err == nil {
		t.Error("expected error for unknown image format")
	}
}
