package render

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/soypat/distmesh/internal/d2"
)

const (
	stlTriangleSize   = 50
	sizeOfSTLHeader   = 84
	trianglesInBuffer = 1 << 10
)

// CreateSTL writes the triangles of a Renderer to a binary STL file at path.
// Triangles lie on the z=0 plane.
func CreateSTL(path string, r Renderer) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	// Header is written last, once the triangle count is known.
	_, err = file.Seek(sizeOfSTLHeader, io.SeekStart)
	if err != nil {
		return err
	}
	rd := &stlReader{r: r}
	n, err := io.CopyBuffer(file, rd, make([]byte, stlTriangleSize*trianglesInBuffer))
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("no triangles to write")
	}
	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		return err
	}
	header := stlHeader{Count: uint32(n / stlTriangleSize)}
	return binary.Write(file, binary.LittleEndian, &header)
}

// WriteSTL writes model triangles to a writer in binary STL format.
func WriteSTL(w io.Writer, model []Triangle2) error {
	if len(model) == 0 {
		return errors.New("empty triangle slice")
	}
	header := stlHeader{Count: uint32(len(model))}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	var b [stlTriangleSize]byte
	for _, triangle := range model {
		stlFromTriangle(triangle).put(b[:])
		_, err := w.Write(b[:])
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadSTL reads a binary STL file of planar triangles written by WriteSTL or
// CreateSTL. Triangles off the z=0 plane or with a normal not along the z
// axis are rejected.
func ReadSTL(r io.Reader) (output []Triangle2, readErr error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, errors.Wrap(err, "STL header read failed")
	}
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf [stlTriangleSize]byte
		d   stlTriangle
	)
	output = make([]Triangle2, 0, header.Count)
	for i := 0; i < int(header.Count); i++ {
		_, err := io.ReadFull(r, buf[:])
		if err != nil {
			return nil, errors.Wrapf(err, "%d/%d STL triangles read", i, header.Count)
		}
		d.get(buf[:])
		if err := d.validate(); err != nil {
			return nil, errors.Wrapf(err, "STL triangle %d", i)
		}
		output = append(output, d.toTriangle2())
	}
	return output, nil
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

type stlReader struct {
	r   Renderer
	buf [trianglesInBuffer]Triangle2
	err error
}

func (w *stlReader) Read(b []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	ntMax := min(len(b)/stlTriangleSize, len(w.buf))
	if ntMax == 0 {
		return 0, errors.New("stlReader requires at least 50 bytes to write a single triangle")
	}
	nt, err := w.r.ReadTriangles(w.buf[:ntMax])
	for i, triangle := range w.buf[:nt] {
		stlFromTriangle(triangle).put(b[i*stlTriangleSize:])
	}
	w.err = err
	if nt > 0 && err == io.EOF {
		// Report EOF on the next call so the last triangles are counted.
		return nt * stlTriangleSize, nil
	}
	return nt * stlTriangleSize, err
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func stlFromTriangle(t Triangle2) stlTriangle {
	var d stlTriangle
	d.Normal[2] = 1
	if d2.Orient(t[0], t[1], t[2]) < 0 {
		d.Normal[2] = -1
	}
	d.Vertex1 = [3]float32{float32(t[0].X), float32(t[0].Y), 0}
	d.Vertex2 = [3]float32{float32(t[1].X), float32(t[1].Y), 0}
	d.Vertex3 = [3]float32{float32(t[2].X), float32(t[2].Y), 0}
	return d
}

func (t stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}

func (t stlTriangle) validate() error {
	const planeTol = 1e-6
	if bad3F32(t.Normal) {
		return errors.New("inf/NaN STL triangle normal")
	}
	if bad3F32(t.Vertex1) || bad3F32(t.Vertex2) || bad3F32(t.Vertex3) {
		return errors.New("inf/NaN STL triangle vertex")
	}
	if math32.Abs(t.Vertex1[2]) > planeTol || math32.Abs(t.Vertex2[2]) > planeTol || math32.Abs(t.Vertex3[2]) > planeTol {
		return errors.New("triangle not on z=0 plane")
	}
	if math32.Abs(math32.Abs(t.Normal[2])-1) > planeTol {
		return errors.New("triangle normal not along z axis")
	}
	if t.degenerate(1e-12) {
		return errors.New("triangle is degenerate")
	}
	return nil
}

// degenerate returns true if the triangle has repeated vertices.
func (t stlTriangle) degenerate(tol float32) bool {
	return equalWithin3F32(t.Vertex1, t.Vertex2, tol) ||
		equalWithin3F32(t.Vertex2, t.Vertex3, tol) ||
		equalWithin3F32(t.Vertex3, t.Vertex1, tol)
}

func equalWithin3F32(a, b [3]float32, tol float32) bool {
	return math32.Abs(a[0]-b[0]) <= tol &&
		math32.Abs(a[1]-b[1]) <= tol &&
		math32.Abs(a[2]-b[2]) <= tol
}

func (t stlTriangle) toTriangle2() Triangle2 {
	return Triangle2{
		{X: float64(t.Vertex1[0]), Y: float64(t.Vertex1[1])},
		{X: float64(t.Vertex2[0]), Y: float64(t.Vertex2[1])},
		{X: float64(t.Vertex3[0]), Y: float64(t.Vertex3[1])},
	}
}
