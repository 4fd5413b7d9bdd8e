package distmesh

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r2"
)

// Gradient estimates the gradient of f at every position by central
// differences with step deps and stores it in grad. All 4*len(pos) shifted
// positions are evaluated in a single call to f. userData is handed to f;
// when it provides a VecPool the scratch buffers are taken from it.
func Gradient(f Field, pos, grad []r2.Vec, deps float64, userData any) error {
	n := len(pos)
	if len(grad) != n {
		return errors.Errorf("position and gradient length mismatch: %d != %d", n, len(grad))
	}
	if !(deps > 0) {
		return errors.Errorf("non-positive difference step %g", deps)
	}
	if n == 0 {
		return nil
	}
	vp, err := GetVecPool(userData)
	if err != nil {
		vp = new(VecPool)
		userData = vp
	}
	shifted := vp.V2.Acquire(4 * n)
	defer vp.V2.Release(shifted)
	d := vp.Float.Acquire(4 * n)
	defer vp.Float.Release(d)
	for i, p := range pos {
		shifted[4*i] = r2.Vec{X: p.X + deps, Y: p.Y}
		shifted[4*i+1] = r2.Vec{X: p.X - deps, Y: p.Y}
		shifted[4*i+2] = r2.Vec{X: p.X, Y: p.Y + deps}
		shifted[4*i+3] = r2.Vec{X: p.X, Y: p.Y - deps}
	}
	err = f.Evaluate(shifted, d, userData)
	if err != nil {
		return errors.Wrap(err, "evaluating gradient stencil")
	}
	inv := 1 / (2 * deps)
	for i := range grad {
		grad[i] = r2.Vec{
			X: (d[4*i] - d[4*i+1]) * inv,
			Y: (d[4*i+2] - d[4*i+3]) * inv,
		}
	}
	return nil
}

// projectOutside moves every non-fixed node with positive distance dist[i]
// back onto the zero level set of fd with one Newton step along the
// gradient: p -= d*grad/|grad|^2. Nodes where the gradient vanishes are
// left in place. It returns the number of projected nodes.
func projectOutside(fd Field, nodes []r2.Vec, dist []float64, nfix int, deps float64, vp *VecPool) (int, error) {
	var outside int
	for i := nfix; i < len(nodes); i++ {
		if dist[i] > 0 {
			outside++
		}
	}
	if outside == 0 {
		return 0, nil
	}
	pos := vp.V2.Acquire(outside)
	defer vp.V2.Release(pos)
	grad := vp.V2.Acquire(outside)
	defer vp.V2.Release(grad)
	j := 0
	for i := nfix; i < len(nodes); i++ {
		if dist[i] > 0 {
			pos[j] = nodes[i]
			j++
		}
	}
	err := Gradient(fd, pos, grad, deps, vp)
	if err != nil {
		return 0, err
	}
	j = 0
	for i := nfix; i < len(nodes); i++ {
		if !(dist[i] > 0) {
			continue
		}
		g := grad[j]
		j++
		g2 := r2.Norm2(g)
		if g2 == 0 {
			continue
		}
		nodes[i] = r2.Sub(nodes[i], r2.Scale(dist[i]/g2, g))
	}
	return outside, nil
}
