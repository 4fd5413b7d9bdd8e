package distmesh

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r2"
)

// ErrNoVecPool is returned by GetVecPool when userData carries no VecPool.
var ErrNoVecPool = errors.New("userData does not provide a VecPool")

// VecPool serves as a pool of r2.Vec and float64 slices for evaluating
// fields while reducing garbage generation. The driver passes its VecPool as
// the userData argument of every field evaluation so that composed fields can
// borrow scratch space. A VecPool is not safe for concurrent use.
type VecPool struct {
	V2    bufPool[r2.Vec]
	Float bufPool[float64]
}

// AssertAllReleased checks all buffers are not in use. Should be called
// after ending a run to find leaks.
func (vp *VecPool) AssertAllReleased() error {
	err := vp.Float.assertAllReleased()
	if err != nil {
		return err
	}
	return vp.V2.assertAllReleased()
}

// GetVecPool asserts the userData as a VecPool. If assert fails then
// an error is returned with information on what went wrong.
func GetVecPool(userData any) (*VecPool, error) {
	vp, ok := userData.(*VecPool)
	if !ok {
		vper, ok := userData.(interface{ VecPool() *VecPool })
		if !ok {
			return nil, errors.Wrapf(ErrNoVecPool, "got %T", userData)
		}
		vp = vper.VecPool()
	}
	if vp == nil {
		return nil, errors.Wrapf(ErrNoVecPool, "nil VecPool from %T", userData)
	}
	return vp, nil
}

type bufPool[T any] struct {
	_ins      [][]T
	_acquired []bool
}

// Acquire returns a slice of length n that is not in use by anyone else.
// It must be returned to the pool with Release.
func (bp *bufPool[T]) Acquire(n int) []T {
	for i, locked := range bp._acquired {
		if !locked && len(bp._ins[i]) >= n {
			bp._acquired[i] = true
			return bp._ins[i][:n]
		}
	}
	// Never allocate zero length so every buffer has an address to match on release.
	newSlice := make([]T, max(n, 1))
	newSlice = newSlice[:cap(newSlice)]
	bp._ins = append(bp._ins, newSlice)
	bp._acquired = append(bp._acquired, true)
	return newSlice[:n]
}

// Release returns a buffer obtained with Acquire to the pool.
func (bp *bufPool[T]) Release(buf []T) error {
	if cap(buf) == 0 {
		return errors.New("release of zero capacity buffer")
	}
	ptr := &buf[:1][0]
	for i, instance := range bp._ins {
		if &instance[0] == ptr {
			if !bp._acquired[i] {
				return errors.New("release of unacquired resource")
			}
			bp._acquired[i] = false
			return nil
		}
	}
	return errors.New("release of nonexistent resource")
}

func (bp *bufPool[T]) assertAllReleased() error {
	for _, locked := range bp._acquired {
		if locked {
			return fmt.Errorf("locked %T resource found in VecPool, memory leak?", *new(T))
		}
	}
	return nil
}
