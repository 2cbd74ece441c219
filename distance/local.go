package distance

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Unflatten splits a flattened vector of n points in 2D or 3D. 2D points get
// a zero z coordinate. It panics when len(x) is neither 2n nor 3n.
func Unflatten(x []float64, n int) (pts [4]mgl64.Vec3, dim int) {
	switch len(x) {
	case 3 * n:
		dim = 3
	case 2 * n:
		dim = 2
	default:
		panic(fmt.Sprintf("distance: %d coordinates for %d points", len(x), n))
	}
	for i := range n {
		for d := range dim {
			pts[i][d] = x[dim*i+d]
		}
	}
	return pts, dim
}

// ReduceGradient drops the z components of a 3D gradient over n points when
// dim is 2.
func ReduceGradient(g []float64, n, dim int) []float64 {
	if dim == 3 {
		return g
	}
	out := make([]float64, dim*n)
	for i := range n {
		for d := range dim {
			out[dim*i+d] = g[3*i+d]
		}
	}
	return out
}

// ReduceHessian drops the z rows and columns of a 3D Hessian over n points
// when dim is 2.
func ReduceHessian(h *mat.Dense, n, dim int) *mat.Dense {
	if dim == 3 {
		return h
	}
	out := mat.NewDense(dim*n, dim*n, nil)
	for i := range n {
		for a := range dim {
			for j := range n {
				for b := range dim {
					out.Set(dim*i+a, dim*j+b, h.At(3*i+a, 3*j+b))
				}
			}
		}
	}
	return out
}
