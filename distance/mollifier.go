package distance

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// EdgeEdgeCrossSquaredNorm returns |(ea1−ea0) × (eb1−eb0)|².
func EdgeEdgeCrossSquaredNorm(ea0, ea1, eb0, eb1 mgl64.Vec3) float64 {
	c := ea1.Sub(ea0).Cross(eb1.Sub(eb0))
	return c.Dot(c)
}

// EdgeEdgeMollifierThreshold returns the cross-norm threshold below which an
// edge-edge pair is mollified, computed from rest positions.
func EdgeEdgeMollifierThreshold(ea0, ea1, eb0, eb1 mgl64.Vec3) float64 {
	a, b := ea1.Sub(ea0), eb1.Sub(eb0)
	return 1e-3 * a.Dot(a) * b.Dot(b)
}

// EdgeEdgeMollifier smoothly ramps from 0 to 1 as x goes from 0 to epsX.
func EdgeEdgeMollifier(x, epsX float64) float64 {
	if x < epsX {
		xd := x / epsX
		return (2 - xd) * xd
	}
	return 1
}

func edgeEdgeMollifierDerivative(x, epsX float64) float64 {
	if x < epsX {
		return 2 * (epsX - x) / (epsX * epsX)
	}
	return 0
}

// EdgeEdgeMollifierGradient returns the 12-entry gradient of the mollifier
// applied to EdgeEdgeCrossSquaredNorm.
func EdgeEdgeMollifierGradient(ea0, ea1, eb0, eb1 mgl64.Vec3, epsX float64) []float64 {
	grad := make([]float64, 12)
	x := EdgeEdgeCrossSquaredNorm(ea0, ea1, eb0, eb1)
	dm := edgeEdgeMollifierDerivative(x, epsX)
	if dm == 0 {
		return grad
	}
	gx := crossSquaredNormGradient(ea0, ea1, eb0, eb1)
	for i := range grad {
		grad[i] = dm * gx[i]
	}
	return grad
}

// crossSquaredNormGradient differentiates |u × v|² with u = ea1−ea0 and
// v = eb1−eb0.
func crossSquaredNormGradient(ea0, ea1, eb0, eb1 mgl64.Vec3) []float64 {
	u, v := ea1.Sub(ea0), eb1.Sub(eb0)
	uu, vv, uv := u.Dot(u), v.Dot(v), u.Dot(v)
	// ∂/∂u = 2(|v|² u − (u·v) v), ∂/∂v = 2(|u|² v − (u·v) u)
	du := u.Mul(2 * vv).Sub(v.Mul(2 * uv))
	dv := v.Mul(2 * uu).Sub(u.Mul(2 * uv))
	grad := make([]float64, 12)
	for i := range 3 {
		grad[i] = -du[i]
		grad[3+i] = du[i]
		grad[6+i] = -dv[i]
		grad[9+i] = dv[i]
	}
	return grad
}

// crossSquaredNormHessian returns the 12×12 Hessian of |u × v|².
func crossSquaredNormHessian(ea0, ea1, eb0, eb1 mgl64.Vec3) *mat.Dense {
	u, v := ea1.Sub(ea0), eb1.Sub(eb0)
	uu, vv, uv := u.Dot(u), v.Dot(v), u.Dot(v)

	var huu, hvv, huv [3][3]float64
	for i := range 3 {
		for j := range 3 {
			var id float64
			if i == j {
				id = 1
			}
			huu[i][j] = 2 * (vv*id - v[i]*v[j])
			hvv[i][j] = 2 * (uu*id - u[i]*u[j])
			huv[i][j] = 2 * (2*u[i]*v[j] - v[i]*u[j] - uv*id)
		}
	}

	// Chain through u = x1 − x0 and v = x3 − x2.
	signs := [4]float64{-1, 1, -1, 1}
	hess := mat.NewDense(12, 12, nil)
	for k := range 4 {
		for l := range 4 {
			s := signs[k] * signs[l]
			for i := range 3 {
				for j := range 3 {
					var h float64
					switch {
					case k < 2 && l < 2:
						h = huu[i][j]
					case k >= 2 && l >= 2:
						h = hvv[i][j]
					case k < 2:
						h = huv[i][j]
					default:
						h = huv[j][i]
					}
					hess.Set(3*k+i, 3*l+j, s*h)
				}
			}
		}
	}
	return hess
}

// EdgeEdgeMollifierHessian returns the 12×12 Hessian of the mollifier
// applied to EdgeEdgeCrossSquaredNorm.
func EdgeEdgeMollifierHessian(ea0, ea1, eb0, eb1 mgl64.Vec3, epsX float64) *mat.Dense {
	x := EdgeEdgeCrossSquaredNorm(ea0, ea1, eb0, eb1)
	if x >= epsX {
		return mat.NewDense(12, 12, nil)
	}
	dm := edgeEdgeMollifierDerivative(x, epsX)
	d2m := -2 / (epsX * epsX)

	g := mat.NewVecDense(12, crossSquaredNormGradient(ea0, ea1, eb0, eb1))
	hess := mat.NewDense(12, 12, nil)
	hess.Scale(dm, crossSquaredNormHessian(ea0, ea1, eb0, eb1))
	hess.RankOne(hess, d2m, g, g)
	return hess
}
