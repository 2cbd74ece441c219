package distance

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// form describes a squared distance |r|² whose residual
//
//	r(x, θ) = Σₖ cₖ(θ)·xₖ,  cₖ(θ) = aₖ + Σₐ bₖₐ·θₐ
//
// is affine in the point positions x and in at most two free parameters θ
// (line or plane coordinates). The distance is the minimum over θ, so the
// gradient only needs ∂r/∂x and the Hessian is the Schur complement
// f_xx − f_xθ·f_θθ⁻¹·f_θx.
type form struct {
	n int // points
	m int // parameters
	a [4]float64
	b [4][2]float64
}

var (
	pointPointForm = form{n: 2, a: [4]float64{1, -1}}
	// r = p − (1−t)·e0 − t·e1
	pointLineForm = form{
		n: 3, m: 1,
		a: [4]float64{1, -1, 0},
		b: [4][2]float64{{0, 0}, {1, 0}, {-1, 0}},
	}
	// r = p − t0 − u·(t1−t0) − v·(t2−t0)
	pointPlaneForm = form{
		n: 4, m: 2,
		a: [4]float64{1, -1, 0, 0},
		b: [4][2]float64{{0, 0}, {1, 1}, {-1, 0}, {0, -1}},
	}
	// r = ea0 + s·(ea1−ea0) − eb0 − t·(eb1−eb0)
	lineLineForm = form{
		n: 4, m: 2,
		a: [4]float64{1, 0, -1, 0},
		b: [4][2]float64{{-1, 0}, {1, 0}, {0, 1}, {0, -1}},
	}
)

// parallelEpsilon bounds the relative determinant below which the parameter
// system is treated as singular.
const parallelEpsilon = 1e-24

// stencil selects which of the caller's points feed a form, in form order.
type stencil struct {
	form *form
	idx  [4]int
}

type solution struct {
	c        [4]float64
	r        mgl64.Vec3
	s        [2]mgl64.Vec3
	ainv     [2][2]float64 // (f_θθ)⁻¹
	singular bool
}

func (st stencil) solve(pts *[4]mgl64.Vec3) solution {
	f := st.form
	var sol solution

	var r0 mgl64.Vec3
	for k := 0; k < f.n; k++ {
		p := pts[st.idx[k]]
		r0 = r0.Add(p.Mul(f.a[k]))
		for alpha := 0; alpha < f.m; alpha++ {
			sol.s[alpha] = sol.s[alpha].Add(p.Mul(f.b[k][alpha]))
		}
	}

	var theta [2]float64
	switch f.m {
	case 1:
		a00 := sol.s[0].Dot(sol.s[0])
		if a00 > 0 {
			theta[0] = -r0.Dot(sol.s[0]) / a00
			sol.ainv[0][0] = 1 / (2 * a00)
		} else {
			sol.singular = true
		}
	case 2:
		a00 := sol.s[0].Dot(sol.s[0])
		a01 := sol.s[0].Dot(sol.s[1])
		a11 := sol.s[1].Dot(sol.s[1])
		det := a00*a11 - a01*a01
		if det > 0 && det > parallelEpsilon*a00*a11 {
			g0, g1 := -r0.Dot(sol.s[0]), -r0.Dot(sol.s[1])
			theta[0] = (a11*g0 - a01*g1) / det
			theta[1] = (a00*g1 - a01*g0) / det
			sol.ainv = [2][2]float64{
				{a11 / (2 * det), -a01 / (2 * det)},
				{-a01 / (2 * det), a00 / (2 * det)},
			}
		} else {
			sol.singular = true
		}
	}

	sol.r = r0
	for alpha := 0; alpha < f.m; alpha++ {
		sol.r = sol.r.Add(sol.s[alpha].Mul(theta[alpha]))
	}
	for k := 0; k < f.n; k++ {
		sol.c[k] = f.a[k]
		for alpha := 0; alpha < f.m; alpha++ {
			sol.c[k] += f.b[k][alpha] * theta[alpha]
		}
	}
	return sol
}

func (st stencil) value(pts *[4]mgl64.Vec3) float64 {
	sol := st.solve(pts)
	return sol.r.Dot(sol.r)
}

// gradient returns the gradient w.r.t. all n points of pts (3n entries).
func (st stencil) gradient(pts *[4]mgl64.Vec3, n int) []float64 {
	sol := st.solve(pts)
	grad := make([]float64, 3*n)
	for k := 0; k < st.form.n; k++ {
		row := 3 * st.idx[k]
		for i := range 3 {
			grad[row+i] += 2 * sol.c[k] * sol.r[i]
		}
	}
	return grad
}

// hessian returns the 3n×3n Hessian w.r.t. all n points of pts.
func (st stencil) hessian(pts *[4]mgl64.Vec3, n int) *mat.Dense {
	f := st.form
	sol := st.solve(pts)
	hess := mat.NewDense(3*n, 3*n, nil)

	// J[k][α] = ∂²f/∂xₖ∂θₐ
	var jac [4][2]mgl64.Vec3
	correct := f.m > 0 && !sol.singular
	if correct {
		for k := 0; k < f.n; k++ {
			for alpha := 0; alpha < f.m; alpha++ {
				jac[k][alpha] = sol.r.Mul(2 * f.b[k][alpha]).Add(sol.s[alpha].Mul(2 * sol.c[k]))
			}
		}
	}

	for k := 0; k < f.n; k++ {
		for l := 0; l < f.n; l++ {
			row, col := 3*st.idx[k], 3*st.idx[l]
			for i := range 3 {
				hess.Set(row+i, col+i, hess.At(row+i, col+i)+2*sol.c[k]*sol.c[l])
				if !correct {
					continue
				}
				for j := range 3 {
					var schur float64
					for alpha := 0; alpha < f.m; alpha++ {
						for beta := 0; beta < f.m; beta++ {
							schur += jac[k][alpha][i] * sol.ainv[alpha][beta] * jac[l][beta][j]
						}
					}
					hess.Set(row+i, col+j, hess.At(row+i, col+j)-schur)
				}
			}
		}
	}
	return hess
}
