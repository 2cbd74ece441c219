package potential

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/akmonengine/contact/collisions"
)

// Barrier is the log barrier
//
//	b(x) = −(x − x̂)²·ln(x / x̂)  for 0 < x < x̂, 0 beyond
//
// evaluated on x = d² − dmin² with x̂ = 2·dmin·dhat + dhat², where d is the
// collision distance. Mollified collisions are multiplied by their
// mollifier and every collision by its weight.
type Barrier struct {
	DHat float64
}

func barrier(x, xhat float64) float64 {
	if x <= 0 {
		return math.Inf(1)
	}
	if x >= xhat {
		return 0
	}
	return -(x - xhat) * (x - xhat) * math.Log(x/xhat)
}

func barrierFirstDerivative(x, xhat float64) float64 {
	if x <= 0 || x >= xhat {
		return 0
	}
	return (xhat - x) * (2*math.Log(x/xhat) - xhat/x + 1)
}

func barrierSecondDerivative(x, xhat float64) float64 {
	if x <= 0 || x >= xhat {
		return 0
	}
	return -2*math.Log(x/xhat) + (xhat-x)*(xhat+3*x)/(x*x)
}

func (b Barrier) arguments(c collisions.Collision, x []float64) (float64, float64) {
	dmin := c.DMin()
	return c.Distance(x) - dmin*dmin, 2*dmin*b.DHat + b.DHat*b.DHat
}

func (b Barrier) Value(c collisions.Collision, x []float64) float64 {
	s, xhat := b.arguments(c, x)
	v := barrier(s, xhat)
	if v == 0 || math.IsInf(v, 1) {
		return c.Weight() * v
	}
	if m, ok := c.(collisions.Mollified); ok && c.IsMollified() {
		v *= m.Mollifier(x)
	}
	return c.Weight() * v
}

func (b Barrier) Gradient(c collisions.Collision, x []float64) []float64 {
	s, xhat := b.arguments(c, x)
	grad := make([]float64, len(x))
	db := barrierFirstDerivative(s, xhat)
	if db == 0 {
		return grad
	}

	ds := c.DistanceGradient(x)
	w := c.Weight()
	if m, ok := c.(collisions.Mollified); ok && c.IsMollified() {
		mv, dm := m.Mollifier(x), m.MollifierGradient(x)
		bv := barrier(s, xhat)
		for i := range grad {
			grad[i] = w * (mv*db*ds[i] + bv*dm[i])
		}
		return grad
	}
	for i := range grad {
		grad[i] = w * db * ds[i]
	}
	return grad
}

func (b Barrier) Hessian(c collisions.Collision, x []float64, psd PSDProjection) *mat.Dense {
	n := len(x)
	s, xhat := b.arguments(c, x)
	db, d2b := barrierFirstDerivative(s, xhat), barrierSecondDerivative(s, xhat)
	if db == 0 && d2b == 0 {
		return mat.NewDense(n, n, nil)
	}

	ds := mat.NewVecDense(n, c.DistanceGradient(x))
	hess := mat.NewDense(n, n, nil)
	hess.Scale(db, c.DistanceHessian(x))
	hess.RankOne(hess, d2b, ds, ds)

	if m, ok := c.(collisions.Mollified); ok && c.IsMollified() {
		mv := m.Mollifier(x)
		dm := mat.NewVecDense(n, m.MollifierGradient(x))
		hess.Scale(mv, hess)
		hess.RankOne(hess, db, ds, dm)
		hess.RankOne(hess, db, dm, ds)
		var bm mat.Dense
		bm.Scale(barrier(s, xhat), m.MollifierHessian(x))
		hess.Add(hess, &bm)
	}

	hess.Scale(c.Weight(), hess)
	return ProjectToPSD(hess, psd)
}

// SquaredDistance sums the weighted squared distances of all collisions.
// It is smooth everywhere and mostly useful to check assembly.
type SquaredDistance struct{}

func (SquaredDistance) Value(c collisions.Collision, x []float64) float64 {
	return c.Weight() * c.Distance(x)
}

func (SquaredDistance) Gradient(c collisions.Collision, x []float64) []float64 {
	g := c.DistanceGradient(x)
	for i := range g {
		g[i] *= c.Weight()
	}
	return g
}

func (SquaredDistance) Hessian(c collisions.Collision, x []float64, psd PSDProjection) *mat.Dense {
	h := c.DistanceHessian(x)
	h.Scale(c.Weight(), h)
	return ProjectToPSD(h, psd)
}
