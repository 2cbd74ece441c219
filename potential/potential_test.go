package potential

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/akmonengine/contact/broadphase"
	"github.com/akmonengine/contact/candidates"
	"github.com/akmonengine/contact/collisions"
	"github.com/akmonengine/contact/distance"
	"github.com/akmonengine/contact/mesh"
)

const dhat = 0.2

// stackedScene is a triangle with a second, smaller triangle hovering 0.1
// above it, producing face-vertex and edge-edge collisions.
func stackedScene(t *testing.T) (*mesh.Mesh, *mat.Dense, *collisions.Collisions) {
	t.Helper()
	v := mat.NewDense(6, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0.2, 0.2, 0.1,
		0.6, -0.3, 0.12,
		0.3, 0.6, 0.09,
	})
	m, err := mesh.FromTopology(v,
		[][2]int{{0, 1}, {1, 2}, {2, 0}, {3, 4}, {4, 5}, {5, 3}},
		[][3]int{{0, 1, 2}, {3, 4, 5}})
	require.NoError(t, err)

	cs := collisions.BuildFromMesh(m, v, dhat, 0, broadphase.NewBruteForce(), 1)
	require.NotEmpty(t, cs.FV)
	require.NotEmpty(t, cs.EE)
	return m, v, cs
}

func assertClose(t *testing.T, want, got, rel float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want, got, rel*math.Max(1, math.Abs(want)), msgAndArgs...)
}

func TestBarrierDerivatives(t *testing.T) {
	const xhat = 0.04
	for _, x := range []float64{0.001, 0.01, 0.03} {
		d := fd.Derivative(func(x float64) float64 { return barrier(x, xhat) }, x, &fd.Settings{Formula: fd.Central})
		assertClose(t, d, barrierFirstDerivative(x, xhat), 1e-6)

		d2 := fd.Derivative(func(x float64) float64 { return barrierFirstDerivative(x, xhat) }, x, &fd.Settings{Formula: fd.Central})
		assertClose(t, d2, barrierSecondDerivative(x, xhat), 1e-5)
	}

	assert.True(t, math.IsInf(barrier(0, xhat), 1))
	assert.True(t, math.IsInf(barrier(-1, xhat), 1))
	assert.Zero(t, barrier(xhat, xhat))
	assert.Zero(t, barrier(1, xhat))
	assert.Zero(t, barrierFirstDerivative(-1, xhat))
	assert.Zero(t, barrierSecondDerivative(1, xhat))
}

func TestLocalBarrierDerivatives(t *testing.T) {
	m, v, cs := stackedScene(t)
	b := Barrier{DHat: dhat}

	for i := range cs.Size() {
		c := cs.Collision(i)
		x := c.Dof(v, m.Edges, m.Faces)
		n := len(x)

		wantGrad := fd.Gradient(nil, func(x []float64) float64 { return b.Value(c, x) }, x, &fd.Settings{Formula: fd.Central})
		grad := b.Gradient(c, x)
		for k := range n {
			assertClose(t, wantGrad[k], grad[k], 1e-5, "collision %d gradient[%d]", i, k)
		}

		wantHess := mat.NewDense(n, n, nil)
		fd.Jacobian(wantHess, func(y, x []float64) { copy(y, b.Gradient(c, x)) }, x, &fd.JacobianSettings{Formula: fd.Central})
		hess := b.Hessian(c, x, PSDNone)
		for r := range n {
			for k := range n {
				assertClose(t, wantHess.At(r, k), hess.At(r, k), 1e-4, "collision %d hessian[%d][%d]", i, r, k)
			}
		}
	}
}

func TestMollifiedBarrierDerivatives(t *testing.T) {
	x := []float64{
		0, 0, 0,
		1, 0, 0,
		0, 0.1, 0.1,
		1, 0.11, 0.1,
	}

	p, _ := distance.Unflatten(x, 4)
	epsX := distance.EdgeEdgeMollifierThreshold(p[0], p[1], p[2], p[3])
	require.Less(t, distance.EdgeEdgeCrossSquaredNorm(p[0], p[1], p[2], p[3]), epsX)

	dtype := distance.ClassifyEdgeEdge(p[0], p[1], p[2], p[3])
	c := collisions.NewEdgeEdge(candidates.EdgeEdge{Edge0: 0, Edge1: 1}, 1, 0, dtype, epsX)
	b := Barrier{DHat: dhat}
	require.Greater(t, b.Value(c, x), 0.0)

	wantGrad := fd.Gradient(nil, func(x []float64) float64 { return b.Value(c, x) }, x, &fd.Settings{Formula: fd.Central})
	grad := b.Gradient(c, x)
	for k := range x {
		assertClose(t, wantGrad[k], grad[k], 1e-5, "gradient[%d]", k)
	}

	wantHess := mat.NewDense(12, 12, nil)
	fd.Jacobian(wantHess, func(y, x []float64) { copy(y, b.Gradient(c, x)) }, x, &fd.JacobianSettings{Formula: fd.Central})
	hess := b.Hessian(c, x, PSDNone)
	for r := range 12 {
		for k := range 12 {
			assertClose(t, wantHess.At(r, k), hess.At(r, k), 1e-4, "hessian[%d][%d]", r, k)
		}
	}
}

func flat(v *mat.Dense) []float64 {
	r, c := v.Dims()
	x := make([]float64, 0, r*c)
	for i := range r {
		for j := range c {
			x = append(x, v.At(i, j))
		}
	}
	return x
}

func TestAssembly(t *testing.T) {
	m, v, cs := stackedScene(t)
	b := Barrier{DHat: dhat}
	a := Assembler{Workers: 3}
	rows, cols := v.Dims()

	var want float64
	for i := range cs.Size() {
		c := cs.Collision(i)
		want += b.Value(c, c.Dof(v, m.Edges, m.Faces))
	}
	assertClose(t, want, a.Value(b, cs, m, v), 1e-12)

	value := func(x []float64) float64 {
		return a.Value(b, cs, m, mat.NewDense(rows, cols, x))
	}
	grad := a.Gradient(b, cs, m, v)
	require.Equal(t, m.NDof(), grad.Len())
	wantGrad := fd.Gradient(nil, value, flat(v), &fd.Settings{Formula: fd.Central})
	for i := range wantGrad {
		assertClose(t, wantGrad[i], grad.AtVec(i), 1e-5, "gradient[%d]", i)
	}

	ndof := m.NDof()
	hess := a.Hessian(b, cs, m, v, PSDNone)
	wantHess := mat.NewDense(ndof, ndof, nil)
	fd.Jacobian(wantHess, func(y, x []float64) {
		g := a.Gradient(b, cs, m, mat.NewDense(rows, cols, x))
		copy(y, g.RawVector().Data)
	}, flat(v), &fd.JacobianSettings{Formula: fd.Central})
	for i := range ndof {
		for j := range ndof {
			assertClose(t, wantHess.At(i, j), hess.At(i, j), 1e-4, "hessian[%d][%d]", i, j)
		}
	}
}

func TestAssemblyDeterminism(t *testing.T) {
	m, v, cs := stackedScene(t)
	b := Barrier{DHat: dhat}

	for _, workers := range []int{1, 2, 5} {
		a := Assembler{Workers: workers, DenseThreshold: -1}
		assert.Equal(t, a.Gradient(b, cs, m, v).RawVector().Data, a.Gradient(b, cs, m, v).RawVector().Data)
		assert.True(t, mat.Equal(a.Hessian(b, cs, m, v, PSDClamp), a.Hessian(b, cs, m, v, PSDClamp)))
	}

	serial := Assembler{Workers: 1}
	parallel := Assembler{Workers: 4}
	assert.True(t, mat.EqualApprox(serial.Gradient(b, cs, m, v), parallel.Gradient(b, cs, m, v), 1e-12))
	assert.InDelta(t, serial.Value(b, cs, m, v), parallel.Value(b, cs, m, v), 1e-12)
}

func TestHessianStrategiesAgree(t *testing.T) {
	m, v, cs := stackedScene(t)
	b := Barrier{DHat: dhat}

	dense := Assembler{Workers: 2}.Hessian(b, cs, m, v, PSDNone)
	sparse := Assembler{Workers: 2, DenseThreshold: -1}.Hessian(b, cs, m, v, PSDNone)
	assert.True(t, mat.EqualApprox(dense, sparse, 1e-10))

	var buf bytes.Buffer
	serial := Assembler{
		DenseThreshold: -1,
		MaxTriplets:    200,
		Logger:         slog.New(slog.NewTextHandler(&buf, nil)),
	}.Hessian(b, cs, m, v, PSDNone)
	assert.True(t, mat.EqualApprox(dense, serial, 1e-10))
	assert.Contains(t, buf.String(), "assembling serially")

	// A buffer smaller than a single local Hessian compacts before every
	// collision.
	tiny := Assembler{DenseThreshold: -1, MaxTriplets: 1, Logger: slog.New(slog.NewTextHandler(&buf, nil))}.
		Hessian(b, cs, m, v, PSDNone)
	assert.True(t, mat.EqualApprox(dense, tiny, 1e-10))
}

func TestAssemblyLinearity(t *testing.T) {
	m, v, cs := stackedScene(t)
	b := Barrier{DHat: dhat}
	a := Assembler{Workers: 2}

	first := &collisions.Collisions{FV: cs.FV}
	second := &collisions.Collisions{VV: cs.VV, EV: cs.EV, EE: cs.EE}

	var sum mat.VecDense
	sum.AddVec(a.Gradient(b, first, m, v), a.Gradient(b, second, m, v))
	assert.True(t, mat.EqualApprox(a.Gradient(b, cs, m, v), &sum, 1e-10))

	var hsum mat.Dense
	hsum.Add(a.Hessian(b, first, m, v, PSDNone), a.Hessian(b, second, m, v, PSDNone))
	assert.True(t, mat.EqualApprox(a.Hessian(b, cs, m, v, PSDNone), &hsum, 1e-10))
}

func TestEmptyAssembly(t *testing.T) {
	m, v, _ := stackedScene(t)
	var cs collisions.Collisions
	a := Assembler{Workers: 4}

	assert.Zero(t, a.Value(Barrier{DHat: dhat}, &cs, m, v))

	grad := a.Gradient(Barrier{DHat: dhat}, &cs, m, v)
	assert.Equal(t, m.NDof(), grad.Len())
	assert.Zero(t, mat.Norm(grad, 2))

	for _, threshold := range []int{0, -1} {
		hess := Assembler{DenseThreshold: threshold}.Hessian(Barrier{DHat: dhat}, &cs, m, v, PSDClamp)
		r, c := hess.Dims()
		assert.Equal(t, m.NDof(), r)
		assert.Equal(t, m.NDof(), c)
		assert.Zero(t, hess.NNZ())
	}

	empty, err := mesh.FromTopology(&mat.Dense{}, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, a.Gradient(SquaredDistance{}, &cs, empty, &mat.Dense{}).Len())
}

func minEigenvalue(t *testing.T, h mat.Matrix) float64 {
	t.Helper()
	n, _ := h.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, 0.5*(h.At(i, j)+h.At(j, i)))
		}
	}
	var eig mat.EigenSym
	require.True(t, eig.Factorize(sym, false))
	values := eig.Values(nil)
	lowest := values[0]
	for _, v := range values {
		lowest = math.Min(lowest, v)
	}
	return lowest
}

func TestProjectToPSD(t *testing.T) {
	h := mat.NewDense(2, 2, []float64{
		1, 0,
		0, -2,
	})
	assert.Same(t, h, ProjectToPSD(h, PSDNone))
	assert.True(t, mat.EqualApprox(mat.NewDense(2, 2, []float64{1, 0, 0, 0}), ProjectToPSD(h, PSDClamp), 1e-12))
	assert.True(t, mat.EqualApprox(mat.NewDense(2, 2, []float64{1, 0, 0, 2}), ProjectToPSD(h, PSDAbs), 1e-12))

	rotated := mat.NewDense(2, 2, []float64{
		0, 1,
		1, 0,
	})
	assert.True(t, mat.EqualApprox(mat.NewDense(2, 2, []float64{1, 0, 0, 1}), ProjectToPSD(rotated, PSDAbs), 1e-12))

	m, v, cs := stackedScene(t)
	b := Barrier{DHat: dhat}
	for i := range cs.Size() {
		c := cs.Collision(i)
		h := b.Hessian(c, c.Dof(v, m.Edges, m.Faces), PSDClamp)
		assert.GreaterOrEqual(t, minEigenvalue(t, h), -1e-9)
	}

	global := Assembler{}.Hessian(b, cs, m, v, PSDClamp)
	assert.GreaterOrEqual(t, minEigenvalue(t, global), -1e-9)
}

func TestParsePSDProjection(t *testing.T) {
	for _, p := range []PSDProjection{PSDNone, PSDClamp, PSDAbs} {
		got, err := ParsePSDProjection(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParsePSDProjection("flip")
	assert.ErrorIs(t, err, ErrUnknownProjection)
}
