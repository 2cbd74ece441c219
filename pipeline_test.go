package contact

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/akmonengine/contact/broadphase"
	"github.com/akmonengine/contact/ccd"
	"github.com/akmonengine/contact/config"
	"github.com/akmonengine/contact/mesh"
	"github.com/akmonengine/contact/potential"
)

// twoTriangles is a fixed triangle in the z=0 plane and a smaller one at
// height z, both overlapping in xy.
func twoTriangles(z float64) *mat.Dense {
	return mat.NewDense(6, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0.2, 0.2, z,
		0.5, 0.2, z,
		0.2, 0.5, z,
	})
}

func twoTrianglesMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	faces := [][3]int{{0, 1, 2}, {3, 4, 5}}
	m, err := mesh.FromTopology(twoTriangles(1), mesh.EdgesFromFaces(faces), faces)
	require.NoError(t, err)
	return m
}

func pipelines() map[string]*Pipeline {
	out := make(map[string]*Pipeline)
	for _, method := range broadphase.Methods() {
		out[method.String()+"/additive"] = &Pipeline{
			BroadPhase:  broadphase.New(method),
			NarrowPhase: ccd.NewAdditiveCCD(),
			Workers:     2,
		}
	}
	out["hash_grid/conservative"] = &Pipeline{
		BroadPhase:  broadphase.NewHashGrid(),
		NarrowPhase: ccd.NewConservativeAdvancement(),
		Workers:     1,
	}
	return out
}

func TestCollisionFreeStepSize(t *testing.T) {
	m := twoTrianglesMesh(t)
	v0, v1 := twoTriangles(1), twoTriangles(-1)

	for name, p := range pipelines() {
		t.Run(name, func(t *testing.T) {
			step, err := p.CollisionFreeStepSize(m, v0, v1, 0)
			require.NoError(t, err)
			assert.Greater(t, step, 0.0)
			assert.LessOrEqual(t, step, 0.5)

			free, err := p.IsStepCollisionFree(m, v0, v1, 0)
			require.NoError(t, err)
			assert.False(t, free)

			free, err = p.IsStepCollisionFree(m, v0, twoTriangles(0.5), 0)
			require.NoError(t, err)
			assert.True(t, free)

			step, err = p.CollisionFreeStepSize(m, v0, twoTriangles(0.5), 0)
			require.NoError(t, err)
			assert.Equal(t, 1.0, step)
		})
	}
}

func TestStepSizeWithMinDistance(t *testing.T) {
	m := twoTrianglesMesh(t)
	p := New()

	step, err := p.CollisionFreeStepSize(m, twoTriangles(1), twoTriangles(-1), 0.1)
	require.NoError(t, err)
	assert.Greater(t, step, 0.0)
	assert.LessOrEqual(t, step, 0.45)
}

func TestInflationRadiusWidensCandidates(t *testing.T) {
	m := twoTrianglesMesh(t)
	v := twoTriangles(0.3)

	tests := []struct {
		name   string
		radius float64
		empty  bool
	}{
		{"no inflation", 0, true},
		{"inflated past the gap", 0.2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := New()
			p.InflationRadius = tt.radius
			p.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			step, err := p.CollisionFreeStepSize(m, v, v, 0)
			require.NoError(t, err)
			assert.Equal(t, 1.0, step)
			assert.Equal(t, tt.empty, strings.Contains(buf.String(), "candidates=0 "))
		})
	}

	cfg := config.Default()
	cfg.InflationRadius = 0.2
	p, err := FromConfig(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.2, p.InflationRadius)
}

func TestStaticStepIsFree(t *testing.T) {
	m := twoTrianglesMesh(t)
	v := twoTriangles(0.3)

	step, err := New().CollisionFreeStepSize(m, v, v, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, step)
}

func TestPositionsMustMatchMesh(t *testing.T) {
	m := twoTrianglesMesh(t)
	p := New()
	wrong := mat.NewDense(3, 3, nil)

	_, err := p.CollisionFreeStepSize(m, twoTriangles(1), wrong, 0)
	assert.Error(t, err)
	_, err = p.BuildCandidates(m, mat.NewDense(6, 2, nil), 0)
	assert.ErrorIs(t, err, mesh.ErrInvalidDimension)
	_, err = p.HasIntersections(m, wrong)
	assert.Error(t, err)
}

func TestBuildCandidatesRespectsVertexGroups(t *testing.T) {
	faces := [][3]int{{0, 1, 2}, {3, 4, 5}}
	v := twoTriangles(0.01)

	all, err := mesh.FromTopology(v, mesh.EdgesFromFaces(faces), faces)
	require.NoError(t, err)
	grouped, err := mesh.FromTopology(v, mesh.EdgesFromFaces(faces), faces,
		mesh.WithVertexGroups([]int{0, 0, 0, 0, 0, 0}))
	require.NoError(t, err)

	p := New()
	c, err := p.BuildCandidates(all, v, 0.05)
	require.NoError(t, err)
	assert.False(t, c.Empty())

	c, err = p.BuildCandidates(grouped, v, 0.05)
	require.NoError(t, err)
	assert.True(t, c.Empty())
}

func TestHasIntersections(t *testing.T) {
	faces := [][3]int{{0, 1, 2}, {3, 4, 5}}
	piercing := mat.NewDense(6, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0.2, 0.2, -0.5,
		0.2, 0.2, 0.5,
		0.6, 0.2, 0.5,
	})
	m, err := mesh.FromTopology(piercing, mesh.EdgesFromFaces(faces), faces)
	require.NoError(t, err)

	for name, p := range pipelines() {
		t.Run(name, func(t *testing.T) {
			hit, err := p.HasIntersections(m, piercing)
			require.NoError(t, err)
			assert.True(t, hit)

			hit, err = p.HasIntersections(m, twoTriangles(0.1))
			require.NoError(t, err)
			assert.False(t, hit)
		})
	}
}

// fallingSegment drops a short segment from y = 1 to y = -1 through a long
// fixed one.
func fallingSegment(y float64) *mat.Dense {
	return mat.NewDense(4, 2, []float64{
		0, 0,
		2, 0,
		1, y,
		1.5, y,
	})
}

func TestCollisionFreeStepSize2D(t *testing.T) {
	m, err := mesh.FromTopology(fallingSegment(1), [][2]int{{0, 1}, {2, 3}}, nil)
	require.NoError(t, err)

	for name, p := range pipelines() {
		t.Run(name, func(t *testing.T) {
			c, err := p.BuildSweptCandidates(m, fallingSegment(1), fallingSegment(-1), 0)
			require.NoError(t, err)
			assert.NotEmpty(t, c.EV)
			assert.Empty(t, c.FV)

			step, err := p.CollisionFreeStepSize(m, fallingSegment(1), fallingSegment(-1), 0.1)
			require.NoError(t, err)
			assert.Greater(t, step, 0.0)
			assert.LessOrEqual(t, step, 0.45)

			free, err := p.IsStepCollisionFree(m, fallingSegment(1), fallingSegment(-1), 0.1)
			require.NoError(t, err)
			assert.False(t, free)

			free, err = p.IsStepCollisionFree(m, fallingSegment(1), fallingSegment(0.5), 0.1)
			require.NoError(t, err)
			assert.True(t, free)
		})
	}
}

func TestHasIntersections2D(t *testing.T) {
	edges := [][2]int{{0, 1}, {2, 3}, {1, 4}}
	crossing := mat.NewDense(5, 2, []float64{
		0, 0,
		1, 1,
		0, 1,
		1, 0,
		2, 1,
	})
	m, err := mesh.FromTopology(crossing, edges, nil)
	require.NoError(t, err)

	p := New()
	hit, err := p.HasIntersections(m, crossing)
	require.NoError(t, err)
	assert.True(t, hit)

	apart := mat.NewDense(5, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
		1, 1,
		2, 0,
	})
	hit, err = p.HasIntersections(m, apart)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestBarrierOnCollisions(t *testing.T) {
	m := twoTrianglesMesh(t)
	v := twoTriangles(0.05)
	p := New()

	cs, err := p.BuildCollisions(m, v, 0.1, 0)
	require.NoError(t, err)
	require.False(t, cs.Empty())
	assert.InDelta(t, 0.05, cs.MinimumDistance(m, v, p.Workers), 1e-12)

	a := p.Assembler()
	b := potential.Barrier{DHat: 0.1}
	assert.Greater(t, a.Value(b, cs, m, v), 0.0)

	grad := a.Gradient(b, cs, m, v)
	assert.Equal(t, m.NDof(), grad.Len())
	// The upper triangle is pushed up, the lower one down.
	for i := 3; i < 6; i++ {
		assert.Less(t, grad.AtVec(3*i+2), 0.0)
	}

	far, err := p.BuildCollisions(m, twoTriangles(0.5), 0.1, 0)
	require.NoError(t, err)
	assert.True(t, far.Empty())
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.BroadPhase = "sweep_and_prune"
	cfg.CCD.Method = config.CCDConservativeAdvancement
	cfg.Workers = 3

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p, err := FromConfig(cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, "sweep_and_prune", p.BroadPhase.Name())
	assert.IsType(t, &ccd.ConservativeAdvancement{}, p.NarrowPhase)

	m := twoTrianglesMesh(t)
	_, err = p.CollisionFreeStepSize(m, twoTriangles(1), twoTriangles(-1), 0)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "collision free step size")

	cfg.DHat = 0
	_, err = FromConfig(cfg, nil)
	assert.ErrorIs(t, err, config.ErrInvalid)
}
