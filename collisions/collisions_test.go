package collisions

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/akmonengine/contact/broadphase"
	"github.com/akmonengine/contact/candidates"
	"github.com/akmonengine/contact/distance"
	"github.com/akmonengine/contact/mesh"
)

// hoveringScene is a triangle in the z=0 plane, a vertex above its interior
// and a free edge above the triangle crossing edge (0, 1).
func hoveringScene(t *testing.T, height float64) (*mesh.Mesh, *mat.Dense) {
	t.Helper()
	v := mat.NewDense(6, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0.25, 0.25, height,
		0.5, -0.5, height,
		0.5, 0.5, height,
	})
	m, err := mesh.FromTopology(v, [][2]int{{0, 1}, {1, 2}, {2, 0}, {4, 5}}, [][3]int{{0, 1, 2}})
	require.NoError(t, err)
	return m, v
}

func TestBuild(t *testing.T) {
	m, v := hoveringScene(t, 0.05)
	cands := candidates.Candidates{
		EE: []candidates.EdgeEdge{{Edge0: 0, Edge1: 3}},
		FV: []candidates.FaceVertex{{Face: 0, Vertex: 3}, {Face: 0, Vertex: 4}},
	}

	for _, workers := range []int{1, 3} {
		cs := Build(&cands, m, v, 0.1, 0, workers)
		require.Len(t, cs.FV, 1)
		require.Len(t, cs.EE, 1)

		fv := cs.FV[0]
		assert.Equal(t, 3, fv.Vertex)
		assert.Equal(t, distance.PointTriangleToTriangle, fv.DType)
		assert.Equal(t, 1.0, fv.Weight())
		assert.False(t, fv.IsMollified())

		ee := cs.EE[0]
		assert.Equal(t, distance.EdgeEdgeEAEB, ee.DType)
		assert.True(t, ee.IsMollified())
		assert.InDelta(t, 1e-3*1*1, ee.EpsX, 1e-15)

		assert.InDelta(t, 0.05, cs.MinimumDistance(m, v, workers), 1e-12)
	}

	far := Build(&cands, m, v, 0.01, 0, 1)
	assert.True(t, far.Empty())
	assert.True(t, math.IsInf(far.MinimumDistance(m, v, 2), 1))

	withOffset := Build(&cands, m, v, 0.01, 0.05, 1)
	assert.False(t, withOffset.Empty())
	assert.Equal(t, 0.05, withOffset.FV[0].DMin())
}

func TestBuildFromMesh(t *testing.T) {
	m, v := hoveringScene(t, 0.05)
	cs := BuildFromMesh(m, v, 0.1, 0, broadphase.NewHashGrid(), 2)

	assert.NotEmpty(t, cs.FV)
	assert.NotEmpty(t, cs.EE)
	for _, fv := range cs.FV {
		assert.NotContains(t, []int{0, 1, 2}, fv.Vertex)
	}
	assert.InDelta(t, 0.05, cs.MinimumDistance(m, v, 1), 1e-12)
}

func TestCachedDistanceType(t *testing.T) {
	x := []float64{
		0.5, 1, 0,
		0, 0, 0,
		1, 0, 0,
	}
	ev := NewEdgeVertex(candidates.EdgeVertex{Edge: 0, Vertex: 0}, 1, 0, distance.PointEdgeToE0)
	assert.InDelta(t, 1.25, ev.Distance(x), 1e-15)
	assert.InDelta(t, 1.0, ev.EdgeVertex.Distance(x), 1e-15)
}

func TestAt(t *testing.T) {
	cs := Collisions{
		VV: []VertexVertex{NewVertexVertex(candidates.VertexVertex{V0: 0, V1: 1}, 1, 0)},
		EV: []EdgeVertex{NewEdgeVertex(candidates.EdgeVertex{Edge: 0, Vertex: 2}, 1, 0, distance.PointEdgeToEdge)},
		EE: []EdgeEdge{NewEdgeEdge(candidates.EdgeEdge{Edge0: 0, Edge1: 1}, 1, 0, distance.EdgeEdgeEAEB, 1)},
		FV: []FaceVertex{NewFaceVertex(candidates.FaceVertex{Face: 0, Vertex: 3}, 1, 0, distance.PointTriangleToTriangle)},
	}
	require.Equal(t, 4, cs.Size())

	tests := []struct {
		index int
		check func(int) bool
	}{
		{0, cs.IsVertexVertex},
		{1, cs.IsEdgeVertex},
		{2, cs.IsEdgeEdge},
		{3, cs.IsFaceVertex},
	}
	for _, tt := range tests {
		assert.True(t, tt.check(tt.index))
		c, err := cs.At(tt.index)
		require.NoError(t, err)
		assert.Equal(t, cs.Collision(tt.index), c)
	}

	_, err := cs.At(4)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = cs.At(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Panics(t, func() { cs.Collision(7) })

	cs.Clear()
	assert.True(t, cs.Empty())
}
