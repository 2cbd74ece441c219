package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func square() *mat.Dense {
	return mat.NewDense(4, 2, []float64{
		0, 0,
		1, 0,
		1, 1,
		0, 1,
	})
}

func TestNew(t *testing.T) {
	m, err := New(square(), [][]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, m.NumVertices())
	assert.Equal(t, 2, m.Dim())
	assert.Equal(t, 8, m.NDof())
	assert.Len(t, m.Edges, 4)
	assert.Empty(t, m.Faces)
	assert.True(t, m.CanCollide(0, 2))
}

func TestNewRejectsMalformedTopology(t *testing.T) {
	tests := []struct {
		name  string
		pos   mat.Matrix
		edges [][]int
		faces [][]int
		err   error
	}{
		{"edge with three ids", square(), [][]int{{0, 1, 2}}, nil, ErrMalformedEdges},
		{"face with two ids", square(), nil, [][]int{{0, 1}}, ErrMalformedFaces},
		{"edge out of range", square(), [][]int{{0, 9}}, nil, ErrVertexOutOfRange},
		{"negative face id", square(), nil, [][]int{{0, 1, -1}}, ErrVertexOutOfRange},
		{"degenerate edge", square(), [][]int{{1, 1}}, nil, ErrDegeneratePrimitive},
		{"degenerate face", square(), nil, [][]int{{0, 2, 0}}, ErrDegeneratePrimitive},
		{"four columns", mat.NewDense(2, 4, nil), nil, nil, ErrInvalidDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.pos, tt.edges, tt.faces)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestEmptyMesh(t *testing.T) {
	m, err := FromTopology(nil, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, m.NumVertices())
	assert.Zero(t, m.NDof())
	assert.NoError(t, m.CheckPositions(nil))
}

func TestVertexGroups(t *testing.T) {
	m, err := FromTopology(square(), nil, nil, WithVertexGroups([]int{0, 0, 1}))
	require.NoError(t, err)

	assert.False(t, m.CanCollide(0, 1))
	assert.True(t, m.CanCollide(0, 2))
	assert.True(t, m.CanCollide(1, 3), "vertices without a group always interact")
}

func TestCustomCanCollide(t *testing.T) {
	m, err := FromTopology(square(), nil, nil, WithCanCollide(func(vi, vj int) bool {
		return vi+vj != 3
	}))
	require.NoError(t, err)

	fn := m.CanCollideFunc()
	assert.False(t, fn(1, 2))
	assert.True(t, fn(0, 2))
}

func TestCheckPositions(t *testing.T) {
	m, err := FromTopology(square(), nil, nil)
	require.NoError(t, err)

	assert.NoError(t, m.CheckPositions(square()))
	assert.Error(t, m.CheckPositions(mat.NewDense(3, 2, nil)))
	assert.ErrorIs(t, m.CheckPositions(mat.NewDense(4, 3, nil)), ErrInvalidDimension)
}

func TestEdgesFromFaces(t *testing.T) {
	edges := EdgesFromFaces([][3]int{{0, 1, 2}, {2, 1, 3}})
	assert.Equal(t, [][2]int{{0, 1}, {0, 2}, {1, 2}, {1, 3}, {2, 3}}, edges)
	assert.Empty(t, EdgesFromFaces(nil))
}
