// Package mesh describes the collision mesh consumed by the broad phase, the
// candidate layer and the assembly engine: vertex count, dimension, edge and
// face connectivity, rest positions and the predicate deciding which vertices
// may interact.
package mesh

import (
	"errors"
	"fmt"
	"slices"

	"github.com/akmonengine/contact/geometry"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidDimension is returned when rest positions are not 2D or 3D.
	ErrInvalidDimension = errors.New("mesh: positions must have 2 or 3 columns")
	// ErrMalformedEdges is returned when an edge does not have exactly two vertex ids.
	ErrMalformedEdges = errors.New("mesh: edges must have exactly 2 vertex ids")
	// ErrMalformedFaces is returned when a face does not have exactly three vertex ids.
	ErrMalformedFaces = errors.New("mesh: faces must have exactly 3 vertex ids")
	// ErrVertexOutOfRange is returned when a primitive references a vertex that does not exist.
	ErrVertexOutOfRange = errors.New("mesh: vertex id out of range")
	// ErrDegeneratePrimitive is returned when a primitive references the same vertex twice.
	ErrDegeneratePrimitive = errors.New("mesh: primitive references a vertex more than once")
)

// CanCollideFunc decides whether two vertices are allowed to interact.
type CanCollideFunc func(vi, vj int) bool

// Mesh is an immutable collision mesh.
type Mesh struct {
	// Edges as pairs of vertex ids
	Edges [][2]int
	// Faces as triples of vertex ids
	Faces [][3]int

	restPositions mat.Matrix
	numVertices   int
	dim           int
	canCollide    CanCollideFunc
}

// Option configures a Mesh.
type Option func(*Mesh)

// WithCanCollide installs a custom vertex interaction rule.
func WithCanCollide(fn CanCollideFunc) Option {
	return func(m *Mesh) {
		m.canCollide = fn
	}
}

// WithVertexGroups makes vertices sharing a group id non-interacting, which
// is how rigid pieces or explicitly ignored regions are usually expressed.
// Vertices beyond the end of groups always interact.
func WithVertexGroups(groups []int) Option {
	groups = slices.Clone(groups)
	return func(m *Mesh) {
		m.canCollide = func(vi, vj int) bool {
			if vi >= len(groups) || vj >= len(groups) {
				return true
			}
			return groups[vi] != groups[vj]
		}
	}
}

// New builds a mesh from loosely typed connectivity, validating that every
// edge has two ids and every face three.
func New(restPositions mat.Matrix, edges [][]int, faces [][]int, opts ...Option) (*Mesh, error) {
	typedEdges := make([][2]int, len(edges))
	for i, e := range edges {
		if len(e) != 2 {
			return nil, fmt.Errorf("edge %d has %d ids: %w", i, len(e), ErrMalformedEdges)
		}
		typedEdges[i] = [2]int{e[0], e[1]}
	}

	typedFaces := make([][3]int, len(faces))
	for i, f := range faces {
		if len(f) != 3 {
			return nil, fmt.Errorf("face %d has %d ids: %w", i, len(f), ErrMalformedFaces)
		}
		typedFaces[i] = [3]int{f[0], f[1], f[2]}
	}

	return FromTopology(restPositions, typedEdges, typedFaces, opts...)
}

// FromTopology builds a mesh from typed connectivity, validating vertex ids.
func FromTopology(restPositions mat.Matrix, edges [][2]int, faces [][3]int, opts ...Option) (*Mesh, error) {
	n, dim := 0, 0
	if restPositions != nil {
		rows, cols := restPositions.Dims()
		if rows > 0 {
			if cols != 2 && cols != 3 {
				return nil, fmt.Errorf("got %d columns: %w", cols, ErrInvalidDimension)
			}
			n, dim = rows, cols
		}
	}

	for i, e := range edges {
		for _, v := range e {
			if v < 0 || v >= n {
				return nil, fmt.Errorf("edge %d references vertex %d of %d: %w", i, v, n, ErrVertexOutOfRange)
			}
		}
		if e[0] == e[1] {
			return nil, fmt.Errorf("edge %d: %w", i, ErrDegeneratePrimitive)
		}
	}
	for i, f := range faces {
		for _, v := range f {
			if v < 0 || v >= n {
				return nil, fmt.Errorf("face %d references vertex %d of %d: %w", i, v, n, ErrVertexOutOfRange)
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			return nil, fmt.Errorf("face %d: %w", i, ErrDegeneratePrimitive)
		}
	}

	m := &Mesh{
		Edges:         edges,
		Faces:         faces,
		restPositions: restPositions,
		numVertices:   n,
		dim:           dim,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// NumVertices returns the number of vertices.
func (m *Mesh) NumVertices() int { return m.numVertices }

// Dim returns the spatial dimension, or 0 for an empty mesh.
func (m *Mesh) Dim() int { return m.dim }

// NDof returns the number of degrees of freedom, NumVertices·Dim.
func (m *Mesh) NDof() int { return m.numVertices * m.dim }

// RestPositions returns the rest positions the mesh was built with.
func (m *Mesh) RestPositions() mat.Matrix { return m.restPositions }

// CanCollide reports whether vertices vi and vj may interact.
func (m *Mesh) CanCollide(vi, vj int) bool {
	if m.canCollide == nil {
		return true
	}
	return m.canCollide(vi, vj)
}

// CanCollideFunc returns the interaction predicate, never nil.
func (m *Mesh) CanCollideFunc() CanCollideFunc {
	return m.CanCollide
}

// CheckPositions verifies that a position matrix matches the mesh shape.
func (m *Mesh) CheckPositions(vertices mat.Matrix) error {
	n := geometry.NumVertices(vertices)
	if n != m.numVertices {
		return fmt.Errorf("mesh: got %d vertex positions, mesh has %d vertices", n, m.numVertices)
	}
	if n == 0 {
		return nil
	}
	if _, cols := vertices.Dims(); cols != m.dim {
		return fmt.Errorf("mesh: got %d columns, mesh is %dD: %w", cols, m.dim, ErrInvalidDimension)
	}
	return nil
}

// EdgesFromFaces returns the unique edges of a triangle list, each ordered
// with the smaller vertex id first, sorted lexicographically.
func EdgesFromFaces(faces [][3]int) [][2]int {
	edges := make([][2]int, 0, 3*len(faces))
	for _, f := range faces {
		for i := range 3 {
			a, b := f[i], f[(i+1)%3]
			edges = append(edges, [2]int{min(a, b), max(a, b)})
		}
	}
	slices.SortFunc(edges, func(x, y [2]int) int {
		if x[0] != y[0] {
			return x[0] - y[0]
		}
		return x[1] - y[1]
	})
	return slices.Compact(edges)
}
