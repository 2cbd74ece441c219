package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Dim returns the number of columns of a position matrix (2 or 3), or 0 when
// the matrix holds no vertex. Any other column count is a programming error
// and panics.
func Dim(vertices mat.Matrix) int {
	if vertices == nil {
		return 0
	}
	rows, cols := vertices.Dims()
	if rows == 0 {
		return 0
	}
	if cols != 2 && cols != 3 {
		panic(fmt.Sprintf("geometry: vertex positions must have 2 or 3 columns, got %d", cols))
	}
	return cols
}

// NumVertices returns the number of rows of a position matrix.
func NumVertices(vertices mat.Matrix) int {
	if vertices == nil {
		return 0
	}
	rows, _ := vertices.Dims()
	return rows
}

// Point reads row i of a position matrix. Two-dimensional rows get z = 0.
func Point(vertices mat.Matrix, i int) mgl64.Vec3 {
	_, cols := vertices.Dims()
	p := mgl64.Vec3{vertices.At(i, 0), vertices.At(i, 1), 0}
	if cols == 3 {
		p[2] = vertices.At(i, 2)
	}
	return p
}

// VertexBoxes builds one box per vertex, inflated by inflationRadius.
func VertexBoxes(vertices mat.Matrix, inflationRadius float64) []AABB {
	Dim(vertices)
	n := NumVertices(vertices)
	boxes := make([]AABB, n)
	for i := range n {
		p := Point(vertices, i)
		boxes[i] = NewAABB(p, p).Inflate(inflationRadius)
		boxes[i].VertexIDs = [3]int{i, NoVertex, NoVertex}
	}
	return boxes
}

// SweptVertexBoxes builds one box per vertex covering its start and end
// positions, inflated by inflationRadius.
func SweptVertexBoxes(verticesT0, verticesT1 mat.Matrix, inflationRadius float64) []AABB {
	dim0, dim1 := Dim(verticesT0), Dim(verticesT1)
	n0, n1 := NumVertices(verticesT0), NumVertices(verticesT1)
	if n0 != n1 || (n0 > 0 && dim0 != dim1) {
		panic(fmt.Sprintf("geometry: swept positions have mismatched shapes %dx%d and %dx%d", n0, dim0, n1, dim1))
	}

	boxes := make([]AABB, n0)
	for i := range n0 {
		boxes[i] = NewAABB(Point(verticesT0, i), Point(verticesT1, i)).Inflate(inflationRadius)
		boxes[i].VertexIDs = [3]int{i, NoVertex, NoVertex}
	}
	return boxes
}

// EdgeBoxes builds one box per edge as the union of its vertex boxes.
func EdgeBoxes(vertexBoxes []AABB, edges [][2]int) []AABB {
	boxes := make([]AABB, len(edges))
	for i, e := range edges {
		boxes[i] = vertexBoxes[e[0]].Union(vertexBoxes[e[1]])
		boxes[i].VertexIDs = [3]int{e[0], e[1], NoVertex}
	}
	return boxes
}

// FaceBoxes builds one box per triangle as the union of its vertex boxes.
func FaceBoxes(vertexBoxes []AABB, faces [][3]int) []AABB {
	boxes := make([]AABB, len(faces))
	for i, f := range faces {
		boxes[i] = vertexBoxes[f[0]].Union(vertexBoxes[f[1]]).Union(vertexBoxes[f[2]])
		boxes[i].VertexIDs = f
	}
	return boxes
}

// DiagonalLength returns the length of the bounding-box diagonal of all
// vertices, or 0 when there is none.
func DiagonalLength(vertices mat.Matrix) float64 {
	n := NumVertices(vertices)
	if n == 0 {
		return 0
	}
	Dim(vertices)
	box := NewAABB(Point(vertices, 0), Point(vertices, 0))
	for i := 1; i < n; i++ {
		p := Point(vertices, i)
		box = box.Union(NewAABB(p, p))
	}
	return box.Extent().Len()
}
