package candidates

import (
	"cmp"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/akmonengine/contact/ccd"
	"github.com/akmonengine/contact/distance"
	"github.com/akmonengine/contact/geometry"
)

// VertexVertex is an unordered pair of vertices.
type VertexVertex struct {
	V0, V1 int
}

// Key returns the pair with the smaller id first.
func (c VertexVertex) Key() VertexVertex {
	if c.V1 < c.V0 {
		return VertexVertex{c.V1, c.V0}
	}
	return c
}

func (c VertexVertex) Equal(o VertexVertex) bool { return c.Key() == o.Key() }

func (c VertexVertex) Compare(o VertexVertex) int {
	a, b := c.Key(), o.Key()
	return cmp.Or(cmp.Compare(a.V0, b.V0), cmp.Compare(a.V1, b.V1))
}

func (c VertexVertex) NumVertices() int { return 2 }

func (c VertexVertex) VertexIDs(_ [][2]int, _ [][3]int) [4]int {
	return [4]int{c.V0, c.V1, geometry.NoVertex, geometry.NoVertex}
}

func (c VertexVertex) Vertices(v mat.Matrix, edges [][2]int, faces [][3]int) [4]mgl64.Vec3 {
	return vertices(c, v, edges, faces)
}

func (c VertexVertex) Dof(v mat.Matrix, edges [][2]int, faces [][3]int) []float64 {
	return dof(c, v, edges, faces)
}

func (c VertexVertex) Distance(x []float64) float64 { return VertexVertexDistance(x) }

func (c VertexVertex) DistanceGradient(x []float64) []float64 {
	return VertexVertexDistanceGradient(x)
}

func (c VertexVertex) DistanceHessian(x []float64) *mat.Dense {
	return VertexVertexDistanceHessian(x)
}

func (c VertexVertex) CCD(x0, x1 []float64, minDistance, tmax float64, np ccd.NarrowPhase) (bool, float64) {
	a, _ := distance.Unflatten(x0, 2)
	b, _ := distance.Unflatten(x1, 2)
	return np.PointPointCCD(a[0], a[1], b[0], b[1], minDistance, tmax)
}

// EdgeVertex pairs an edge with a vertex. Stencil order is
// [vertex, edge.v0, edge.v1].
type EdgeVertex struct {
	Edge, Vertex int
}

func (c EdgeVertex) Compare(o EdgeVertex) int {
	return cmp.Or(cmp.Compare(c.Edge, o.Edge), cmp.Compare(c.Vertex, o.Vertex))
}

func (c EdgeVertex) NumVertices() int { return 3 }

func (c EdgeVertex) VertexIDs(edges [][2]int, _ [][3]int) [4]int {
	e := edges[c.Edge]
	return [4]int{c.Vertex, e[0], e[1], geometry.NoVertex}
}

func (c EdgeVertex) Vertices(v mat.Matrix, edges [][2]int, faces [][3]int) [4]mgl64.Vec3 {
	return vertices(c, v, edges, faces)
}

func (c EdgeVertex) Dof(v mat.Matrix, edges [][2]int, faces [][3]int) []float64 {
	return dof(c, v, edges, faces)
}

func (c EdgeVertex) Distance(x []float64) float64 {
	return EdgeVertexDistance(x, distance.PointEdgeAuto)
}

func (c EdgeVertex) DistanceGradient(x []float64) []float64 {
	return EdgeVertexDistanceGradient(x, distance.PointEdgeAuto)
}

func (c EdgeVertex) DistanceHessian(x []float64) *mat.Dense {
	return EdgeVertexDistanceHessian(x, distance.PointEdgeAuto)
}

func (c EdgeVertex) CCD(x0, x1 []float64, minDistance, tmax float64, np ccd.NarrowPhase) (bool, float64) {
	a, _ := distance.Unflatten(x0, 3)
	b, _ := distance.Unflatten(x1, 3)
	return np.PointEdgeCCD(a[0], a[1], a[2], b[0], b[1], b[2], minDistance, tmax)
}

// EdgeEdge is an unordered pair of edges. Stencil order is
// [e0.v0, e0.v1, e1.v0, e1.v1].
type EdgeEdge struct {
	Edge0, Edge1 int
}

// Key returns the pair with the smaller id first.
func (c EdgeEdge) Key() EdgeEdge {
	if c.Edge1 < c.Edge0 {
		return EdgeEdge{c.Edge1, c.Edge0}
	}
	return c
}

func (c EdgeEdge) Equal(o EdgeEdge) bool { return c.Key() == o.Key() }

func (c EdgeEdge) Compare(o EdgeEdge) int {
	a, b := c.Key(), o.Key()
	return cmp.Or(cmp.Compare(a.Edge0, b.Edge0), cmp.Compare(a.Edge1, b.Edge1))
}

func (c EdgeEdge) NumVertices() int { return 4 }

func (c EdgeEdge) VertexIDs(edges [][2]int, _ [][3]int) [4]int {
	ea, eb := edges[c.Edge0], edges[c.Edge1]
	return [4]int{ea[0], ea[1], eb[0], eb[1]}
}

func (c EdgeEdge) Vertices(v mat.Matrix, edges [][2]int, faces [][3]int) [4]mgl64.Vec3 {
	return vertices(c, v, edges, faces)
}

func (c EdgeEdge) Dof(v mat.Matrix, edges [][2]int, faces [][3]int) []float64 {
	return dof(c, v, edges, faces)
}

func (c EdgeEdge) Distance(x []float64) float64 {
	return EdgeEdgeDistance(x, distance.EdgeEdgeAuto)
}

func (c EdgeEdge) DistanceGradient(x []float64) []float64 {
	return EdgeEdgeDistanceGradient(x, distance.EdgeEdgeAuto)
}

func (c EdgeEdge) DistanceHessian(x []float64) *mat.Dense {
	return EdgeEdgeDistanceHessian(x, distance.EdgeEdgeAuto)
}

func (c EdgeEdge) CCD(x0, x1 []float64, minDistance, tmax float64, np ccd.NarrowPhase) (bool, float64) {
	a, _ := distance.Unflatten(x0, 4)
	b, _ := distance.Unflatten(x1, 4)
	return np.EdgeEdgeCCD(a[0], a[1], a[2], a[3], b[0], b[1], b[2], b[3], minDistance, tmax)
}

// FaceVertex pairs a triangle with a vertex. Stencil order is
// [vertex, face.v0, face.v1, face.v2].
type FaceVertex struct {
	Face, Vertex int
}

func (c FaceVertex) Compare(o FaceVertex) int {
	return cmp.Or(cmp.Compare(c.Face, o.Face), cmp.Compare(c.Vertex, o.Vertex))
}

func (c FaceVertex) NumVertices() int { return 4 }

func (c FaceVertex) VertexIDs(_ [][2]int, faces [][3]int) [4]int {
	f := faces[c.Face]
	return [4]int{c.Vertex, f[0], f[1], f[2]}
}

func (c FaceVertex) Vertices(v mat.Matrix, edges [][2]int, faces [][3]int) [4]mgl64.Vec3 {
	return vertices(c, v, edges, faces)
}

func (c FaceVertex) Dof(v mat.Matrix, edges [][2]int, faces [][3]int) []float64 {
	return dof(c, v, edges, faces)
}

func (c FaceVertex) Distance(x []float64) float64 {
	return FaceVertexDistance(x, distance.PointTriangleAuto)
}

func (c FaceVertex) DistanceGradient(x []float64) []float64 {
	return FaceVertexDistanceGradient(x, distance.PointTriangleAuto)
}

func (c FaceVertex) DistanceHessian(x []float64) *mat.Dense {
	return FaceVertexDistanceHessian(x, distance.PointTriangleAuto)
}

func (c FaceVertex) CCD(x0, x1 []float64, minDistance, tmax float64, np ccd.NarrowPhase) (bool, float64) {
	a, _ := distance.Unflatten(x0, 4)
	b, _ := distance.Unflatten(x1, 4)
	return np.PointTriangleCCD(a[0], a[1], a[2], a[3], b[0], b[1], b[2], b[3], minDistance, tmax)
}

// EdgeFace pairs an edge with a triangle, used by intersection tests.
type EdgeFace struct {
	Edge, Face int
}

func (c EdgeFace) Compare(o EdgeFace) int {
	return cmp.Or(cmp.Compare(c.Edge, o.Edge), cmp.Compare(c.Face, o.Face))
}

// FaceFace is an unordered pair of triangles.
type FaceFace struct {
	Face0, Face1 int
}

// Key returns the pair with the smaller id first.
func (c FaceFace) Key() FaceFace {
	if c.Face1 < c.Face0 {
		return FaceFace{c.Face1, c.Face0}
	}
	return c
}

func (c FaceFace) Equal(o FaceFace) bool { return c.Key() == o.Key() }

func (c FaceFace) Compare(o FaceFace) int {
	a, b := c.Key(), o.Key()
	return cmp.Or(cmp.Compare(a.Face0, b.Face0), cmp.Compare(a.Face1, b.Face1))
}
