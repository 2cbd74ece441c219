// Package candidates holds the primitive pairs produced by the broad phase
// and the stencil abstraction that evaluates their distance and CCD.
package candidates

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/akmonengine/contact/ccd"
	"github.com/akmonengine/contact/distance"
	"github.com/akmonengine/contact/geometry"
)

var ErrIndexOutOfRange = errors.New("candidates: index out of range")

// Stencil is a pair of primitives seen as a small ordered set of at most
// four vertices. Flattened vectors x hold those vertices' coordinates in
// stencil order, either 2 or 3 per vertex.
type Stencil interface {
	NumVertices() int
	// VertexIDs returns the mesh ids of the stencil's vertices; slots beyond
	// NumVertices are geometry.NoVertex.
	VertexIDs(edges [][2]int, faces [][3]int) [4]int
	// Vertices returns the stencil's positions; slots beyond NumVertices are NaN.
	Vertices(vertices mat.Matrix, edges [][2]int, faces [][3]int) [4]mgl64.Vec3
	Dof(vertices mat.Matrix, edges [][2]int, faces [][3]int) []float64

	Distance(x []float64) float64
	DistanceGradient(x []float64) []float64
	DistanceHessian(x []float64) *mat.Dense

	CCD(x0, x1 []float64, minDistance, tmax float64, np ccd.NarrowPhase) (bool, float64)
}

func vertices(s Stencil, v mat.Matrix, edges [][2]int, faces [][3]int) [4]mgl64.Vec3 {
	nan := math.NaN()
	pts := [4]mgl64.Vec3{{nan, nan, nan}, {nan, nan, nan}, {nan, nan, nan}, {nan, nan, nan}}
	ids := s.VertexIDs(edges, faces)
	for i := range s.NumVertices() {
		pts[i] = geometry.Point(v, ids[i])
	}
	return pts
}

func dof(s Stencil, v mat.Matrix, edges [][2]int, faces [][3]int) []float64 {
	dim := geometry.Dim(v)
	ids := s.VertexIDs(edges, faces)
	x := make([]float64, 0, dim*s.NumVertices())
	for i := range s.NumVertices() {
		for d := range dim {
			x = append(x, v.At(ids[i], d))
		}
	}
	return x
}

// ComputeDistance evaluates s on the positions of a whole mesh.
func ComputeDistance(s Stencil, v mat.Matrix, edges [][2]int, faces [][3]int) float64 {
	return s.Distance(s.Dof(v, edges, faces))
}

func ComputeDistanceGradient(s Stencil, v mat.Matrix, edges [][2]int, faces [][3]int) []float64 {
	return s.DistanceGradient(s.Dof(v, edges, faces))
}

func ComputeDistanceHessian(s Stencil, v mat.Matrix, edges [][2]int, faces [][3]int) *mat.Dense {
	return s.DistanceHessian(s.Dof(v, edges, faces))
}

// ComputeCCD runs the narrow phase on s between two full position matrices.
func ComputeCCD(s Stencil, v0, v1 mat.Matrix, edges [][2]int, faces [][3]int,
	minDistance, tmax float64, np ccd.NarrowPhase,
) (bool, float64) {
	return s.CCD(s.Dof(v0, edges, faces), s.Dof(v1, edges, faces), minDistance, tmax, np)
}

// WriteCCDQuery dumps a stencil trajectory as OBJ vertices: the start
// positions followed by the end positions.
func WriteCCDQuery(w io.Writer, s Stencil, x0, x1 []float64) error {
	n := s.NumVertices()
	if len(x0) != len(x1) || len(x0)%n != 0 {
		return fmt.Errorf("candidates: mismatched ccd query sizes %d and %d", len(x0), len(x1))
	}
	dim := len(x0) / n
	for _, x := range [][]float64{x0, x1} {
		for i := range n {
			if _, err := io.WriteString(w, "v"); err != nil {
				return err
			}
			for d := range dim {
				if _, err := fmt.Fprintf(w, " %.17g", x[dim*i+d]); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// The typed helpers below evaluate each pair kind for a given distance
// type; collisions reuse them with their cached types.

func VertexVertexDistance(x []float64) float64 {
	p, _ := distance.Unflatten(x, 2)
	return distance.PointPointDistance(p[0], p[1])
}

func VertexVertexDistanceGradient(x []float64) []float64 {
	p, dim := distance.Unflatten(x, 2)
	return distance.ReduceGradient(distance.PointPointDistanceGradient(p[0], p[1]), 2, dim)
}

func VertexVertexDistanceHessian(x []float64) *mat.Dense {
	p, dim := distance.Unflatten(x, 2)
	return distance.ReduceHessian(distance.PointPointDistanceHessian(p[0], p[1]), 2, dim)
}

func EdgeVertexDistance(x []float64, t distance.PointEdgeType) float64 {
	p, _ := distance.Unflatten(x, 3)
	return distance.PointEdgeDistance(p[0], p[1], p[2], t)
}

func EdgeVertexDistanceGradient(x []float64, t distance.PointEdgeType) []float64 {
	p, dim := distance.Unflatten(x, 3)
	return distance.ReduceGradient(distance.PointEdgeDistanceGradient(p[0], p[1], p[2], t), 3, dim)
}

func EdgeVertexDistanceHessian(x []float64, t distance.PointEdgeType) *mat.Dense {
	p, dim := distance.Unflatten(x, 3)
	return distance.ReduceHessian(distance.PointEdgeDistanceHessian(p[0], p[1], p[2], t), 3, dim)
}

func EdgeEdgeDistance(x []float64, t distance.EdgeEdgeType) float64 {
	p, _ := distance.Unflatten(x, 4)
	return distance.EdgeEdgeDistance(p[0], p[1], p[2], p[3], t)
}

func EdgeEdgeDistanceGradient(x []float64, t distance.EdgeEdgeType) []float64 {
	p, dim := distance.Unflatten(x, 4)
	return distance.ReduceGradient(distance.EdgeEdgeDistanceGradient(p[0], p[1], p[2], p[3], t), 4, dim)
}

func EdgeEdgeDistanceHessian(x []float64, t distance.EdgeEdgeType) *mat.Dense {
	p, dim := distance.Unflatten(x, 4)
	return distance.ReduceHessian(distance.EdgeEdgeDistanceHessian(p[0], p[1], p[2], p[3], t), 4, dim)
}

func FaceVertexDistance(x []float64, t distance.PointTriangleType) float64 {
	p, _ := distance.Unflatten(x, 4)
	return distance.PointTriangleDistance(p[0], p[1], p[2], p[3], t)
}

func FaceVertexDistanceGradient(x []float64, t distance.PointTriangleType) []float64 {
	p, dim := distance.Unflatten(x, 4)
	return distance.ReduceGradient(distance.PointTriangleDistanceGradient(p[0], p[1], p[2], p[3], t), 4, dim)
}

func FaceVertexDistanceHessian(x []float64, t distance.PointTriangleType) *mat.Dense {
	p, dim := distance.Unflatten(x, 4)
	return distance.ReduceHessian(distance.PointTriangleDistanceHessian(p[0], p[1], p[2], p[3], t), 4, dim)
}
