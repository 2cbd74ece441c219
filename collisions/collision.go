// Package collisions holds the active contacts of one time step: the
// candidates whose distance falls below the activation threshold, with
// their classification cached.
package collisions

import (
	"gonum.org/v1/gonum/mat"

	"github.com/akmonengine/contact/candidates"
	"github.com/akmonengine/contact/distance"
)

// Collision is an active contact stencil.
type Collision interface {
	candidates.Stencil
	// Weight scales the collision's contribution to a potential.
	Weight() float64
	// DMin is the minimum distance offset applied to the barrier.
	DMin() float64
	IsMollified() bool
}

// Mollified is implemented by collisions whose potential is multiplied by
// a mollifier of the positions.
type Mollified interface {
	Mollifier(x []float64) float64
	MollifierGradient(x []float64) []float64
	MollifierHessian(x []float64) *mat.Dense
}

type params struct {
	weight float64
	dmin   float64
}

func (p params) Weight() float64 { return p.weight }
func (p params) DMin() float64   { return p.dmin }

type VertexVertex struct {
	candidates.VertexVertex
	params
}

func NewVertexVertex(c candidates.VertexVertex, weight, dmin float64) VertexVertex {
	return VertexVertex{VertexVertex: c, params: params{weight, dmin}}
}

func (VertexVertex) IsMollified() bool { return false }

// EdgeVertex evaluates its distance with a fixed classification.
type EdgeVertex struct {
	candidates.EdgeVertex
	params
	DType distance.PointEdgeType
}

func NewEdgeVertex(c candidates.EdgeVertex, weight, dmin float64, dtype distance.PointEdgeType) EdgeVertex {
	return EdgeVertex{EdgeVertex: c, params: params{weight, dmin}, DType: dtype}
}

func (EdgeVertex) IsMollified() bool { return false }

func (c EdgeVertex) Distance(x []float64) float64 {
	return candidates.EdgeVertexDistance(x, c.DType)
}

func (c EdgeVertex) DistanceGradient(x []float64) []float64 {
	return candidates.EdgeVertexDistanceGradient(x, c.DType)
}

func (c EdgeVertex) DistanceHessian(x []float64) *mat.Dense {
	return candidates.EdgeVertexDistanceHessian(x, c.DType)
}

// EdgeEdge evaluates its distance with a fixed classification and is
// mollified when the edges become parallel. EpsX is the mollifier threshold
// computed on rest positions.
type EdgeEdge struct {
	candidates.EdgeEdge
	params
	DType distance.EdgeEdgeType
	EpsX  float64
}

func NewEdgeEdge(c candidates.EdgeEdge, weight, dmin float64, dtype distance.EdgeEdgeType, epsX float64) EdgeEdge {
	return EdgeEdge{EdgeEdge: c, params: params{weight, dmin}, DType: dtype, EpsX: epsX}
}

func (EdgeEdge) IsMollified() bool { return true }

func (c EdgeEdge) Distance(x []float64) float64 {
	return candidates.EdgeEdgeDistance(x, c.DType)
}

func (c EdgeEdge) DistanceGradient(x []float64) []float64 {
	return candidates.EdgeEdgeDistanceGradient(x, c.DType)
}

func (c EdgeEdge) DistanceHessian(x []float64) *mat.Dense {
	return candidates.EdgeEdgeDistanceHessian(x, c.DType)
}

func (c EdgeEdge) Mollifier(x []float64) float64 {
	p, _ := distance.Unflatten(x, 4)
	return distance.EdgeEdgeMollifier(distance.EdgeEdgeCrossSquaredNorm(p[0], p[1], p[2], p[3]), c.EpsX)
}

func (c EdgeEdge) MollifierGradient(x []float64) []float64 {
	p, dim := distance.Unflatten(x, 4)
	return distance.ReduceGradient(distance.EdgeEdgeMollifierGradient(p[0], p[1], p[2], p[3], c.EpsX), 4, dim)
}

func (c EdgeEdge) MollifierHessian(x []float64) *mat.Dense {
	p, dim := distance.Unflatten(x, 4)
	return distance.ReduceHessian(distance.EdgeEdgeMollifierHessian(p[0], p[1], p[2], p[3], c.EpsX), 4, dim)
}

// FaceVertex evaluates its distance with a fixed classification.
type FaceVertex struct {
	candidates.FaceVertex
	params
	DType distance.PointTriangleType
}

func NewFaceVertex(c candidates.FaceVertex, weight, dmin float64, dtype distance.PointTriangleType) FaceVertex {
	return FaceVertex{FaceVertex: c, params: params{weight, dmin}, DType: dtype}
}

func (FaceVertex) IsMollified() bool { return false }

func (c FaceVertex) Distance(x []float64) float64 {
	return candidates.FaceVertexDistance(x, c.DType)
}

func (c FaceVertex) DistanceGradient(x []float64) []float64 {
	return candidates.FaceVertexDistanceGradient(x, c.DType)
}

func (c FaceVertex) DistanceHessian(x []float64) *mat.Dense {
	return candidates.FaceVertexDistanceHessian(x, c.DType)
}
