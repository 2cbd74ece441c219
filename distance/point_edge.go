package distance

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// ClassifyPointEdge returns the closest feature of the edge (e0, e1) to p.
// A zero-length edge classifies as PointEdgeToE0.
func ClassifyPointEdge(p, e0, e1 mgl64.Vec3) PointEdgeType {
	e := e1.Sub(e0)
	ee := e.Dot(e)
	if ee == 0 {
		return PointEdgeToE0
	}
	t := p.Sub(e0).Dot(e) / ee
	switch {
	case t <= 0:
		return PointEdgeToE0
	case t >= 1:
		return PointEdgeToE1
	default:
		return PointEdgeToEdge
	}
}

func pointEdgeStencil(t PointEdgeType) stencil {
	switch t {
	case PointEdgeToE0:
		return stencil{form: &pointPointForm, idx: [4]int{0, 1}}
	case PointEdgeToE1:
		return stencil{form: &pointPointForm, idx: [4]int{0, 2}}
	default:
		return stencil{form: &pointLineForm, idx: [4]int{0, 1, 2}}
	}
}

func resolvePointEdge(p, e0, e1 mgl64.Vec3, t PointEdgeType) PointEdgeType {
	if t == PointEdgeAuto {
		return ClassifyPointEdge(p, e0, e1)
	}
	return t
}

// PointEdgeDistance returns the squared distance between p and the edge
// (e0, e1). PointEdgeAuto classifies the configuration first.
func PointEdgeDistance(p, e0, e1 mgl64.Vec3, t PointEdgeType) float64 {
	pts := [4]mgl64.Vec3{p, e0, e1}
	return pointEdgeStencil(resolvePointEdge(p, e0, e1, t)).value(&pts)
}

// PointEdgeDistanceGradient returns the 9-entry gradient w.r.t. [p, e0, e1].
func PointEdgeDistanceGradient(p, e0, e1 mgl64.Vec3, t PointEdgeType) []float64 {
	pts := [4]mgl64.Vec3{p, e0, e1}
	return pointEdgeStencil(resolvePointEdge(p, e0, e1, t)).gradient(&pts, 3)
}

// PointEdgeDistanceHessian returns the 9×9 Hessian w.r.t. [p, e0, e1].
func PointEdgeDistanceHessian(p, e0, e1 mgl64.Vec3, t PointEdgeType) *mat.Dense {
	pts := [4]mgl64.Vec3{p, e0, e1}
	return pointEdgeStencil(resolvePointEdge(p, e0, e1, t)).hessian(&pts, 3)
}
