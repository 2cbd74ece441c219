package distance

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

var pointPointStencil = stencil{form: &pointPointForm, idx: [4]int{0, 1}}

// PointPointDistance returns the squared distance between two points.
func PointPointDistance(p0, p1 mgl64.Vec3) float64 {
	d := p1.Sub(p0)
	return d.Dot(d)
}

// PointPointDistanceGradient returns the 6-entry gradient of
// PointPointDistance w.r.t. [p0, p1].
func PointPointDistanceGradient(p0, p1 mgl64.Vec3) []float64 {
	pts := [4]mgl64.Vec3{p0, p1}
	return pointPointStencil.gradient(&pts, 2)
}

// PointPointDistanceHessian returns the 6×6 Hessian of PointPointDistance.
func PointPointDistanceHessian(p0, p1 mgl64.Vec3) *mat.Dense {
	pts := [4]mgl64.Vec3{p0, p1}
	return pointPointStencil.hessian(&pts, 2)
}
