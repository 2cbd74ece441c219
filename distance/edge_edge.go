package distance

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// ParallelThreshold is the relative bound on |ea × eb|² below which two
// edges are handled as parallel.
const ParallelThreshold = 1e-20

// ClassifyEdgeEdge returns the closest features of the edges (ea0, ea1) and
// (eb0, eb1).
func ClassifyEdgeEdge(ea0, ea1, eb0, eb1 mgl64.Vec3) EdgeEdgeType {
	u, v, w := ea1.Sub(ea0), eb1.Sub(eb0), ea0.Sub(eb0)

	a, b, c := u.Dot(u), u.Dot(v), v.Dot(v)
	d, e := u.Dot(w), v.Dot(w)
	det := a*c - b*b

	if a == 0 && c == 0 {
		return EdgeEdgeEA0EB0
	}
	if a == 0 {
		return edgeEdgeFromPointEdge(ClassifyPointEdge(ea0, eb0, eb1), EdgeEdgeEA0EB0, EdgeEdgeEA0EB1, EdgeEdgeEA0EB)
	}
	if c == 0 {
		return edgeEdgeFromPointEdge(ClassifyPointEdge(eb0, ea0, ea1), EdgeEdgeEA0EB0, EdgeEdgeEA1EB0, EdgeEdgeEAEB0)
	}

	crossNorm := u.Cross(v).Dot(u.Cross(v))
	if crossNorm < ParallelThreshold*max(1, a*c) {
		return parallelEdgeEdgeType(ea0, ea1, eb0, eb1)
	}

	// Closest parameters on the infinite lines, clamped to the edges
	// (sN/det on A, tN/tD on B).
	defaultCase := EdgeEdgeEAEB
	sN := b*e - c*d
	var tN, tD float64
	if sN <= 0 {
		tN, tD = e, c
		defaultCase = EdgeEdgeEA0EB
	} else if sN >= det {
		tN, tD = e+b, c
		defaultCase = EdgeEdgeEA1EB
	} else {
		tN, tD = a*e-b*d, det
	}

	if tN <= 0 {
		switch {
		case -d <= 0:
			return EdgeEdgeEA0EB0
		case -d >= a:
			return EdgeEdgeEA1EB0
		default:
			return EdgeEdgeEAEB0
		}
	}
	if tN >= tD {
		switch {
		case b-d <= 0:
			return EdgeEdgeEA0EB1
		case b-d >= a:
			return EdgeEdgeEA1EB1
		default:
			return EdgeEdgeEAEB1
		}
	}
	return defaultCase
}

func edgeEdgeFromPointEdge(t PointEdgeType, e0, e1, interior EdgeEdgeType) EdgeEdgeType {
	switch t {
	case PointEdgeToE0:
		return e0
	case PointEdgeToE1:
		return e1
	default:
		return interior
	}
}

// parallelEdgeEdgeType picks the closest of the four endpoint-to-edge
// configurations.
func parallelEdgeEdgeType(ea0, ea1, eb0, eb1 mgl64.Vec3) EdgeEdgeType {
	type option struct {
		p, e0, e1         mgl64.Vec3
		atE0, atE1, inner EdgeEdgeType
	}
	options := [4]option{
		{ea0, eb0, eb1, EdgeEdgeEA0EB0, EdgeEdgeEA0EB1, EdgeEdgeEA0EB},
		{ea1, eb0, eb1, EdgeEdgeEA1EB0, EdgeEdgeEA1EB1, EdgeEdgeEA1EB},
		{eb0, ea0, ea1, EdgeEdgeEA0EB0, EdgeEdgeEA1EB0, EdgeEdgeEAEB0},
		{eb1, ea0, ea1, EdgeEdgeEA0EB1, EdgeEdgeEA1EB1, EdgeEdgeEAEB1},
	}

	best, bestType := -1.0, EdgeEdgeEA0EB0
	for _, o := range options {
		pe := ClassifyPointEdge(o.p, o.e0, o.e1)
		d := PointEdgeDistance(o.p, o.e0, o.e1, pe)
		if best >= 0 && d >= best {
			continue
		}
		best = d
		bestType = edgeEdgeFromPointEdge(pe, o.atE0, o.atE1, o.inner)
	}
	return bestType
}

func edgeEdgeStencil(t EdgeEdgeType) stencil {
	switch t {
	case EdgeEdgeEA0EB0:
		return stencil{form: &pointPointForm, idx: [4]int{0, 2}}
	case EdgeEdgeEA0EB1:
		return stencil{form: &pointPointForm, idx: [4]int{0, 3}}
	case EdgeEdgeEA1EB0:
		return stencil{form: &pointPointForm, idx: [4]int{1, 2}}
	case EdgeEdgeEA1EB1:
		return stencil{form: &pointPointForm, idx: [4]int{1, 3}}
	case EdgeEdgeEA0EB:
		return stencil{form: &pointLineForm, idx: [4]int{0, 2, 3}}
	case EdgeEdgeEA1EB:
		return stencil{form: &pointLineForm, idx: [4]int{1, 2, 3}}
	case EdgeEdgeEAEB0:
		return stencil{form: &pointLineForm, idx: [4]int{2, 0, 1}}
	case EdgeEdgeEAEB1:
		return stencil{form: &pointLineForm, idx: [4]int{3, 0, 1}}
	default:
		return stencil{form: &lineLineForm, idx: [4]int{0, 1, 2, 3}}
	}
}

func resolveEdgeEdge(ea0, ea1, eb0, eb1 mgl64.Vec3, t EdgeEdgeType) EdgeEdgeType {
	if t == EdgeEdgeAuto {
		return ClassifyEdgeEdge(ea0, ea1, eb0, eb1)
	}
	return t
}

// EdgeEdgeDistance returns the squared distance between the edges
// (ea0, ea1) and (eb0, eb1).
func EdgeEdgeDistance(ea0, ea1, eb0, eb1 mgl64.Vec3, t EdgeEdgeType) float64 {
	pts := [4]mgl64.Vec3{ea0, ea1, eb0, eb1}
	return edgeEdgeStencil(resolveEdgeEdge(ea0, ea1, eb0, eb1, t)).value(&pts)
}

// EdgeEdgeDistanceGradient returns the 12-entry gradient w.r.t.
// [ea0, ea1, eb0, eb1].
func EdgeEdgeDistanceGradient(ea0, ea1, eb0, eb1 mgl64.Vec3, t EdgeEdgeType) []float64 {
	pts := [4]mgl64.Vec3{ea0, ea1, eb0, eb1}
	return edgeEdgeStencil(resolveEdgeEdge(ea0, ea1, eb0, eb1, t)).gradient(&pts, 4)
}

// EdgeEdgeDistanceHessian returns the 12×12 Hessian w.r.t.
// [ea0, ea1, eb0, eb1].
func EdgeEdgeDistanceHessian(ea0, ea1, eb0, eb1 mgl64.Vec3, t EdgeEdgeType) *mat.Dense {
	pts := [4]mgl64.Vec3{ea0, ea1, eb0, eb1}
	return edgeEdgeStencil(resolveEdgeEdge(ea0, ea1, eb0, eb1, t)).hessian(&pts, 4)
}
