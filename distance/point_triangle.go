package distance

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// ClassifyPointTriangle returns the closest feature of the triangle
// (t0, t1, t2) to p using Voronoi regions. A degenerate triangle picks the
// closest of its three edges.
func ClassifyPointTriangle(p, t0, t1, t2 mgl64.Vec3) PointTriangleType {
	ab, ac := t1.Sub(t0), t2.Sub(t0)
	if ab.Cross(ac).Dot(ab.Cross(ac)) == 0 {
		return degeneratePointTriangleType(p, t0, t1, t2)
	}

	ap := p.Sub(t0)
	d1, d2 := ab.Dot(ap), ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return PointTriangleToT0
	}

	bp := p.Sub(t1)
	d3, d4 := ab.Dot(bp), ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return PointTriangleToT1
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return PointTriangleToE0
	}

	cp := p.Sub(t2)
	d5, d6 := ab.Dot(cp), ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return PointTriangleToT2
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return PointTriangleToE2
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		return PointTriangleToE1
	}
	return PointTriangleToTriangle
}

func degeneratePointTriangleType(p, t0, t1, t2 mgl64.Vec3) PointTriangleType {
	edges := [3][2]mgl64.Vec3{{t0, t1}, {t1, t2}, {t2, t0}}
	best, bestType := -1.0, PointTriangleToT0
	for i, e := range edges {
		pe := ClassifyPointEdge(p, e[0], e[1])
		d := PointEdgeDistance(p, e[0], e[1], pe)
		if best >= 0 && d >= best {
			continue
		}
		best = d
		switch pe {
		case PointEdgeToE0:
			bestType = PointTriangleToT0 + PointTriangleType(i)
		case PointEdgeToE1:
			bestType = PointTriangleToT0 + PointTriangleType((i+1)%3)
		default:
			bestType = PointTriangleToE0 + PointTriangleType(i)
		}
	}
	return bestType
}

func pointTriangleStencil(t PointTriangleType) stencil {
	switch t {
	case PointTriangleToT0:
		return stencil{form: &pointPointForm, idx: [4]int{0, 1}}
	case PointTriangleToT1:
		return stencil{form: &pointPointForm, idx: [4]int{0, 2}}
	case PointTriangleToT2:
		return stencil{form: &pointPointForm, idx: [4]int{0, 3}}
	case PointTriangleToE0:
		return stencil{form: &pointLineForm, idx: [4]int{0, 1, 2}}
	case PointTriangleToE1:
		return stencil{form: &pointLineForm, idx: [4]int{0, 2, 3}}
	case PointTriangleToE2:
		return stencil{form: &pointLineForm, idx: [4]int{0, 3, 1}}
	default:
		return stencil{form: &pointPlaneForm, idx: [4]int{0, 1, 2, 3}}
	}
}

func resolvePointTriangle(p, t0, t1, t2 mgl64.Vec3, t PointTriangleType) PointTriangleType {
	if t == PointTriangleAuto {
		return ClassifyPointTriangle(p, t0, t1, t2)
	}
	return t
}

// PointTriangleDistance returns the squared distance between p and the
// triangle (t0, t1, t2).
func PointTriangleDistance(p, t0, t1, t2 mgl64.Vec3, t PointTriangleType) float64 {
	pts := [4]mgl64.Vec3{p, t0, t1, t2}
	return pointTriangleStencil(resolvePointTriangle(p, t0, t1, t2, t)).value(&pts)
}

// PointTriangleDistanceGradient returns the 12-entry gradient w.r.t.
// [p, t0, t1, t2].
func PointTriangleDistanceGradient(p, t0, t1, t2 mgl64.Vec3, t PointTriangleType) []float64 {
	pts := [4]mgl64.Vec3{p, t0, t1, t2}
	return pointTriangleStencil(resolvePointTriangle(p, t0, t1, t2, t)).gradient(&pts, 4)
}

// PointTriangleDistanceHessian returns the 12×12 Hessian w.r.t.
// [p, t0, t1, t2].
func PointTriangleDistanceHessian(p, t0, t1, t2 mgl64.Vec3, t PointTriangleType) *mat.Dense {
	pts := [4]mgl64.Vec3{p, t0, t1, t2}
	return pointTriangleStencil(resolvePointTriangle(p, t0, t1, t2, t)).hessian(&pts, 4)
}
