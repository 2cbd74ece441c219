package geometry

import "github.com/go-gl/mathgl/mgl64"

func orient2D(a, b, c mgl64.Vec3) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func orient3D(a, b, c, d mgl64.Vec3) float64 {
	return b.Sub(a).Dot(c.Sub(a).Cross(d.Sub(a)))
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// onSegment2D reports whether q, known to be collinear with [p, r], lies on it.
func onSegment2D(p, q, r mgl64.Vec3) bool {
	return q[0] <= max(p[0], r[0]) && q[0] >= min(p[0], r[0]) &&
		q[1] <= max(p[1], r[1]) && q[1] >= min(p[1], r[1])
}

// SegmentsIntersect2D reports whether the segments [a0, a1] and [b0, b1] of
// the xy-plane intersect, including touching and collinear overlap.
func SegmentsIntersect2D(a0, a1, b0, b1 mgl64.Vec3) bool {
	o1 := sign(orient2D(a0, a1, b0))
	o2 := sign(orient2D(a0, a1, b1))
	o3 := sign(orient2D(b0, b1, a0))
	o4 := sign(orient2D(b0, b1, a1))

	if o1 != o2 && o3 != o4 {
		return true
	}

	// Collinear special cases
	return (o1 == 0 && onSegment2D(a0, b0, a1)) ||
		(o2 == 0 && onSegment2D(a0, b1, a1)) ||
		(o3 == 0 && onSegment2D(b0, a0, b1)) ||
		(o4 == 0 && onSegment2D(b0, a1, b1))
}

// SegmentIntersectsTriangle reports whether the segment [e0, e1] crosses the
// triangle (t0, t1, t2). A segment lying in the triangle's plane is not
// reported.
func SegmentIntersectsTriangle(e0, e1, t0, t1, t2 mgl64.Vec3) bool {
	o0 := sign(orient3D(t0, t1, t2, e0))
	o1 := sign(orient3D(t0, t1, t2, e1))
	if o0 == 0 && o1 == 0 {
		return false
	}
	if o0 == o1 {
		return false
	}

	s0 := sign(orient3D(e0, e1, t0, t1))
	s1 := sign(orient3D(e0, e1, t1, t2))
	s2 := sign(orient3D(e0, e1, t2, t0))
	return (s0 >= 0 && s1 >= 0 && s2 >= 0) || (s0 <= 0 && s1 <= 0 && s2 <= 0)
}
