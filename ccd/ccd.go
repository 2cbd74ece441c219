// Package ccd implements continuous collision detection between the
// primitive pairs of a piecewise-linear trajectory. Every query assumes
// vertices move linearly from their start to their end positions over the
// normalized time interval [0, 1].
package ccd

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/contact/distance"
)

const (
	DefaultMaxIterations         = 10_000_000
	DefaultConservativeRescaling = 0.9
	DefaultTolerance             = 1e-6
)

// NoImpact is the time of impact reported with a false result.
var NoImpact = math.Inf(1)

// NarrowPhase decides whether a pair of moving primitives comes within
// minDistance before tmax. A true result carries a conservative time of
// impact: the primitives are still at least minDistance apart at toi.
type NarrowPhase interface {
	PointPointCCD(p0t0, p1t0, p0t1, p1t1 mgl64.Vec3, minDistance, tmax float64) (bool, float64)
	PointEdgeCCD(pt0, e0t0, e1t0, pt1, e0t1, e1t1 mgl64.Vec3, minDistance, tmax float64) (bool, float64)
	EdgeEdgeCCD(ea0t0, ea1t0, eb0t0, eb1t0, ea0t1, ea1t1, eb0t1, eb1t1 mgl64.Vec3, minDistance, tmax float64) (bool, float64)
	PointTriangleCCD(pt0, t0t0, t1t0, t2t0, pt1, t0t1, t1t1, t2t1 mgl64.Vec3, minDistance, tmax float64) (bool, float64)
}

// query is a stencil trajectory of n points. Points [0, split) move as one
// primitive and [split, n) as the other.
type query struct {
	start, end [4]mgl64.Vec3
	n, split   int
	distance   func(x *[4]mgl64.Vec3) float64
}

func pointPointQuery(p0t0, p1t0, p0t1, p1t1 mgl64.Vec3) query {
	return query{
		start: [4]mgl64.Vec3{p0t0, p1t0},
		end:   [4]mgl64.Vec3{p0t1, p1t1},
		n:     2, split: 1,
		distance: func(x *[4]mgl64.Vec3) float64 {
			return distance.PointPointDistance(x[0], x[1])
		},
	}
}

func pointEdgeQuery(pt0, e0t0, e1t0, pt1, e0t1, e1t1 mgl64.Vec3) query {
	return query{
		start: [4]mgl64.Vec3{pt0, e0t0, e1t0},
		end:   [4]mgl64.Vec3{pt1, e0t1, e1t1},
		n:     3, split: 1,
		distance: func(x *[4]mgl64.Vec3) float64 {
			return distance.PointEdgeDistance(x[0], x[1], x[2], distance.PointEdgeAuto)
		},
	}
}

func edgeEdgeQuery(ea0t0, ea1t0, eb0t0, eb1t0, ea0t1, ea1t1, eb0t1, eb1t1 mgl64.Vec3) query {
	return query{
		start: [4]mgl64.Vec3{ea0t0, ea1t0, eb0t0, eb1t0},
		end:   [4]mgl64.Vec3{ea0t1, ea1t1, eb0t1, eb1t1},
		n:     4, split: 2,
		distance: func(x *[4]mgl64.Vec3) float64 {
			return distance.EdgeEdgeDistance(x[0], x[1], x[2], x[3], distance.EdgeEdgeAuto)
		},
	}
}

func pointTriangleQuery(pt0, t0t0, t1t0, t2t0, pt1, t0t1, t1t1, t2t1 mgl64.Vec3) query {
	return query{
		start: [4]mgl64.Vec3{pt0, t0t0, t1t0, t2t0},
		end:   [4]mgl64.Vec3{pt1, t0t1, t1t1, t2t1},
		n:     4, split: 1,
		distance: func(x *[4]mgl64.Vec3) float64 {
			return distance.PointTriangleDistance(x[0], x[1], x[2], x[3], distance.PointTriangleAuto)
		},
	}
}

// displacements returns the per-point displacements with their mean removed.
func (q *query) displacements() [4]mgl64.Vec3 {
	var dx [4]mgl64.Vec3
	var mean mgl64.Vec3
	for i := range q.n {
		dx[i] = q.end[i].Sub(q.start[i])
		mean = mean.Add(dx[i])
	}
	mean = mean.Mul(1 / float64(q.n))
	for i := range q.n {
		dx[i] = dx[i].Sub(mean)
	}
	return dx
}

// maxDisplacement bounds the relative displacement of the two primitives
// by the sum of each side's largest displacement norm.
func (q *query) maxDisplacement(dx *[4]mgl64.Vec3) float64 {
	var a, b float64
	for i := range q.n {
		l := dx[i].Len()
		if i < q.split {
			a = max(a, l)
		} else {
			b = max(b, l)
		}
	}
	return a + b
}

func (q *query) at(dx *[4]mgl64.Vec3, t float64) [4]mgl64.Vec3 {
	var x [4]mgl64.Vec3
	for i := range q.n {
		x[i] = q.start[i].Add(dx[i].Mul(t))
	}
	return x
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
