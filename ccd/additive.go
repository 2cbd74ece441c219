package ccd

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AdditiveCCD advances a lower bound on the time of impact using the
// additive scheme of Li et al.: every step moves by a fraction of the
// current gap over the maximal relative displacement, and the search stops
// once the gap falls below a fraction of its initial value.
type AdditiveCCD struct {
	MaxIterations         int
	ConservativeRescaling float64
	Logger                *slog.Logger
}

// NewAdditiveCCD returns an AdditiveCCD with default settings.
func NewAdditiveCCD() *AdditiveCCD {
	return &AdditiveCCD{
		MaxIterations:         DefaultMaxIterations,
		ConservativeRescaling: DefaultConservativeRescaling,
	}
}

func (c *AdditiveCCD) PointPointCCD(p0t0, p1t0, p0t1, p1t1 mgl64.Vec3, minDistance, tmax float64) (bool, float64) {
	return c.run(pointPointQuery(p0t0, p1t0, p0t1, p1t1), minDistance, tmax)
}

func (c *AdditiveCCD) PointEdgeCCD(pt0, e0t0, e1t0, pt1, e0t1, e1t1 mgl64.Vec3, minDistance, tmax float64) (bool, float64) {
	return c.run(pointEdgeQuery(pt0, e0t0, e1t0, pt1, e0t1, e1t1), minDistance, tmax)
}

func (c *AdditiveCCD) EdgeEdgeCCD(ea0t0, ea1t0, eb0t0, eb1t0, ea0t1, ea1t1, eb0t1, eb1t1 mgl64.Vec3, minDistance, tmax float64) (bool, float64) {
	return c.run(edgeEdgeQuery(ea0t0, ea1t0, eb0t0, eb1t0, ea0t1, ea1t1, eb0t1, eb1t1), minDistance, tmax)
}

func (c *AdditiveCCD) PointTriangleCCD(pt0, t0t0, t1t0, t2t0, pt1, t0t1, t1t1, t2t1 mgl64.Vec3, minDistance, tmax float64) (bool, float64) {
	return c.run(pointTriangleQuery(pt0, t0t0, t1t0, t2t0, pt1, t0t1, t1t1, t2t1), minDistance, tmax)
}

func (c *AdditiveCCD) settings() (int, float64) {
	iters, alpha := c.MaxIterations, c.ConservativeRescaling
	if iters <= 0 {
		iters = DefaultMaxIterations
	}
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultConservativeRescaling
	}
	return iters, alpha
}

func (c *AdditiveCCD) run(q query, minDistance, tmax float64) (bool, float64) {
	maxIterations, alpha := c.settings()
	dx := q.displacements()
	lp := q.maxDisplacement(&dx)
	if lp == 0 {
		return false, NoImpact
	}

	x := q.start
	minDistanceSq := minDistance * minDistance
	dSq := q.distance(&x)
	d := math.Sqrt(dSq)
	if d <= minDistance {
		loggerOrDefault(c.Logger).Warn("initial distance within minimum distance",
			"distance", d, "min_distance", minDistance)
		return true, 0
	}

	gap := (1 - alpha) * (dSq - minDistanceSq) / (d + minDistance)
	toi := 0.0
	for range maxIterations {
		step := alpha * (dSq - minDistanceSq) / ((d + minDistance) * lp)

		x = q.at(&dx, toi+step)
		dSq = q.distance(&x)
		d = math.Sqrt(dSq)

		if toi > 0 && (dSq-minDistanceSq)/(d+minDistance) < gap {
			return true, toi
		}

		toi += step
		if toi > tmax {
			return false, NoImpact
		}
	}

	loggerOrDefault(c.Logger).Warn("ccd iteration budget exhausted, reporting impact at current bound",
		"max_iterations", maxIterations, "toi", toi)
	return true, toi
}
