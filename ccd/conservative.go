package ccd

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ConservativeAdvancement steps time forward by the current gap over the
// bound on relative speed, which can never skip past a contact. It reports
// an impact once the step drops below Tolerance.
type ConservativeAdvancement struct {
	Tolerance             float64
	MaxIterations         int
	ConservativeRescaling float64
	Logger                *slog.Logger
}

// NewConservativeAdvancement returns a ConservativeAdvancement with default
// settings.
func NewConservativeAdvancement() *ConservativeAdvancement {
	return &ConservativeAdvancement{
		Tolerance:             DefaultTolerance,
		MaxIterations:         DefaultMaxIterations,
		ConservativeRescaling: DefaultConservativeRescaling,
	}
}

func (c *ConservativeAdvancement) PointPointCCD(p0t0, p1t0, p0t1, p1t1 mgl64.Vec3, minDistance, tmax float64) (bool, float64) {
	return c.run(pointPointQuery(p0t0, p1t0, p0t1, p1t1), minDistance, tmax)
}

func (c *ConservativeAdvancement) PointEdgeCCD(pt0, e0t0, e1t0, pt1, e0t1, e1t1 mgl64.Vec3, minDistance, tmax float64) (bool, float64) {
	return c.run(pointEdgeQuery(pt0, e0t0, e1t0, pt1, e0t1, e1t1), minDistance, tmax)
}

func (c *ConservativeAdvancement) EdgeEdgeCCD(ea0t0, ea1t0, eb0t0, eb1t0, ea0t1, ea1t1, eb0t1, eb1t1 mgl64.Vec3, minDistance, tmax float64) (bool, float64) {
	return c.run(edgeEdgeQuery(ea0t0, ea1t0, eb0t0, eb1t0, ea0t1, ea1t1, eb0t1, eb1t1), minDistance, tmax)
}

func (c *ConservativeAdvancement) PointTriangleCCD(pt0, t0t0, t1t0, t2t0, pt1, t0t1, t1t1, t2t1 mgl64.Vec3, minDistance, tmax float64) (bool, float64) {
	return c.run(pointTriangleQuery(pt0, t0t0, t1t0, t2t0, pt1, t0t1, t1t1, t2t1), minDistance, tmax)
}

func (c *ConservativeAdvancement) settings() (float64, int, float64) {
	tol, iters, alpha := c.Tolerance, c.MaxIterations, c.ConservativeRescaling
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if iters <= 0 {
		iters = DefaultMaxIterations
	}
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultConservativeRescaling
	}
	return tol, iters, alpha
}

func (c *ConservativeAdvancement) run(q query, minDistance, tmax float64) (bool, float64) {
	tolerance, maxIterations, alpha := c.settings()
	dx := q.displacements()
	lp := q.maxDisplacement(&dx)
	if lp == 0 {
		return false, NoImpact
	}

	x := q.start
	if math.Sqrt(q.distance(&x)) <= minDistance {
		loggerOrDefault(c.Logger).Warn("initial distance within minimum distance", "min_distance", minDistance)
		return true, 0
	}

	t := 0.0
	for range maxIterations {
		x = q.at(&dx, t)
		step := (math.Sqrt(q.distance(&x)) - minDistance) / lp
		if t+step > tmax {
			return false, NoImpact
		}
		if step < tolerance {
			return true, alpha * t
		}
		t += step
	}

	loggerOrDefault(c.Logger).Warn("ccd iteration budget exhausted, reporting impact at current bound",
		"max_iterations", maxIterations, "toi", alpha*t)
	return true, alpha * t
}
