// Package contact runs the collision pipeline on a mesh: broad phase,
// continuous collision detection over a linear step, active collision sets
// and exact intersection checks.
package contact

import (
	"log/slog"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"

	"github.com/akmonengine/contact/broadphase"
	"github.com/akmonengine/contact/candidates"
	"github.com/akmonengine/contact/ccd"
	"github.com/akmonengine/contact/collisions"
	"github.com/akmonengine/contact/config"
	"github.com/akmonengine/contact/geometry"
	"github.com/akmonengine/contact/internal/parallel"
	"github.com/akmonengine/contact/mesh"
	"github.com/akmonengine/contact/potential"
)

// Pipeline bundles a broad phase and a narrow phase.
type Pipeline struct {
	BroadPhase  broadphase.BroadPhase
	NarrowPhase ccd.NarrowPhase
	// InflationRadius is a lower bound on the box inflation of step and
	// collision queries. Queries never inflate by less than half their
	// separation distance.
	InflationRadius float64
	Workers         int
	Logger          *slog.Logger
}

// New returns a pipeline with a hash grid broad phase and additive CCD.
func New() *Pipeline {
	return &Pipeline{
		BroadPhase:  broadphase.NewHashGrid(),
		NarrowPhase: ccd.NewAdditiveCCD(),
		Workers:     parallel.DefaultWorkers,
	}
}

// FromConfig builds the pipeline described by cfg.
func FromConfig(cfg config.Config, logger *slog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bp, err := cfg.NewBroadPhase(logger)
	if err != nil {
		return nil, err
	}
	np, err := cfg.NewNarrowPhase(logger)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		BroadPhase:      bp,
		NarrowPhase:     np,
		InflationRadius: cfg.InflationRadius,
		Workers:         cfg.Workers,
		Logger:          logger,
	}, nil
}

// inflation returns the box inflation for a query separating primitives
// by at least separation.
func (p *Pipeline) inflation(separation float64) float64 {
	return max(p.InflationRadius, 0.5*separation)
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// BuildCandidates returns the deduplicated candidates whose boxes, inflated
// by inflationRadius, overlap at positions v.
func (p *Pipeline) BuildCandidates(m *mesh.Mesh, v mat.Matrix, inflationRadius float64) (*candidates.Candidates, error) {
	if err := m.CheckPositions(v); err != nil {
		return nil, err
	}
	p.BroadPhase.SetCanVerticesCollide(m.CanCollideFunc())
	p.BroadPhase.Build(v, m.Edges, m.Faces, inflationRadius)
	defer p.BroadPhase.Clear()

	var c candidates.Candidates
	p.BroadPhase.DetectCollisionCandidates(m.Dim(), &c)
	c.Dedup()
	return &c, nil
}

// BuildSweptCandidates is BuildCandidates over boxes enclosing the linear
// motion from v0 to v1.
func (p *Pipeline) BuildSweptCandidates(m *mesh.Mesh, v0, v1 mat.Matrix, inflationRadius float64) (*candidates.Candidates, error) {
	if err := m.CheckPositions(v0); err != nil {
		return nil, err
	}
	if err := m.CheckPositions(v1); err != nil {
		return nil, err
	}
	p.BroadPhase.SetCanVerticesCollide(m.CanCollideFunc())
	p.BroadPhase.BuildSwept(v0, v1, m.Edges, m.Faces, inflationRadius)
	defer p.BroadPhase.Clear()

	var c candidates.Candidates
	p.BroadPhase.DetectCollisionCandidates(m.Dim(), &c)
	c.Dedup()
	return &c, nil
}

// IsStepCollisionFree reports whether the mesh can move linearly from v0 to
// v1 without any two primitives coming within minDistance.
func (p *Pipeline) IsStepCollisionFree(m *mesh.Mesh, v0, v1 mat.Matrix, minDistance float64) (bool, error) {
	c, err := p.BuildSweptCandidates(m, v0, v1, p.inflation(minDistance))
	if err != nil {
		return false, err
	}
	return c.IsStepCollisionFree(m, v0, v1, minDistance, p.NarrowPhase, p.Workers), nil
}

// CollisionFreeStepSize returns the largest fraction in [0, 1] of the step
// from v0 to v1 that stays collision free.
func (p *Pipeline) CollisionFreeStepSize(m *mesh.Mesh, v0, v1 mat.Matrix, minDistance float64) (float64, error) {
	c, err := p.BuildSweptCandidates(m, v0, v1, p.inflation(minDistance))
	if err != nil {
		return 0, err
	}
	step := c.CollisionFreeStepSize(m, v0, v1, minDistance, p.NarrowPhase, p.Workers)
	p.logger().Debug("collision free step size",
		"candidates", c.Size(), "step", step, "broad_phase", p.BroadPhase.Name())
	return step, nil
}

// BuildCollisions returns the collisions active at v for the barrier
// activation distance dhat and offset dmin.
func (p *Pipeline) BuildCollisions(m *mesh.Mesh, v mat.Matrix, dhat, dmin float64) (*collisions.Collisions, error) {
	c, err := p.BuildCandidates(m, v, p.inflation(dhat+dmin))
	if err != nil {
		return nil, err
	}
	return collisions.Build(c, m, v, dhat, dmin, p.Workers), nil
}

// Assembler returns a potential assembler sharing the pipeline's workers
// and logger.
func (p *Pipeline) Assembler() potential.Assembler {
	return potential.Assembler{Workers: p.Workers, Logger: p.Logger}
}

// HasIntersections reports whether any two primitives of the mesh cross at
// v: segments in 2D, an edge through a triangle in 3D. Primitives sharing a
// vertex are never tested.
func (p *Pipeline) HasIntersections(m *mesh.Mesh, v mat.Matrix) (bool, error) {
	if err := m.CheckPositions(v); err != nil {
		return false, err
	}
	p.BroadPhase.SetCanVerticesCollide(m.CanCollideFunc())
	p.BroadPhase.Build(v, m.Edges, m.Faces, 0.5e-6*geometry.DiagonalLength(v))
	defer p.BroadPhase.Clear()

	var found atomic.Bool
	if m.Dim() == 2 {
		pairs := p.BroadPhase.DetectEdgeEdgeCandidates()
		parallel.For(p.Workers, len(pairs), func(_, start, end int) {
			for _, c := range pairs[start:end] {
				if found.Load() {
					return
				}
				x := c.Vertices(v, m.Edges, m.Faces)
				if geometry.SegmentsIntersect2D(x[0], x[1], x[2], x[3]) {
					found.Store(true)
				}
			}
		})
		return found.Load(), nil
	}

	pairs := p.BroadPhase.DetectEdgeFaceCandidates()
	parallel.For(p.Workers, len(pairs), func(_, start, end int) {
		for _, c := range pairs[start:end] {
			if found.Load() {
				return
			}
			e, f := m.Edges[c.Edge], m.Faces[c.Face]
			if geometry.SegmentIntersectsTriangle(
				geometry.Point(v, e[0]), geometry.Point(v, e[1]),
				geometry.Point(v, f[0]), geometry.Point(v, f[1]), geometry.Point(v, f[2]),
			) {
				found.Store(true)
			}
		}
	})
	return found.Load(), nil
}
