package collisions

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/akmonengine/contact/broadphase"
	"github.com/akmonengine/contact/candidates"
	"github.com/akmonengine/contact/distance"
	"github.com/akmonengine/contact/internal/parallel"
	"github.com/akmonengine/contact/mesh"
)

var ErrIndexOutOfRange = errors.New("collisions: index out of range")

// Collisions is the set of active contacts for one configuration. Flat
// indices run over VV, then EV, EE and FV, each in insertion order.
type Collisions struct {
	VV []VertexVertex
	EV []EdgeVertex
	EE []EdgeEdge
	FV []FaceVertex
}

func (c *Collisions) Size() int {
	return len(c.VV) + len(c.EV) + len(c.EE) + len(c.FV)
}

func (c *Collisions) Empty() bool { return c.Size() == 0 }

func (c *Collisions) Clear() {
	c.VV = c.VV[:0]
	c.EV = c.EV[:0]
	c.EE = c.EE[:0]
	c.FV = c.FV[:0]
}

// At returns the i-th collision in flat order.
func (c *Collisions) At(i int) (Collision, error) {
	idx := i
	if i >= 0 {
		if i < len(c.VV) {
			return c.VV[i], nil
		}
		i -= len(c.VV)
		if i < len(c.EV) {
			return c.EV[i], nil
		}
		i -= len(c.EV)
		if i < len(c.EE) {
			return c.EE[i], nil
		}
		i -= len(c.EE)
		if i < len(c.FV) {
			return c.FV[i], nil
		}
	}
	return nil, fmt.Errorf("collision %d of %d: %w", idx, c.Size(), ErrIndexOutOfRange)
}

// Collision is At for indices known to be valid. It panics otherwise.
func (c *Collisions) Collision(i int) Collision {
	col, err := c.At(i)
	if err != nil {
		panic(err)
	}
	return col
}

func (c *Collisions) IsVertexVertex(i int) bool { return i >= 0 && i < len(c.VV) }

func (c *Collisions) IsEdgeVertex(i int) bool {
	return i >= len(c.VV) && i < len(c.VV)+len(c.EV)
}

func (c *Collisions) IsEdgeEdge(i int) bool {
	start := len(c.VV) + len(c.EV)
	return i >= start && i < start+len(c.EE)
}

func (c *Collisions) IsFaceVertex(i int) bool {
	start := len(c.VV) + len(c.EV) + len(c.EE)
	return i >= start && i < start+len(c.FV)
}

// Build activates every candidate closer than dhat + dmin in the
// configuration v. Weights are 1.
func Build(cands *candidates.Candidates, m *mesh.Mesh, v mat.Matrix, dhat, dmin float64, workers int) *Collisions {
	threshold := (dhat + dmin) * (dhat + dmin)
	rest := m.RestPositions()
	edges, faces := m.Edges, m.Faces
	workers = parallel.Workers(workers)

	out := &Collisions{}
	out.VV = activate(workers, cands.VV, func(c candidates.VertexVertex) (VertexVertex, bool) {
		d := candidates.ComputeDistance(c, v, edges, faces)
		return NewVertexVertex(c, 1, dmin), d < threshold
	})
	out.EV = activate(workers, cands.EV, func(c candidates.EdgeVertex) (EdgeVertex, bool) {
		p := c.Vertices(v, edges, faces)
		dtype := distance.ClassifyPointEdge(p[0], p[1], p[2])
		d := distance.PointEdgeDistance(p[0], p[1], p[2], dtype)
		return NewEdgeVertex(c, 1, dmin, dtype), d < threshold
	})
	out.EE = activate(workers, cands.EE, func(c candidates.EdgeEdge) (EdgeEdge, bool) {
		p := c.Vertices(v, edges, faces)
		dtype := distance.ClassifyEdgeEdge(p[0], p[1], p[2], p[3])
		d := distance.EdgeEdgeDistance(p[0], p[1], p[2], p[3], dtype)
		if d >= threshold {
			return EdgeEdge{}, false
		}
		r := c.Vertices(rest, edges, faces)
		epsX := distance.EdgeEdgeMollifierThreshold(r[0], r[1], r[2], r[3])
		return NewEdgeEdge(c, 1, dmin, dtype, epsX), true
	})
	out.FV = activate(workers, cands.FV, func(c candidates.FaceVertex) (FaceVertex, bool) {
		p := c.Vertices(v, edges, faces)
		dtype := distance.ClassifyPointTriangle(p[0], p[1], p[2], p[3])
		d := distance.PointTriangleDistance(p[0], p[1], p[2], p[3], dtype)
		return NewFaceVertex(c, 1, dmin, dtype), d < threshold
	})
	return out
}

// activate maps cands through fn in parallel and keeps the accepted
// results in candidate order.
func activate[C, T any](workers int, cands []C, fn func(C) (T, bool)) []T {
	buckets := make([][]T, workers)
	parallel.For(workers, len(cands), func(worker, start, end int) {
		for i := start; i < end; i++ {
			if col, ok := fn(cands[i]); ok {
				buckets[worker] = append(buckets[worker], col)
			}
		}
	})
	return slices.Concat(buckets...)
}

// BuildFromMesh runs bp on v inflated by half the activation distance and
// activates the resulting candidates.
func BuildFromMesh(m *mesh.Mesh, v mat.Matrix, dhat, dmin float64, bp broadphase.BroadPhase, workers int) *Collisions {
	bp.SetCanVerticesCollide(m.CanCollideFunc())
	bp.Build(v, m.Edges, m.Faces, 0.5*(dhat+dmin))
	var cands candidates.Candidates
	bp.DetectCollisionCandidates(m.Dim(), &cands)
	bp.Clear()
	return Build(&cands, m, v, dhat, dmin, workers)
}

// MinimumDistance returns the smallest distance over all collisions, or
// +Inf when there are none.
func (c *Collisions) MinimumDistance(m *mesh.Mesh, v mat.Matrix, workers int) float64 {
	workers = parallel.Workers(workers)
	mins := make([]float64, workers)
	for i := range mins {
		mins[i] = math.Inf(1)
	}
	parallel.For(workers, c.Size(), func(worker, start, end int) {
		for i := start; i < end; i++ {
			d := candidates.ComputeDistance(c.Collision(i), v, m.Edges, m.Faces)
			mins[worker] = min(mins[worker], d)
		}
	})
	return math.Sqrt(slices.Min(mins))
}
