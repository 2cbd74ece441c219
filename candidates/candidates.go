package candidates

import (
	"fmt"
	"slices"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"

	"github.com/akmonengine/contact/ccd"
	"github.com/akmonengine/contact/internal/parallel"
	"github.com/akmonengine/contact/mesh"
)

// Candidates is the set of primitive pairs that may come into contact.
// Flat indices run over VV, then EV, EE and FV.
type Candidates struct {
	VV []VertexVertex
	EV []EdgeVertex
	EE []EdgeEdge
	FV []FaceVertex
}

func (c *Candidates) Size() int {
	return len(c.VV) + len(c.EV) + len(c.EE) + len(c.FV)
}

func (c *Candidates) Empty() bool { return c.Size() == 0 }

// Clear empties every list, keeping their capacity.
func (c *Candidates) Clear() {
	c.VV = c.VV[:0]
	c.EV = c.EV[:0]
	c.EE = c.EE[:0]
	c.FV = c.FV[:0]
}

// At returns the i-th candidate in flat order.
func (c *Candidates) At(i int) (Stencil, error) {
	idx := i
	if i < 0 {
		return nil, fmt.Errorf("candidate %d: %w", idx, ErrIndexOutOfRange)
	}
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
	return nil, fmt.Errorf("candidate %d of %d: %w", idx, c.Size(), ErrIndexOutOfRange)
}

func (c *Candidates) stencil(i int) Stencil {
	s, err := c.At(i)
	if err != nil {
		panic(err)
	}
	return s
}

// Dedup sorts every list and drops duplicates, treating symmetric pairs as
// unordered.
func (c *Candidates) Dedup() {
	c.VV = SortUnique(c.VV, VertexVertex.Compare)
	c.EV = SortUnique(c.EV, EdgeVertex.Compare)
	c.EE = SortUnique(c.EE, EdgeEdge.Compare)
	c.FV = SortUnique(c.FV, FaceVertex.Compare)
}

// SortUnique sorts s by compare and removes entries comparing equal.
func SortUnique[T any](s []T, compare func(a, b T) int) []T {
	slices.SortFunc(s, compare)
	return slices.CompactFunc(s, func(a, b T) bool { return compare(a, b) == 0 })
}

// IsStepCollisionFree reports whether no candidate comes within minDistance
// while the mesh moves linearly from v0 to v1. The candidates must have
// been built from boxes swept over the same step.
func (c *Candidates) IsStepCollisionFree(m *mesh.Mesh, v0, v1 mat.Matrix,
	minDistance float64, np ccd.NarrowPhase, workers int,
) bool {
	var collided atomic.Bool
	parallel.For(workers, c.Size(), func(_, start, end int) {
		for i := start; i < end; i++ {
			if collided.Load() {
				return
			}
			hit, _ := ComputeCCD(c.stencil(i), v0, v1, m.Edges, m.Faces, minDistance, 1, np)
			if hit {
				collided.Store(true)
				return
			}
		}
	})
	return !collided.Load()
}

// CollisionFreeStepSize returns the largest fraction of the step from v0 to
// v1 that no candidate flags as colliding. Each worker narrows its own
// earliest time of impact and passes it as tmax to later queries.
func (c *Candidates) CollisionFreeStepSize(m *mesh.Mesh, v0, v1 mat.Matrix,
	minDistance float64, np ccd.NarrowPhase, workers int,
) float64 {
	if c.Empty() {
		return 1
	}

	workers = parallel.Workers(workers)
	earliest := make([]float64, workers)
	for i := range earliest {
		earliest[i] = 1
	}
	parallel.For(workers, c.Size(), func(worker, start, end int) {
		for i := start; i < end; i++ {
			hit, toi := ComputeCCD(c.stencil(i), v0, v1, m.Edges, m.Faces, minDistance, earliest[worker], np)
			if hit && toi < earliest[worker] {
				earliest[worker] = toi
			}
		}
	})
	return slices.Min(earliest)
}
