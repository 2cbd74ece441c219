// Package potential assembles per-collision energies into global values,
// gradients and sparse Hessians.
//
// Assembly splits the collision set into contiguous ranges, one per worker.
// Each worker accumulates into private storage and the partial results are
// merged in worker order, so two runs with the same worker count produce
// bit-identical results.
package potential

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/akmonengine/contact/collisions"
	"github.com/akmonengine/contact/internal/parallel"
	"github.com/akmonengine/contact/mesh"
	"github.com/akmonengine/contact/sparse"
)

const (
	// DefaultDenseThreshold is the largest number of degrees of freedom
	// whose Hessian is accumulated densely.
	DefaultDenseThreshold = 512
	// DefaultMaxTriplets bounds the triplets buffered by parallel sparse
	// assembly.
	DefaultMaxTriplets = 1 << 26
)

// Evaluator computes a potential and its derivatives for one collision on
// the collision's flattened local positions x.
type Evaluator interface {
	Value(c collisions.Collision, x []float64) float64
	Gradient(c collisions.Collision, x []float64) []float64
	Hessian(c collisions.Collision, x []float64, psd PSDProjection) *mat.Dense
}

// Assembler sums an Evaluator over a collision set.
type Assembler struct {
	Workers int
	// DenseThreshold selects dense Hessian accumulation up to this many
	// degrees of freedom. Zero means DefaultDenseThreshold, negative
	// disables dense accumulation.
	DenseThreshold int
	// MaxTriplets switches to serial assembly with in-place compaction when
	// the estimated triplet count exceeds it. Zero means DefaultMaxTriplets.
	MaxTriplets int
	Logger      *slog.Logger
}

func (a Assembler) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

func (a Assembler) denseThreshold() int {
	if a.DenseThreshold == 0 {
		return DefaultDenseThreshold
	}
	return a.DenseThreshold
}

func (a Assembler) maxTriplets() int {
	if a.MaxTriplets <= 0 {
		return DefaultMaxTriplets
	}
	return a.MaxTriplets
}

// local is one collision's view of the mesh.
type local struct {
	x   []float64
	ids [4]int
	n   int
	dim int
}

func localOf(c collisions.Collision, m *mesh.Mesh, v mat.Matrix) local {
	x := c.Dof(v, m.Edges, m.Faces)
	n := c.NumVertices()
	return local{x: x, ids: c.VertexIDs(m.Edges, m.Faces), n: n, dim: len(x) / n}
}

// Value returns the sum of ev over cs. An empty set gives 0.
func (a Assembler) Value(ev Evaluator, cs *collisions.Collisions, m *mesh.Mesh, v mat.Matrix) float64 {
	workers := parallel.Workers(a.Workers)
	partial := make([]float64, workers)
	parallel.For(workers, cs.Size(), func(worker, start, end int) {
		for i := start; i < end; i++ {
			c := cs.Collision(i)
			partial[worker] += ev.Value(c, localOf(c, m, v).x)
		}
	})

	var total float64
	for _, p := range partial {
		total += p
	}
	return total
}

// Gradient returns the global gradient of ev over cs, sized to the mesh's
// degrees of freedom.
func (a Assembler) Gradient(ev Evaluator, cs *collisions.Collisions, m *mesh.Mesh, v mat.Matrix) *mat.VecDense {
	ndof := m.NDof()
	if ndof == 0 {
		return &mat.VecDense{}
	}

	workers := parallel.Workers(a.Workers)
	partial := make([][]float64, workers)
	parallel.For(workers, cs.Size(), func(worker, start, end int) {
		g := make([]float64, ndof)
		for i := start; i < end; i++ {
			c := cs.Collision(i)
			l := localOf(c, m, v)
			lg := ev.Gradient(c, l.x)
			for k := range l.n {
				for d := range l.dim {
					g[l.dim*l.ids[k]+d] += lg[l.dim*k+d]
				}
			}
		}
		partial[worker] = g
	})

	total := make([]float64, ndof)
	for _, g := range partial {
		for i, gi := range g {
			total[i] += gi
		}
	}
	return mat.NewVecDense(ndof, total)
}

// Hessian returns the global Hessian of ev over cs. Local Hessians are
// projected according to psd before being scattered.
func (a Assembler) Hessian(ev Evaluator, cs *collisions.Collisions, m *mesh.Mesh, v mat.Matrix, psd PSDProjection) *sparse.CSR {
	ndof := m.NDof()
	if threshold := a.denseThreshold(); threshold > 0 && ndof <= threshold {
		return a.denseHessian(ev, cs, m, v, psd, ndof)
	}

	var estimate int
	for i := range cs.Size() {
		c := cs.Collision(i)
		size := c.NumVertices() * m.Dim()
		estimate += size * size
	}
	if maxTriplets := a.maxTriplets(); estimate > maxTriplets {
		a.logger().Warn("hessian triplets exceed buffer, assembling serially",
			"estimate", estimate, "max_triplets", maxTriplets)
		return a.serialHessian(ev, cs, m, v, psd, ndof, maxTriplets)
	}
	return a.sparseHessian(ev, cs, m, v, psd, ndof)
}

// scatter calls fn for every entry of a local Hessian with global indices.
func scatter(l local, h *mat.Dense, fn func(row, col int, value float64)) {
	for k := range l.n {
		for a := range l.dim {
			row := l.dim*l.ids[k] + a
			for j := range l.n {
				for b := range l.dim {
					fn(row, l.dim*l.ids[j]+b, h.At(l.dim*k+a, l.dim*j+b))
				}
			}
		}
	}
}

func (a Assembler) denseHessian(ev Evaluator, cs *collisions.Collisions, m *mesh.Mesh, v mat.Matrix, psd PSDProjection, ndof int) *sparse.CSR {
	workers := parallel.Workers(a.Workers)
	partial := make([][]float64, workers)
	parallel.For(workers, cs.Size(), func(worker, start, end int) {
		acc := make([]float64, ndof*ndof)
		for i := start; i < end; i++ {
			c := cs.Collision(i)
			l := localOf(c, m, v)
			scatter(l, ev.Hessian(c, l.x, psd), func(row, col int, value float64) {
				acc[row*ndof+col] += value
			})
		}
		partial[worker] = acc
	})

	total := make([]float64, ndof*ndof)
	for _, acc := range partial {
		for i, value := range acc {
			total[i] += value
		}
	}

	var triplets []sparse.Triplet
	for i, value := range total {
		if value != 0 {
			triplets = append(triplets, sparse.Triplet{Row: i / ndof, Col: i % ndof, Value: value})
		}
	}
	return sparse.NewCSR(ndof, ndof, triplets)
}

func (a Assembler) sparseHessian(ev Evaluator, cs *collisions.Collisions, m *mesh.Mesh, v mat.Matrix, psd PSDProjection, ndof int) *sparse.CSR {
	workers := parallel.Workers(a.Workers)
	partial := make([][]sparse.Triplet, workers)
	parallel.For(workers, cs.Size(), func(worker, start, end int) {
		var triplets []sparse.Triplet
		for i := start; i < end; i++ {
			c := cs.Collision(i)
			l := localOf(c, m, v)
			scatter(l, ev.Hessian(c, l.x, psd), func(row, col int, value float64) {
				triplets = append(triplets, sparse.Triplet{Row: row, Col: col, Value: value})
			})
		}
		partial[worker] = triplets
	})

	var total int
	for _, p := range partial {
		total += len(p)
	}
	triplets := make([]sparse.Triplet, 0, total)
	for _, p := range partial {
		triplets = append(triplets, p...)
	}
	return sparse.NewCSR(ndof, ndof, triplets)
}

// serialHessian keeps a single growing buffer and compacts it whenever the
// next local Hessian would take it past maxTriplets entries.
func (a Assembler) serialHessian(ev Evaluator, cs *collisions.Collisions, m *mesh.Mesh, v mat.Matrix, psd PSDProjection, ndof, maxTriplets int) *sparse.CSR {
	var triplets []sparse.Triplet
	for i := range cs.Size() {
		c := cs.Collision(i)
		l := localOf(c, m, v)
		size := l.n * l.dim
		if len(triplets) > 0 && len(triplets)+size*size > maxTriplets {
			triplets = sparse.Combine(triplets)
		}
		scatter(l, ev.Hessian(c, l.x, psd), func(row, col int, value float64) {
			triplets = append(triplets, sparse.Triplet{Row: row, Col: col, Value: value})
		})
	}
	return sparse.NewCSR(ndof, ndof, triplets)
}
