// Package broadphase finds pairs of mesh primitives whose bounding boxes
// overlap. Every method returns the same sorted, duplicate-free candidate
// lists; they only differ in how overlapping boxes are enumerated.
package broadphase

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/akmonengine/contact/candidates"
	"github.com/akmonengine/contact/geometry"
	"github.com/akmonengine/contact/internal/parallel"
)

var ErrUnknownMethod = errors.New("broadphase: unknown method")

// BroadPhase builds boxes for a mesh and enumerates candidate pairs.
type BroadPhase interface {
	// SetCanVerticesCollide installs the vertex interaction predicate; nil
	// lets every pair of vertices interact.
	SetCanVerticesCollide(fn func(vi, vj int) bool)

	Build(vertices mat.Matrix, edges [][2]int, faces [][3]int, inflationRadius float64)
	BuildSwept(verticesT0, verticesT1 mat.Matrix, edges [][2]int, faces [][3]int, inflationRadius float64)
	Clear()

	DetectEdgeVertexCandidates() []candidates.EdgeVertex
	DetectEdgeEdgeCandidates() []candidates.EdgeEdge
	DetectFaceVertexCandidates() []candidates.FaceVertex
	DetectEdgeFaceCandidates() []candidates.EdgeFace
	DetectFaceFaceCandidates() []candidates.FaceFace

	// DetectCollisionCandidates fills out with the candidates needed for a
	// dim-dimensional mesh: edge-vertex in 2D, edge-edge and face-vertex in 3D.
	DetectCollisionCandidates(dim int, out *candidates.Candidates)

	Name() string
}

// Method selects a broad phase implementation.
type Method uint8

const (
	MethodBruteForce Method = iota
	MethodHashGrid
	MethodSpatialHash
	MethodBVH
	MethodSweepAndPrune
)

var methodNames = map[Method]string{
	MethodBruteForce:    "brute_force",
	MethodHashGrid:      "hash_grid",
	MethodSpatialHash:   "spatial_hash",
	MethodBVH:           "bvh",
	MethodSweepAndPrune: "sweep_and_prune",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", uint8(m))
}

// Methods lists every known method.
func Methods() []Method {
	return []Method{MethodBruteForce, MethodHashGrid, MethodSpatialHash, MethodBVH, MethodSweepAndPrune}
}

// ParseMethod returns the method with the given name.
func ParseMethod(name string) (Method, error) {
	for m, n := range methodNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownMethod)
}

// Option configures a broad phase.
type Option func(*base)

// WithWorkers sets the number of workers used to enumerate pairs.
func WithWorkers(workers int) Option {
	return func(b *base) { b.workers = parallel.Workers(workers) }
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func WithCanVerticesCollide(fn func(vi, vj int) bool) Option {
	return func(b *base) { b.SetCanVerticesCollide(fn) }
}

// New returns the broad phase for method. An unknown method falls back to
// a HashGrid and logs a warning.
func New(method Method, opts ...Option) BroadPhase {
	switch method {
	case MethodBruteForce:
		return NewBruteForce(opts...)
	case MethodHashGrid:
		return NewHashGrid(opts...)
	case MethodSpatialHash:
		return NewSpatialHash(opts...)
	case MethodBVH:
		return NewBVH(opts...)
	case MethodSweepAndPrune:
		return NewSweepAndPrune(opts...)
	}
	hg := NewHashGrid(opts...)
	hg.logger.Warn("unknown broad phase method, falling back to hash grid", "method", method.String())
	return hg
}

// pairFinder enumerates overlapping boxes. Returned pairs overlap, may be
// repeated and come in any order.
type pairFinder interface {
	// selfPairs returns pairs (i, j), i < j, of overlapping boxes.
	selfPairs(boxes []geometry.AABB) [][2]int
	// crossPairs returns pairs (i, j) with a[i] overlapping b[j].
	crossPairs(a, b []geometry.AABB) [][2]int
}

// base holds the boxes and filters shared by every method.
type base struct {
	name   string
	finder pairFinder

	vertexBoxes []geometry.AABB
	edgeBoxes   []geometry.AABB
	faceBoxes   []geometry.AABB

	canVerticesCollide func(vi, vj int) bool
	workers            int
	logger             *slog.Logger
}

func (b *base) init(name string, finder pairFinder, opts []Option) {
	b.name = name
	b.finder = finder
	b.workers = parallel.DefaultWorkers
	b.logger = slog.Default()
	b.canVerticesCollide = alwaysCollide
	for _, opt := range opts {
		opt(b)
	}
}

func alwaysCollide(int, int) bool { return true }

func (b *base) Name() string { return b.name }

func (b *base) SetCanVerticesCollide(fn func(vi, vj int) bool) {
	if fn == nil {
		fn = alwaysCollide
	}
	b.canVerticesCollide = fn
}

func (b *base) Build(vertices mat.Matrix, edges [][2]int, faces [][3]int, inflationRadius float64) {
	b.Clear()
	b.vertexBoxes = geometry.VertexBoxes(vertices, inflationRadius)
	b.edgeBoxes = geometry.EdgeBoxes(b.vertexBoxes, edges)
	b.faceBoxes = geometry.FaceBoxes(b.vertexBoxes, faces)
}

func (b *base) BuildSwept(verticesT0, verticesT1 mat.Matrix, edges [][2]int, faces [][3]int, inflationRadius float64) {
	b.Clear()
	b.vertexBoxes = geometry.SweptVertexBoxes(verticesT0, verticesT1, inflationRadius)
	b.edgeBoxes = geometry.EdgeBoxes(b.vertexBoxes, edges)
	b.faceBoxes = geometry.FaceBoxes(b.vertexBoxes, faces)
}

func (b *base) Clear() {
	b.vertexBoxes = nil
	b.edgeBoxes = nil
	b.faceBoxes = nil
}

func (b *base) DetectEdgeVertexCandidates() []candidates.EdgeVertex {
	var out []candidates.EdgeVertex
	for _, p := range b.finder.crossPairs(b.edgeBoxes, b.vertexBoxes) {
		if b.canEdgeVertexCollide(p[0], p[1]) {
			out = append(out, candidates.EdgeVertex{Edge: p[0], Vertex: p[1]})
		}
	}
	return candidates.SortUnique(out, candidates.EdgeVertex.Compare)
}

func (b *base) DetectEdgeEdgeCandidates() []candidates.EdgeEdge {
	var out []candidates.EdgeEdge
	for _, p := range b.finder.selfPairs(b.edgeBoxes) {
		if b.canEdgesCollide(p[0], p[1]) {
			out = append(out, candidates.EdgeEdge{Edge0: p[0], Edge1: p[1]}.Key())
		}
	}
	return candidates.SortUnique(out, candidates.EdgeEdge.Compare)
}

func (b *base) DetectFaceVertexCandidates() []candidates.FaceVertex {
	var out []candidates.FaceVertex
	for _, p := range b.finder.crossPairs(b.faceBoxes, b.vertexBoxes) {
		if b.canFaceVertexCollide(p[0], p[1]) {
			out = append(out, candidates.FaceVertex{Face: p[0], Vertex: p[1]})
		}
	}
	return candidates.SortUnique(out, candidates.FaceVertex.Compare)
}

func (b *base) DetectEdgeFaceCandidates() []candidates.EdgeFace {
	var out []candidates.EdgeFace
	for _, p := range b.finder.crossPairs(b.edgeBoxes, b.faceBoxes) {
		if b.canEdgeFaceCollide(p[0], p[1]) {
			out = append(out, candidates.EdgeFace{Edge: p[0], Face: p[1]})
		}
	}
	return candidates.SortUnique(out, candidates.EdgeFace.Compare)
}

func (b *base) DetectFaceFaceCandidates() []candidates.FaceFace {
	var out []candidates.FaceFace
	for _, p := range b.finder.selfPairs(b.faceBoxes) {
		if b.canFacesCollide(p[0], p[1]) {
			out = append(out, candidates.FaceFace{Face0: p[0], Face1: p[1]}.Key())
		}
	}
	return candidates.SortUnique(out, candidates.FaceFace.Compare)
}

func (b *base) DetectCollisionCandidates(dim int, out *candidates.Candidates) {
	out.Clear()
	if dim == 2 {
		out.EV = append(out.EV, b.DetectEdgeVertexCandidates()...)
	} else {
		out.EE = append(out.EE, b.DetectEdgeEdgeCandidates()...)
		out.FV = append(out.FV, b.DetectFaceVertexCandidates()...)
	}
	b.logger.Debug("broad phase candidates",
		"method", b.name, "dim", dim,
		"ev", len(out.EV), "ee", len(out.EE), "fv", len(out.FV))
}

// collectPairs runs visit for every index in [0, n) across workers and
// concatenates the per-worker results in worker order.
func collectPairs(workers, n int, visit func(worker, i int, pairs [][2]int) [][2]int) [][2]int {
	buckets := make([][][2]int, parallel.Workers(workers))
	parallel.For(workers, n, func(worker, start, end int) {
		for i := start; i < end; i++ {
			buckets[worker] = visit(worker, i, buckets[worker])
		}
	})
	return slices.Concat(buckets...)
}
