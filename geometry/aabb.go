// Package geometry holds the axis-aligned bounding boxes used by the broad
// phase and the exact intersection predicates used to detect interpenetration.
//
// Two-dimensional scenes are stored in the same mgl64.Vec3 representation with
// a zero z coordinate, so every routine in this module handles both cases.
package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NoVertex marks an unused slot of a vertex id tuple.
const NoVertex = -1

// AABB represents an axis-aligned bounding box together with the vertex ids
// of the primitive it was built from.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
	// VertexIDs of the originating primitive. Vertices use one slot, edges
	// two and faces three; unused slots hold NoVertex.
	VertexIDs [3]int
}

// NewAABB returns the smallest box containing both points.
func NewAABB(a, b mgl64.Vec3) AABB {
	return AABB{
		Min:       mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])},
		Max:       mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])},
		VertexIDs: [3]int{NoVertex, NoVertex, NoVertex},
	}
}

// ContainsPoint checks if a point is inside the AABB
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap. Touching boxes overlap.
func (a AABB) Overlaps(other AABB) bool {
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// Union returns the smallest box containing both boxes. The vertex ids of the
// receiver are kept.
func (a AABB) Union(other AABB) AABB {
	for i := range 3 {
		a.Min[i] = math.Min(a.Min[i], other.Min[i])
		a.Max[i] = math.Max(a.Max[i], other.Max[i])
	}
	return a
}

// Inflate grows the box by radius along every axis. Negative radii are ignored.
func (a AABB) Inflate(radius float64) AABB {
	if !(radius > 0) {
		return a
	}
	r := mgl64.Vec3{radius, radius, radius}
	a.Min = a.Min.Sub(r)
	a.Max = a.Max.Add(r)
	return a
}

// Center returns the midpoint of the box.
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Extent returns the side lengths of the box.
func (a AABB) Extent() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}

// MaxExtent returns the longest side of the box.
func (a AABB) MaxExtent() float64 {
	e := a.Extent()
	return math.Max(e[0], math.Max(e[1], e[2]))
}

// Bounds returns the union of all boxes. The result is the zero box when the
// slice is empty.
func Bounds(boxes []AABB) AABB {
	if len(boxes) == 0 {
		return AABB{VertexIDs: [3]int{NoVertex, NoVertex, NoVertex}}
	}
	bounds := boxes[0]
	for _, box := range boxes[1:] {
		bounds = bounds.Union(box)
	}
	bounds.VertexIDs = [3]int{NoVertex, NoVertex, NoVertex}
	return bounds
}
