package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestSegmentsIntersect2D(t *testing.T) {
	tests := []struct {
		name           string
		a0, a1, b0, b1 mgl64.Vec3
		expected       bool
	}{
		{"crossing", mgl64.Vec3{-1, 0}, mgl64.Vec3{1, 0}, mgl64.Vec3{0, -1}, mgl64.Vec3{0, 1}, true},
		{"parallel apart", mgl64.Vec3{0, 0}, mgl64.Vec3{1, 0}, mgl64.Vec3{0, 1}, mgl64.Vec3{1, 1}, false},
		{"touching endpoint", mgl64.Vec3{0, 0}, mgl64.Vec3{1, 0}, mgl64.Vec3{1, 0}, mgl64.Vec3{2, 5}, true},
		{"collinear overlap", mgl64.Vec3{0, 0}, mgl64.Vec3{2, 0}, mgl64.Vec3{1, 0}, mgl64.Vec3{3, 0}, true},
		{"collinear disjoint", mgl64.Vec3{0, 0}, mgl64.Vec3{1, 0}, mgl64.Vec3{2, 0}, mgl64.Vec3{3, 0}, false},
		{"near miss", mgl64.Vec3{-1, 0}, mgl64.Vec3{1, 0}, mgl64.Vec3{0, 0.1}, mgl64.Vec3{0, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SegmentsIntersect2D(tt.a0, tt.a1, tt.b0, tt.b1))
			assert.Equal(t, tt.expected, SegmentsIntersect2D(tt.b0, tt.b1, tt.a0, tt.a1), "symmetry")
		})
	}
}

func TestSegmentIntersectsTriangle(t *testing.T) {
	t0 := mgl64.Vec3{0, 0, 0}
	t1 := mgl64.Vec3{1, 0, 0}
	t2 := mgl64.Vec3{0, 1, 0}

	tests := []struct {
		name     string
		e0, e1   mgl64.Vec3
		expected bool
	}{
		{"piercing interior", mgl64.Vec3{0.2, 0.2, -1}, mgl64.Vec3{0.2, 0.2, 1}, true},
		{"above plane", mgl64.Vec3{0.2, 0.2, 0.5}, mgl64.Vec3{0.2, 0.2, 1}, false},
		{"crossing plane outside", mgl64.Vec3{2, 2, -1}, mgl64.Vec3{2, 2, 1}, false},
		{"coplanar", mgl64.Vec3{-1, 0.2, 0}, mgl64.Vec3{2, 0.2, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SegmentIntersectsTriangle(tt.e0, tt.e1, t0, t1, t2))
			assert.Equal(t, tt.expected, SegmentIntersectsTriangle(tt.e1, tt.e0, t0, t1, t2), "reversed segment")
		})
	}
}
