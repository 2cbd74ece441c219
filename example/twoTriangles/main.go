package main

import (
	"fmt"
	"log/slog"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/akmonengine/contact"
	"github.com/akmonengine/contact/broadphase"
	"github.com/akmonengine/contact/ccd"
	"github.com/akmonengine/contact/mesh"
	"github.com/akmonengine/contact/potential"
)

// positions places a unit triangle on the ground and a smaller one at the
// given height above it.
func positions(height float64) *mat.Dense {
	return mat.NewDense(6, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0.2, 0.2, height,
		0.5, 0.2, height,
		0.2, 0.5, height,
	})
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	faces := [][3]int{{0, 1, 2}, {3, 4, 5}}

	m, err := mesh.FromTopology(positions(1), mesh.EdgesFromFaces(faces), faces)
	if err != nil {
		logger.Error("building mesh", "error", err)
		os.Exit(1)
	}

	p := &contact.Pipeline{
		BroadPhase:  broadphase.NewBVH(broadphase.WithLogger(logger)),
		NarrowPhase: ccd.NewAdditiveCCD(),
		Workers:     2,
		Logger:      logger,
	}

	const (
		dhat        = 0.05
		minDistance = 0.0
		velocity    = -0.4
	)
	barrier := potential.Barrier{DHat: dhat}
	height := 1.0

	// Drop the upper triangle and clamp every step to the collision free
	// fraction, as a line search would.
	for step := range 10 {
		v0, v1 := positions(height), positions(height+velocity)
		alpha, err := p.CollisionFreeStepSize(m, v0, v1, minDistance)
		if err != nil {
			logger.Error("computing step size", "error", err)
			os.Exit(1)
		}
		height += alpha * velocity

		v := positions(height)
		cs, err := p.BuildCollisions(m, v, dhat, minDistance)
		if err != nil {
			logger.Error("building collisions", "error", err)
			os.Exit(1)
		}
		energy := p.Assembler().Value(barrier, cs, m, v)

		fmt.Printf("step %d: alpha=%.6f height=%.6f collisions=%d barrier=%.6g\n",
			step, alpha, height, cs.Size(), energy)
	}

	intersecting, err := p.HasIntersections(m, positions(height))
	if err != nil {
		logger.Error("checking intersections", "error", err)
		os.Exit(1)
	}
	fmt.Printf("intersecting: %t\n", intersecting)
}
