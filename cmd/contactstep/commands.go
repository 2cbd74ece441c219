package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/akmonengine/contact"
	"github.com/akmonengine/contact/potential"
)

var errNoEndPositions = errors.New("scene has no vertices_t1")

type options struct {
	verbose bool
	workers int
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "contactstep",
		Short:        "Collision queries on triangle and segment meshes",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().IntVarP(&opts.workers, "workers", "w", 0, "override the configured worker count")

	root.AddCommand(
		&cobra.Command{
			Use:   "check [scene.yaml]",
			Short: "Report whether the step from vertices_t0 to vertices_t1 is collision free",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, p, err := opts.load(cmd, args[0])
				if err != nil {
					return err
				}
				if s.V1 == nil {
					return errNoEndPositions
				}
				free, err := p.IsStepCollisionFree(s.Mesh, s.V0, s.V1, s.Config.MinDistance)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "collision free: %t\n", free)
				return nil
			},
		},
		&cobra.Command{
			Use:   "stepsize [scene.yaml]",
			Short: "Print the largest collision-free fraction of the step",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, p, err := opts.load(cmd, args[0])
				if err != nil {
					return err
				}
				if s.V1 == nil {
					return errNoEndPositions
				}
				step, err := p.CollisionFreeStepSize(s.Mesh, s.V0, s.V1, s.Config.MinDistance)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "step size: %.17g\n", step)
				return nil
			},
		},
		&cobra.Command{
			Use:   "potential [scene.yaml]",
			Short: "Evaluate the barrier potential at vertices_t0",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, p, err := opts.load(cmd, args[0])
				if err != nil {
					return err
				}
				psd, err := s.Config.Projection()
				if err != nil {
					return err
				}
				cs, err := p.BuildCollisions(s.Mesh, s.V0, s.Config.DHat, s.Config.MinDistance)
				if err != nil {
					return err
				}

				a := p.Assembler()
				b := potential.Barrier{DHat: s.Config.DHat}
				grad := a.Gradient(b, cs, s.Mesh, s.V0)
				var norm float64
				if grad.Len() > 0 {
					norm = mat.Norm(grad, 2)
				}
				hess := a.Hessian(b, cs, s.Mesh, s.V0, psd)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "collisions: %d\n", cs.Size())
				fmt.Fprintf(out, "minimum distance: %.17g\n", cs.MinimumDistance(s.Mesh, s.V0, p.Workers))
				fmt.Fprintf(out, "value: %.17g\n", a.Value(b, cs, s.Mesh, s.V0))
				fmt.Fprintf(out, "gradient norm: %.17g\n", norm)
				fmt.Fprintf(out, "hessian nonzeros: %d\n", hess.NNZ())
				return nil
			},
		},
		&cobra.Command{
			Use:   "intersect [scene.yaml]",
			Short: "Report whether the mesh self-intersects at vertices_t0",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, p, err := opts.load(cmd, args[0])
				if err != nil {
					return err
				}
				hit, err := p.HasIntersections(s.Mesh, s.V0)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "intersecting: %t\n", hit)
				return nil
			},
		},
	)
	return root
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (o *options) load(cmd *cobra.Command, path string) (*scene, *contact.Pipeline, error) {
	s, err := loadScene(path)
	if err != nil {
		return nil, nil, err
	}
	if o.workers > 0 {
		s.Config.Workers = o.workers
	}
	p, err := contact.FromConfig(s.Config, o.logger(cmd))
	if err != nil {
		return nil, nil, err
	}
	return s, p, nil
}
