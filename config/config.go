// Package config loads contact pipeline settings from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/akmonengine/contact/broadphase"
	"github.com/akmonengine/contact/ccd"
	"github.com/akmonengine/contact/potential"
)

const (
	CCDAdditive                = "additive"
	CCDConservativeAdvancement = "conservative_advancement"
)

var ErrInvalid = errors.New("config: invalid configuration")

var validate = validator.New()

// Config holds every tunable of the pipeline.
type Config struct {
	MinDistance     float64 `yaml:"min_distance" validate:"gte=0"`
	InflationRadius float64 `yaml:"inflation_radius" validate:"gte=0"`
	DHat            float64 `yaml:"dhat" validate:"gt=0"`
	Workers         int     `yaml:"workers" validate:"gte=1"`
	BroadPhase      string  `yaml:"broad_phase" validate:"oneof=brute_force hash_grid spatial_hash bvh sweep_and_prune"`
	PSDProjection   string  `yaml:"psd_projection" validate:"oneof=none clamp abs"`
	CCD             CCD     `yaml:"ccd"`
}

// CCD selects and tunes the narrow phase.
type CCD struct {
	Method                string  `yaml:"method" validate:"oneof=additive conservative_advancement"`
	Tolerance             float64 `yaml:"tolerance" validate:"gt=0"`
	MaxIterations         int     `yaml:"max_iterations" validate:"gte=1"`
	ConservativeRescaling float64 `yaml:"conservative_rescaling" validate:"gt=0,lte=1"`
}

// Default returns a valid configuration: hash grid broad phase, additive
// CCD and clamped Hessian projection on one worker.
func Default() Config {
	return Config{
		MinDistance:     0,
		InflationRadius: 0,
		DHat:            1e-3,
		Workers:         1,
		BroadPhase:      broadphase.MethodHashGrid.String(),
		PSDProjection:   potential.PSDClamp.String(),
		CCD: CCD{
			Method:                CCDAdditive,
			Tolerance:             ccd.DefaultTolerance,
			MaxIterations:         ccd.DefaultMaxIterations,
			ConservativeRescaling: ccd.DefaultConservativeRescaling,
		},
	}
}

// Validate checks every field against its allowed range. Additive CCD
// needs a rescaling strictly below 1.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.CCD.Method == CCDAdditive && c.CCD.ConservativeRescaling >= 1 {
		return fmt.Errorf("%w: additive ccd needs conservative_rescaling < 1, got %g",
			ErrInvalid, c.CCD.ConservativeRescaling)
	}
	return nil
}

// Parse decodes YAML on top of Default and validates the result. Fields
// absent from data keep their default.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: decoding yaml: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// NewBroadPhase builds the configured broad phase.
func (c Config) NewBroadPhase(logger *slog.Logger) (broadphase.BroadPhase, error) {
	method, err := broadphase.ParseMethod(c.BroadPhase)
	if err != nil {
		return nil, err
	}
	return broadphase.New(method, broadphase.WithWorkers(c.Workers), broadphase.WithLogger(logger)), nil
}

// NewNarrowPhase builds the configured CCD.
func (c Config) NewNarrowPhase(logger *slog.Logger) (ccd.NarrowPhase, error) {
	switch c.CCD.Method {
	case CCDAdditive:
		return &ccd.AdditiveCCD{
			MaxIterations:         c.CCD.MaxIterations,
			ConservativeRescaling: c.CCD.ConservativeRescaling,
			Logger:                logger,
		}, nil
	case CCDConservativeAdvancement:
		return &ccd.ConservativeAdvancement{
			Tolerance:             c.CCD.Tolerance,
			MaxIterations:         c.CCD.MaxIterations,
			ConservativeRescaling: c.CCD.ConservativeRescaling,
			Logger:                logger,
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown ccd method %q", ErrInvalid, c.CCD.Method)
}

// Projection returns the configured PSD projection.
func (c Config) Projection() (potential.PSDProjection, error) {
	return potential.ParsePSDProjection(c.PSDProjection)
}
