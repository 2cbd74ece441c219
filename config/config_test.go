package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akmonengine/contact/ccd"
	"github.com/akmonengine/contact/potential"
)

func TestDefaultValidates(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	bp, err := c.NewBroadPhase(nil)
	require.NoError(t, err)
	assert.Equal(t, "hash_grid", bp.Name())

	np, err := c.NewNarrowPhase(nil)
	require.NoError(t, err)
	assert.IsType(t, &ccd.AdditiveCCD{}, np)

	psd, err := c.Projection()
	require.NoError(t, err)
	assert.Equal(t, potential.PSDClamp, psd)
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
min_distance: 0.01
dhat: 0.1
workers: 4
broad_phase: bvh
ccd:
  method: conservative_advancement
  tolerance: 1e-8
`))
	require.NoError(t, err)
	assert.Equal(t, 0.01, c.MinDistance)
	assert.Equal(t, 0.1, c.DHat)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, "bvh", c.BroadPhase)
	assert.Equal(t, "clamp", c.PSDProjection)
	assert.Equal(t, 1e-8, c.CCD.Tolerance)
	assert.Equal(t, ccd.DefaultMaxIterations, c.CCD.MaxIterations)

	np, err := c.NewNarrowPhase(nil)
	require.NoError(t, err)
	ca, ok := np.(*ccd.ConservativeAdvancement)
	require.True(t, ok)
	assert.Equal(t, 1e-8, ca.Tolerance)

	bp, err := c.NewBroadPhase(nil)
	require.NoError(t, err)
	assert.Equal(t, "bvh", bp.Name())
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative min distance", "min_distance: -1"},
		{"zero dhat", "dhat: 0"},
		{"zero workers", "workers: 0"},
		{"unknown broad phase", "broad_phase: octree"},
		{"unknown projection", "psd_projection: flip"},
		{"unknown ccd", "ccd: {method: exact}"},
		{"zero tolerance", "ccd: {tolerance: 0}"},
		{"zero iterations", "ccd: {max_iterations: 0}"},
		{"rescaling above one", "ccd: {conservative_rescaling: 1.5}"},
		{"additive rescaling of one", "ccd: {method: additive, conservative_rescaling: 1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Parse([]byte("dhat: [1, 2"))
	assert.Error(t, err)
}

func TestRescalingOfOne(t *testing.T) {
	c, err := Parse([]byte("ccd: {method: conservative_advancement, conservative_rescaling: 1}"))
	require.NoError(t, err)
	np, err := c.NewNarrowPhase(nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, np.(*ccd.ConservativeAdvancement).ConservativeRescaling)

	c.CCD.Method = CCDAdditive
	assert.ErrorIs(t, c.Validate(), ErrInvalid)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contact.yaml")
	require.NoError(t, os.WriteFile(path, []byte("broad_phase: sweep_and_prune\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sweep_and_prune", c.BroadPhase)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
