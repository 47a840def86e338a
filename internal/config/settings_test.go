package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), settings)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	payload := `{
		"world": {"width": 128, "height": 96},
		"simulation": {"seed": 42, "numPlates": 7, "seaLevel": 0.5}
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 128, settings.World.Width)
	assert.Equal(t, 96, settings.World.Height)
	assert.Equal(t, uint32(42), settings.Simulation.Seed)
	assert.Equal(t, 7, settings.Simulation.NumPlates)
	assert.Equal(t, 0.5, settings.Simulation.SeaLevel)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, Default().Server.Port, settings.Server.Port)
	assert.Equal(t, Default().Simulation.ErosionPeriod, settings.Simulation.ErosionPeriod)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestParamsMapping(t *testing.T) {
	settings := Default()
	settings.Simulation.Seed = 99
	settings.Simulation.NumPlates = 12
	settings.Simulation.RegenerateOceanicCrust = false

	p := settings.Params()
	assert.Equal(t, uint32(99), p.Seed)
	assert.Equal(t, 12, p.NumPlates)
	assert.False(t, p.RegenerateOceanicCrust)
	assert.Equal(t, settings.Simulation.SeaLevel, p.SeaLevel)
	assert.NoError(t, p.Validate())
}
