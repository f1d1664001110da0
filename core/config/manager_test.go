package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/mindmesh/core/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mindmesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
physics:
  repulsion_strength: 123456
  max_iterations: 42
cluster:
  min_size: 4
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 123456.0, cfg.Physics.RepulsionStrength, 1e-9)
	assert.Equal(t, 42, cfg.Physics.MaxIterations)
	assert.Equal(t, 4, cfg.Cluster.MinSize)

	// Untouched sections keep defaults.
	defaults := config.Default()
	assert.Equal(t, defaults.Physics.Damping, cfg.Physics.Damping)
	assert.Equal(t, defaults.Cluster.MinDensity, cfg.Cluster.MinDensity)
	assert.Equal(t, defaults.Session.HistorySize, cfg.Session.HistorySize)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "physics: [not a mapping")
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
physics:
  damping: 2.0
`)
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestManagerDefaultsWithoutPath(t *testing.T) {
	manager, err := config.NewManager("", nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), manager.Get())
}

func TestManagerLoadsFromPath(t *testing.T) {
	path := writeConfig(t, `
session:
  cluster_every: 30
`)
	manager, err := config.NewManager(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 30, manager.Get().Session.ClusterEvery)
}

func TestManagerPropagatesLoadError(t *testing.T) {
	_, err := config.NewManager(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}
