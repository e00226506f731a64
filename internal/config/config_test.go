package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Missing(t *testing.T) {
	cfg := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, DefaultRetentionDays, cfg.RetentionDays)
	assert.Equal(t, []string{"."}, cfg.ScanPaths)
	assert.True(t, cfg.AutomaticRemoval)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.ScanPaths = []string{"/home/dev/src"}
	cfg.ExcludedPaths = []string{"node_modules/.cache"}
	cfg.RetentionDays = 30
	cfg.AutomaticRemoval = false
	cfg.DebugLogs = true

	require.NoError(t, SaveTo(path, cfg))

	loaded := LoadFrom(path)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFrom_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0o644))

	cfg := LoadFrom(path)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFrom_NormalizesBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retention_days: -3\nscan_paths: []\n"), 0o644))

	cfg := LoadFrom(path)
	assert.Equal(t, DefaultRetentionDays, cfg.RetentionDays)
	assert.Equal(t, []string{"."}, cfg.ScanPaths)
}

func TestSaveTo_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")
	require.NoError(t, SaveTo(path, Default()))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
