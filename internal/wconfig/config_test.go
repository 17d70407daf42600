package wconfig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workload.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "./workload-data", cfg.StateDir)
	require.FileExists(t, path)
}

func TestLoadReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workload.toml")
	_, err := Load(path)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, defaultConfig(), cfg)
}
