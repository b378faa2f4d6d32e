package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsZeroConfig(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "nonexistent.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_path: /opt/avm
mirror:
  - from: https://golang.org/dl/
    to: https://mirror.example/golang/
rustup:
  path: /usr/local/bin/rustup
`), 0o644))
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/opt/avm", cfg.DataPath)
	require.Len(t, cfg.Mirror, 1)
	assert.Equal(t, "https://golang.org/dl/", cfg.Mirror[0].From)
	assert.Equal(t, "/usr/local/bin/rustup", cfg.Rustup.Path)
}

func TestPathHonorsEnvOverride(t *testing.T) {
	t.Setenv(EnvConfigPath, "/explicit/path.yaml")
	path, err := Path()
	require.NoError(t, err)
	assert.Equal(t, "/explicit/path.yaml", path)
}

func TestDefaultedLeavesExplicitDataPathAlone(t *testing.T) {
	cfg, err := Config{DataPath: "/custom"}.Defaulted()
	require.NoError(t, err)
	assert.Equal(t, "/custom", cfg.DataPath)
}

func TestDefaultedFillsInAPlatformDataDir(t *testing.T) {
	cfg, err := Config{}.Defaulted()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.DataPath)
	assert.Contains(t, cfg.DataPath, "avm")
}

func TestToolsBaseJoinsDataPath(t *testing.T) {
	cfg := Config{DataPath: "/data"}
	assert.Equal(t, filepath.Join("/data", "tools"), cfg.ToolsBase())
}
