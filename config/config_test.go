package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frobware/go-vppcfg/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, "/run/vpp/api.sock", cfg.VPP.APISocket)
	assert.Equal(t, "/var/lib/vppcfg/journal.db", cfg.Journal.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestLoad_OverlaysPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vppcfg.toml")
	require.NoError(t, os.WriteFile(path, []byte("[vpp]\napi_socket = \"/tmp/test-api.sock\"\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test-api.sock", cfg.VPP.APISocket)
	// Everything the file does not mention keeps its default.
	assert.Equal(t, "/var/lib/vppcfg/journal.db", cfg.Journal.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_InvalidFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vppcfg.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}
