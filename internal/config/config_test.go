package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("A64BROWSE_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 6464, cfg.Server.Port)
	require.Equal(t, int64(0xDF1C), cfg.Driver.RegisterBase)
	require.NotEmpty(t, cfg.Server.Host)
	require.NotEmpty(t, cfg.Log.Path)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("A64BROWSE_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("A64BROWSE_SERVER_HOST", "10.0.0.64")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "10.0.0.64", cfg.Server.Host)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("A64BROWSE_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Server.Host = "a64.lan"
	require.NoError(t, Save(cfg))

	_, err = os.Stat(path)
	require.NoError(t, err)

	again, err := Load()
	require.NoError(t, err)
	require.Equal(t, "a64.lan", again.Server.Host)
}
