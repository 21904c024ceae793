package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)
	assert.Equal(t, "org.freedesktop.Notifications", cfg.DBusName)
	assert.Equal(t, 256, cfg.ChannelCapacity)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wispd.toml")

	cfg := Default()
	cfg.ServerName = "wispd-test"
	cfg.DefaultTimeoutMs = 9000

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "wispd-test", loaded.ServerName)
	assert.Equal(t, int32(9000), loaded.DefaultTimeoutMs)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.ChannelCapacity = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.DBusName = ""
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestSourceConfig_MapsFieldsThrough(t *testing.T) {
	cfg := Default()
	cfg.Capabilities = []string{"body", "actions"}

	sc := cfg.SourceConfig()
	assert.Equal(t, cfg.Capabilities, sc.Capabilities)
	assert.Equal(t, cfg.DBusName, sc.DBusName)
	assert.Equal(t, cfg.DefaultTimeoutMs, sc.DefaultTimeoutMs)
}
