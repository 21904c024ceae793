// Package config loads and hot-reloads wispd's on-disk configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/0xferrous/wispd/internal/wisp"
)

// Config is the on-disk shape of wispd's configuration. It maps directly
// onto wisp.SourceConfig plus the ambient concerns (logging) that sit
// outside the engine itself.
type Config struct {
	Capabilities     []string `toml:"capabilities"`
	ChannelCapacity  int      `toml:"channel_capacity"`
	DBusName         string   `toml:"dbus_name"`
	DBusPath         string   `toml:"dbus_path"`
	ServerName       string   `toml:"server_name"`
	ServerVendor     string   `toml:"server_vendor"`
	ServerVersion    string   `toml:"server_version"`
	SpecVersion      string   `toml:"spec_version"`
	DefaultTimeoutMs int32    `toml:"default_timeout_ms"`
	LogLevel         string   `toml:"log_level"`
}

// Default returns the configuration wispd starts with absent a config
// file, equivalent to wisp.DefaultSourceConfig plus the ambient log level.
func Default() *Config {
	sc := wisp.DefaultSourceConfig()
	return &Config{
		Capabilities:     sc.Capabilities,
		ChannelCapacity:  sc.ChannelCapacity,
		DBusName:         sc.DBusName,
		DBusPath:         sc.DBusPath,
		ServerName:       sc.ServerName,
		ServerVendor:     sc.ServerVendor,
		ServerVersion:    sc.ServerVersion,
		SpecVersion:      sc.SpecVersion,
		DefaultTimeoutMs: sc.DefaultTimeoutMs,
		LogLevel:         "info",
	}
}

// SourceConfig converts to the engine-facing configuration type.
func (c *Config) SourceConfig() wisp.SourceConfig {
	return wisp.SourceConfig{
		Capabilities:     c.Capabilities,
		ChannelCapacity:  c.ChannelCapacity,
		DBusName:         c.DBusName,
		DBusPath:         c.DBusPath,
		ServerName:       c.ServerName,
		ServerVendor:     c.ServerVendor,
		ServerVersion:    c.ServerVersion,
		SpecVersion:      c.SpecVersion,
		DefaultTimeoutMs: c.DefaultTimeoutMs,
	}
}

// Path returns the default config file path, ~/.config/wispd/wispd.toml.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "wispd", "wispd.toml"), nil
}

// Load reads the configuration from path (or the default path, if path is
// empty). A missing file is not an error: Default() is returned instead.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, fmt.Errorf("config: resolve default path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path atomically via a temp-file-then-rename, creating
// the parent directory if necessary.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return fmt.Errorf("config: resolve default path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("config: write temp file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks cfg for internally-consistent values.
func (c *Config) Validate() error {
	if c.ChannelCapacity <= 0 {
		return fmt.Errorf("channel_capacity must be positive, got %d", c.ChannelCapacity)
	}
	if c.DBusName == "" {
		return fmt.Errorf("dbus_name must not be empty")
	}
	if c.DBusPath == "" {
		return fmt.Errorf("dbus_path must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}
