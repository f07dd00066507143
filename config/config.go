// Package config handles vppcfg tool configuration.
//
// Configuration is loaded with overlay semantics:
//
//  1. Start with built-in defaults (embedded via go:embed from default.toml)
//  2. Overlay with config file values (if the file exists)
//  3. CLI flags and environment variables override at runtime
//
// The TOML decoder only sets fields present in the file, leaving
// unspecified fields at their defaults, so a valid configuration is
// always available. A config file that exists but does not parse is an
// error, never a silent fallback.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed default.toml
var defaultConfigTOML string

// DefaultConfigPath is the default path to the vppcfg config file.
const DefaultConfigPath = "/etc/vppcfg/vppcfg.toml"

// Config is the top-level tool configuration.
type Config struct {
	VPP     VPPConfig     `toml:"vpp"`
	Journal JournalConfig `toml:"journal"`
	Logging LoggingConfig `toml:"logging"`
}

// VPPConfig locates the dataplane.
type VPPConfig struct {
	// APISocket is the path of the VPP binary API socket.
	APISocket string `toml:"api_socket"`
}

// JournalConfig controls the run journal.
type JournalConfig struct {
	// Path of the SQLite journal database. Empty disables journaling.
	Path string `toml:"path"`
}

// LoggingConfig controls logging behaviour.
type LoggingConfig struct {
	// Level is the log spec (e.g. "info" or "info,reconciler=debug").
	Level string `toml:"level"`
	// Format is "text" or "json".
	Format string `toml:"format"`
}

// DefaultConfig returns the embedded defaults.
func DefaultConfig() Config {
	var cfg Config
	if _, err := toml.Decode(defaultConfigTOML, &cfg); err != nil {
		// The embedded file is part of the build; failing to parse it
		// is a programming error.
		panic(fmt.Sprintf("parse embedded default.toml: %v", err))
	}
	return cfg
}

// Load reads the configuration from path, overlaying the defaults. A
// missing file yields the defaults; an unreadable or invalid file is
// an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
