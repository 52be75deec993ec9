// Package config loads the ledger daemon's configuration: the TCP listen
// address, the optional observer-feed address, and the log level. It is
// not a subject of the ledger's own specification (§1 lists configuration
// files as an out-of-scope external collaborator) but exists as the
// ambient wiring cmd/ledgerd needs, in the same shape as the teacher's
// internal/node config.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the daemon's startup configuration.
type Config struct {
	// ListenAddr is the TCP host:port the Acceptor binds (spec §6).
	ListenAddr string `yaml:"listen_addr"`

	// FeedAddr is the HTTP host:port the observer WebSocket feed is served
	// from. Empty disables the feed.
	FeedAddr string `yaml:"feed_addr"`

	// LogLevel is one of debug/info/warn/error/fatal.
	LogLevel string `yaml:"log_level"`

	// LogTimeFormat is a time.Format layout string for log timestamps.
	LogTimeFormat string `yaml:"log_time_format"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		ListenAddr:    "127.0.0.1:8080",
		FeedAddr:      "",
		LogLevel:      "info",
		LogTimeFormat: "15:04:05",
	}
}

// Load reads a YAML config file at path, overlaying it onto Default. A
// missing file is not an error: the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}
	return cfg, nil
}
