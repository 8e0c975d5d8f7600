// Package config provides configuration management for the lexi CLI.
package config

import "time"

// Default values for configuration options.
const (
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultOutput           = "auto"
	DefaultAutosaveInterval = 30 * time.Second
	DefaultPollInterval     = 500 * time.Millisecond
	DefaultServerAddr       = "127.0.0.1:8765"
	DefaultHistoryKeep      = 50

	// HistoryOff disables the snapshot history when used as history_path.
	HistoryOff = "off"

	// HistoryFile is the history database name inside the data directory.
	HistoryFile = "history.db"
)

// Config holds the CLI configuration.
type Config struct {
	DataDir     string `koanf:"data_dir"`
	Project     string `koanf:"project"`
	HistoryPath string `koanf:"history_path"`
	HistoryKeep int    `koanf:"history_keep"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
	Verbose   bool   `koanf:"verbose"`
	Output    string `koanf:"output"`

	AutosaveInterval time.Duration `koanf:"autosave_interval"`
	PollInterval     time.Duration `koanf:"poll_interval"`

	Server ServerConfig `koanf:"server"`
}

// ServerConfig holds configuration for the HTTP API server.
type ServerConfig struct {
	Addr     string `koanf:"addr"`
	InboxDir string `koanf:"inbox_dir"`
}

// HistoryEnabled reports whether snapshots should be recorded.
func (c *Config) HistoryEnabled() bool {
	return c.HistoryPath != "" && c.HistoryPath != HistoryOff
}

// EffectiveLogLevel returns the configured level, raised to debug when
// verbose is set.
func (c *Config) EffectiveLogLevel() string {
	if c.Verbose {
		return "debug"
	}
	return c.LogLevel
}
