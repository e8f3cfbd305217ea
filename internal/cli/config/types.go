// Package config provides configuration management for the leaprec CLI.
//
// Configuration merges four layers with increasing precedence: built-in
// defaults, an optional YAML config file, LEAPREC_* environment variables,
// and command-line flags that were explicitly set.
package config

import "log/slog"

// Config holds all CLI configuration options.
type Config struct {
	StorePath   string `koanf:"store_path"`
	HistoryPath string `koanf:"history_path"`
	Format      string `koanf:"format"`
	LogLevel    string `koanf:"log_level"`
	NoColor     bool   `koanf:"no_color"`

	// ProjectRoot is the directory the relative paths above were resolved
	// against. It is derived at load time, never read from a file.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values
const (
	DefaultStoreFile   = ".leaprec/state.db"
	DefaultHistoryFile = ".leaprec/history"
	DefaultLogLevel    = "warn"
	DefaultFormat      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// SlogLevel maps the configured log level onto slog's scale. Unknown
// values fall back to the default level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
