package config

import (
	"fmt"
	"os"
	"path/filepath"
)

var validFormats = map[string]bool{
	"auto":     true,
	"text":     true,
	"markdown": true,
	"md":       true,
	"json":     true,
	"csv":      true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid output format %q (valid: auto, text, markdown, json, csv)", c.Format)
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// EnsureStoreDir creates the directory holding the store database so a
// first save does not fail on a missing parent.
func (c *Config) EnsureStoreDir() error {
	if c.StorePath == "" || c.StorePath == ":memory:" {
		return nil
	}
	dir := filepath.Dir(c.StorePath)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("cannot create store directory %s: %w", dir, err)
	}
	return nil
}
