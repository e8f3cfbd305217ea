package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leaprec/internal/testutil"
)

// writeConfigFile writes a leaprec.yaml into dir and returns its path.
func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "leaprec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()

	// Point HOME at an empty directory so a user-level config file cannot
	// leak into the test.
	t.Setenv("HOME", t.TempDir())

	tmpDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	defer func() { _ = os.Chdir(oldWd) }()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.NoColor)
	assert.True(t, filepath.IsAbs(cfg.StorePath))
	assert.True(t, strings.HasSuffix(cfg.StorePath, filepath.Join(".leaprec", "state.db")))
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_FileValues(t *testing.T) {
	ResetConfig()

	tmpDir := t.TempDir()
	cfgPath := writeConfigFile(t, tmpDir, `format: json
log_level: debug
store_path: data/sets.db
`)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Relative store paths resolve against the config file's directory.
	assert.Equal(t, filepath.Join(tmpDir, "data", "sets.db"), cfg.StorePath)
	assert.Equal(t, tmpDir, cfg.ProjectRoot)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
	require.NotNil(t, GetCurrentConfig())
	assert.Equal(t, cfg, GetCurrentConfig())
}

// TestLoadConfig_FlagPrecedence tests that flags override env vars and config file.
func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()

	tmpDir := t.TempDir()
	cfgPath := writeConfigFile(t, tmpDir, "format: json\n")

	require.NoError(t, os.Setenv("LEAPREC_FORMAT", "csv"))
	defer func() { _ = os.Unsetenv("LEAPREC_FORMAT") }()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "", "output format")
	require.NoError(t, flags.Set("format", "text"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Format, "flag value should override config file and env var")
}

// TestLoadConfig_EnvPrecedenceOverFile tests that env vars override config file.
func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()

	tmpDir := t.TempDir()
	cfgPath := writeConfigFile(t, tmpDir, "format: json\n")

	require.NoError(t, os.Setenv("LEAPREC_FORMAT", "csv"))
	defer func() { _ = os.Unsetenv("LEAPREC_FORMAT") }()

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Format, "env var should override config file")
}

// TestLoadConfig_FlagNotSetUsesEnv tests that unset flags fall back to env vars.
func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()

	tmpDir := t.TempDir()
	cfgPath := writeConfigFile(t, tmpDir, "format: json\n")

	require.NoError(t, os.Setenv("LEAPREC_FORMAT", "csv"))
	defer func() { _ = os.Unsetenv("LEAPREC_FORMAT") }()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "", "output format")
	// Note: not calling flags.Set(), so Changed is false

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Format, "env var should be used when flag is not set")
}

func TestLoadConfig_StoreFlag(t *testing.T) {
	t.Run("relative path pins to CWD", func(t *testing.T) {
		ResetConfig()

		tmpDir := t.TempDir()
		cfgPath := writeConfigFile(t, tmpDir, "store_path: data/sets.db\n")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("store", "", "store path")
		require.NoError(t, flags.Set("store", "local.db"))

		cfg, err := LoadConfig(cfgPath, flags)
		require.NoError(t, err)

		cwd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cwd, "local.db"), cfg.StorePath)
	})

	t.Run("memory store passes through", func(t *testing.T) {
		ResetConfig()

		tmpDir := t.TempDir()
		cfgPath := writeConfigFile(t, tmpDir, "")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("store", "", "store path")
		require.NoError(t, flags.Set("store", ":memory:"))

		cfg, err := LoadConfig(cfgPath, flags)
		require.NoError(t, err)

		assert.Equal(t, ":memory:", cfg.StorePath)
	})
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Run("invalid format", func(t *testing.T) {
		ResetConfig()

		tmpDir := t.TempDir()
		cfgPath := writeConfigFile(t, tmpDir, "format: xml\n")

		_, err := LoadConfig(cfgPath, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid output format")
	})

	t.Run("invalid log level", func(t *testing.T) {
		ResetConfig()

		tmpDir := t.TempDir()
		cfgPath := writeConfigFile(t, tmpDir, "log_level: loud\n")

		_, err := LoadConfig(cfgPath, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		ResetConfig()

		tmpDir := t.TempDir()
		cfgPath := writeConfigFile(t, tmpDir, "format: [unclosed\n")

		_, err := LoadConfig(cfgPath, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})
}

// TestConfig_Validate tests the Config.Validate method.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantErr   bool
		errSubstr string
	}{
		{
			name:    "valid config",
			cfg:     Config{Format: "auto", LogLevel: "warn"},
			wantErr: false,
		},
		{
			name:    "md alias accepted",
			cfg:     Config{Format: "md", LogLevel: "debug"},
			wantErr: false,
		},
		{
			name:      "unknown format",
			cfg:       Config{Format: "xml", LogLevel: "warn"},
			wantErr:   true,
			errSubstr: "invalid output format",
		},
		{
			name:      "unknown log level",
			cfg:       Config{Format: "auto", LogLevel: "loud"},
			wantErr:   true,
			errSubstr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelWarn},
		{"bogus", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.level}
			assert.Equal(t, tt.expected, cfg.SlogLevel())
		})
	}
}

// TestResolvePathRelativeTo tests the resolvePathRelativeTo function.
func TestResolvePathRelativeTo(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		baseDir  string
		expected string
	}{
		{"relative path joins base", "data/sets.db", "/project", filepath.Join("/project", "data", "sets.db")},
		{"absolute path unchanged", "/var/sets.db", "/project", "/var/sets.db"},
		{"empty path unchanged", "", "/project", ""},
		{"memory path unchanged", ":memory:", "/project", ":memory:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolvePathRelativeTo(tt.path, tt.baseDir))
		})
	}
}

func TestFindProjectRootUpward(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))
	writeConfigFile(t, filepath.Join(tmpDir, "a"), "format: json\n")

	root := findProjectRootUpward(nested)
	assert.Equal(t, filepath.Join(tmpDir, "a"), root)
}

func TestGetLogger(t *testing.T) {
	t.Run("missing logger falls back to discard", func(t *testing.T) {
		logger := GetLogger(context.Background())
		require.NotNil(t, logger)
	})

	t.Run("stored logger is returned", func(t *testing.T) {
		logger := testutil.NewTestLogger(t)
		ctx := context.WithValue(context.Background(), LoggerKey(), logger)
		assert.Same(t, logger, GetLogger(ctx))
	})
}

func TestEnsureStoreDir(t *testing.T) {
	t.Run("creates missing parent", func(t *testing.T) {
		tmpDir := t.TempDir()
		cfg := &Config{StorePath: filepath.Join(tmpDir, "deep", "nested", "state.db")}
		require.NoError(t, cfg.EnsureStoreDir())

		info, err := os.Stat(filepath.Join(tmpDir, "deep", "nested"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("memory store needs no directory", func(t *testing.T) {
		cfg := &Config{StorePath: ":memory:"}
		assert.NoError(t, cfg.EnsureStoreDir())
	})
}
