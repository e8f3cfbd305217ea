package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/leaprec/internal/cli/config"
	"github.com/leapstack-labs/leaprec/internal/cli/output"
	"github.com/leapstack-labs/leaprec/internal/loader"
	"github.com/leapstack-labs/leaprec/internal/session"
	"github.com/leapstack-labs/leaprec/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    state.Store
	Registry *session.Registry
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with an open, migrated
// recordset store. Returns the context and a cleanup function that must be
// called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutStore(cmd)

	if err := cc.Cfg.EnsureStoreDir(); err != nil {
		return nil, nil, err
	}

	store, err := openStore(cc.Cfg)
	if err != nil {
		return nil, nil, err
	}
	cc.Store = store

	cleanup := func() {
		_ = store.Close()
	}

	return cc, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without opening
// the store. Useful for commands that don't touch persistence.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.Format)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Registry: session.NewRegistry(),
		Renderer: r,
	}
}

// LoadSets loads recordset documents and registers them in the session
// registry so later lookups can address them by name.
func (cc *CommandContext) LoadSets(ctx context.Context, paths ...string) ([]*loader.Set, error) {
	sets, err := loader.LoadAll(ctx, paths...)
	if err != nil {
		return nil, err
	}
	for _, s := range sets {
		cc.Registry.Register(s)
	}
	return sets, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		StorePath:   getEnvOrDefault("LEAPREC_STORE_PATH", config.DefaultStoreFile),
		HistoryPath: getEnvOrDefault("LEAPREC_HISTORY_PATH", config.DefaultHistoryFile),
		Format:      getEnvOrDefault("LEAPREC_FORMAT", config.DefaultFormat),
		LogLevel:    getEnvOrDefault("LEAPREC_LOG_LEVEL", config.DefaultLogLevel),
		NoColor:     os.Getenv("LEAPREC_NO_COLOR") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func openStore(cfg *config.Config) (state.Store, error) {
	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StorePath); err != nil {
		return nil, fmt.Errorf("failed to open recordset store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate recordset store: %w", err)
	}
	return store, nil
}
