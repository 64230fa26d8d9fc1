// Package commands implements the depscope subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/depscope-dev/depscope/internal/cli/config"
	"github.com/depscope-dev/depscope/internal/cli/output"
	"github.com/depscope-dev/depscope/internal/state"
	"github.com/depscope-dev/depscope/internal/workspace"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds the per-command dependencies from the
// command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// LoadWorkspace discovers and parses the configured workspace.
func (c *CommandContext) LoadWorkspace(ctx context.Context) (*workspace.Snapshot, error) {
	loader := workspace.NewLoader(c.Cfg.WorkspaceRoot)
	loader.BuildFileNames = c.Cfg.BuildFileNames
	loader.Ignore = c.Cfg.Ignore
	loader.Logger = c.Logger

	snap, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace %s: %w", c.Cfg.WorkspaceRoot, err)
	}
	return snap, nil
}

// OpenStore opens the index database, creating its directory and
// running migrations. The returned cleanup must be called.
func (c *CommandContext) OpenStore() (*state.SQLiteStore, func(), error) {
	path := c.Cfg.StatePath
	if path != ":memory:" {
		stateDir := filepath.Dir(path)
		if stateDir != "." && stateDir != "" {
			if err := os.MkdirAll(stateDir, 0o750); err != nil {
				return nil, nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(path); err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, nil, err
	}

	cleanup := func() { _ = store.Close() }
	return store, cleanup, nil
}

// getConfig returns the current configuration, falling back to
// environment variables when no LoadConfig has run.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	root := os.Getenv("DEPSCOPE_WORKSPACE")
	if root == "" {
		if cwd, err := os.Getwd(); err == nil {
			if found := workspace.FindRoot(cwd); found != "" {
				root = found
			} else {
				root = cwd
			}
		} else {
			root = "."
		}
	}

	return &config.Config{
		WorkspaceRoot: root,
		StatePath:     getEnvOrDefault("DEPSCOPE_STATE_PATH", filepath.Join(root, config.DefaultStateFile)),
		OutputFormat:  getEnvOrDefault("DEPSCOPE_OUTPUT", config.DefaultOutput),
		Verbose:       os.Getenv("DEPSCOPE_VERBOSE") == "true",
		Lint:          config.LintConfig{FailOn: config.DefaultFailOn},
		Watch:         config.WatchConfig{DebounceMS: config.DefaultWatchDebounceMS},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
