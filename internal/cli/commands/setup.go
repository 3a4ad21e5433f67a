package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/housegen/internal/cli/config"
	"github.com/leapstack-labs/housegen/internal/cli/output"
	"github.com/leapstack-labs/housegen/internal/engine"
	"github.com/leapstack-labs/housegen/pkg/adapter"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng, err := createEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	cleanup := func() {
		_ = eng.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: r,
	}, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't need state or database access.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
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

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	rows := config.DefaultRows
	if v, err := strconv.Atoi(os.Getenv("HOUSEGEN_ROWS")); err == nil {
		rows = v
	}
	seed := int64(config.DefaultSeed)
	if v, err := strconv.ParseInt(os.Getenv("HOUSEGEN_SEED"), 10, 64); err == nil {
		seed = v
	}

	return &config.Config{
		SchemaPath:   getEnvOrDefault("HOUSEGEN_SCHEMA", config.DefaultSchemaFile),
		Rows:         rows,
		Seed:         seed,
		Workers:      1,
		Destination:  getEnvOrDefault("HOUSEGEN_OUT", config.DefaultDestination),
		Table:        getEnvOrDefault("HOUSEGEN_TABLE", config.DefaultTable),
		IDPrefix:     getEnvOrDefault("HOUSEGEN_PREFIX", config.DefaultIDPrefix),
		StatePath:    getEnvOrDefault("HOUSEGEN_STATE_PATH", config.DefaultStateFile),
		Verbose:      os.Getenv("HOUSEGEN_VERBOSE") == "true",
		OutputFormat: os.Getenv("HOUSEGEN_OUTPUT"),
		Target:       &config.TargetConfig{Type: config.DefaultTargetType},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	// Ensure state directory exists
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, err
		}
	}

	var target adapter.Config
	if cfg.Target != nil {
		target = adapter.Config{
			Type:     cfg.Target.Type,
			Path:     cfg.Target.Path,
			Host:     cfg.Target.Host,
			Port:     cfg.Target.Port,
			Username: cfg.Target.User,
			Password: cfg.Target.Password,
			Database: cfg.Target.Database,
			Schema:   cfg.Target.Schema,
			Options:  cfg.Target.Options,
		}
	} else {
		target = adapter.Config{Type: config.DefaultTargetType}
	}

	return engine.New(engine.Config{
		StatePath: cfg.StatePath,
		Target:    target,
		Logger:    logger,
	})
}
