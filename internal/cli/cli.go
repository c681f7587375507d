// Package cli implements the lightlayer command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lightlayer/pkg/buildinfo"
	"github.com/matzehuels/lightlayer/pkg/config"
	"github.com/matzehuels/lightlayer/pkg/core/node"
	"github.com/matzehuels/lightlayer/pkg/engine"
	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
	"github.com/matzehuels/lightlayer/pkg/nodes/builtin"
	"github.com/matzehuels/lightlayer/pkg/nodes/livescript"
	"github.com/matzehuels/lightlayer/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "lightlayer"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.Logger.SetReportCaller(level <= log.DebugLevel)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Lightlayer maps addressable lights into virtual layers",
		Long:         `Lightlayer builds the physical layout of addressable light fixtures from layout nodes, maps virtual layers onto it and drives effects, modifiers and live scripts at a fixed frame rate.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: ./"+config.FileName+" if present)")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.nodesCommand())
	root.AddCommand(c.presetCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// =============================================================================
// Engine Factory
// =============================================================================

// loadConfig reads the --config file, or ./lightlayer.toml when it exists,
// or falls back to the defaults.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.configPath
	if path == "" {
		if _, err := os.Stat(config.FileName); err != nil {
			c.Logger.Debug("no config file, using defaults")
			return config.Default(), nil
		}
		path = config.FileName
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "path", path, "nodes", len(cfg.Nodes))
	return cfg, nil
}

// openStore opens the configured preset store. The file backend defaults to
// the user cache directory.
func (c *CLI) openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	opts := cfg.StoreOptions()
	if opts.Backend == store.BackendFile && opts.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			return nil, lerrors.Wrap(lerrors.ErrCodeStore, err, "resolve cache dir")
		}
		opts.Dir = filepath.Join(dir, "presets")
	}
	return store.Open(ctx, opts)
}

// newRegistry returns the built-in nodes plus scripts from the configured
// scripts directory.
func newRegistry(cfg *config.Config) *node.Registry {
	var scripts livescript.Loader
	if cfg.Engine.ScriptsDir != "" {
		scripts = livescript.DirLoader(cfg.Engine.ScriptsDir)
	}
	return builtin.NewRegistry(scripts)
}

// newEngine builds an engine from cfg and applies its node list. Errors of
// single nodes are logged; the engine is still usable.
func (c *CLI) newEngine(ctx context.Context, cfg *config.Config) (*engine.Engine, store.Store, error) {
	st, err := c.openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	var keyer store.Keyer = store.NewDefaultKeyer()
	if cfg.Store.Scope != "" {
		keyer = store.NewScopedKeyer(keyer, cfg.Store.Scope)
	}

	opts := engine.Options{
		Layer:         cfg.Layer(),
		FrameInterval: cfg.FrameInterval(),
		Store:         st,
		Keyer:         keyer,
		PresetTTL:     cfg.Store.TTL.Duration,
		Logger:        c.Logger,
	}
	opts.Layer.Registry = newRegistry(cfg)
	eng := engine.New(opts)

	if err := eng.Apply(ctx, cfg.Nodes); err != nil {
		c.Logger.Warn("config applied with errors", "err", err)
	}
	return eng, st, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/lightlayer/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
