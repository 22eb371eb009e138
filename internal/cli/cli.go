// Package cli implements the timeline command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rytunyn/timeline/pkg/buildinfo"
	"github.com/rytunyn/timeline/pkg/cache"
	"github.com/rytunyn/timeline/pkg/config"
	"github.com/rytunyn/timeline/pkg/observability"
	"github.com/rytunyn/timeline/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "timeline"
)

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
}

// New creates a new CLI instance writing log output to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the pipeline and
// cache events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		h := newLogHooks(c.Logger)
		observability.SetPipelineHooks(h)
		observability.SetCacheHooks(h)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Timeline renders a staged outline into an SVG timeline",
		Long: `Timeline reads a plain-text outline of stages and items and renders it
as a vertical SVG timeline inside the <svg id="main-svg"> element of an
existing HTML page. Re-running it replaces the previous output in place.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		// No home directory: keep fragments for the lifetime of the process.
		return cache.NewMemoryCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/timeline/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// sourceFlags are the flags shared by every command that reads an outline.
type sourceFlags struct {
	config string
	input  string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", config.DefaultInput, "outline file")
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "config file (default: timeline.toml or timeline.yaml in the working directory)")
}

// configPath returns the explicit --config path, or the config file found in
// the working directory, or "" when there is none.
func (f sourceFlags) configPath() string {
	if f.config != "" {
		return f.config
	}
	path, _ := config.Find(".")
	return path
}

// loadOptions builds pipeline options from defaults, the config file and
// explicitly set flags, in that order of precedence.
func (c *CLI) loadOptions(cmd *cobra.Command, f sourceFlags) (pipeline.Options, error) {
	cfg := config.Defaults()

	if path := f.configPath(); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return pipeline.Options{}, err
		}
		cfg = loaded
		c.Logger.Debug("loaded config", "path", path)
	}

	opts := pipeline.OptionsFromConfig(cfg)
	if cmd.Flags().Changed("input") {
		opts.Input = f.input
	}
	opts.Logger = c.Logger
	return opts, nil
}
