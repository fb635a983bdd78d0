// Package cli implements the foldgraph command-line interface.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/foldgraph/internal/config"
	"github.com/matzehuels/foldgraph/pkg/buildinfo"
	"github.com/matzehuels/foldgraph/pkg/cache"
	"github.com/matzehuels/foldgraph/pkg/digraph"
	"github.com/matzehuels/foldgraph/pkg/errors"
	"github.com/matzehuels/foldgraph/pkg/graph"
	"github.com/matzehuels/foldgraph/pkg/pipeline"
	"github.com/matzehuels/foldgraph/pkg/viewstate"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "foldgraph"

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

	// Out receives command results; status lines go to stdout through the
	// print helpers.
	Out io.Writer

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "foldgraph draws large control-flow graphs as nested, foldable boxes",
		Long: `foldgraph lays out directed graphs with strongly connected components
collapsed into expandable boxes. Vertices can be hidden and unhidden; hidden
vertices are spliced out so their neighbours stay connected.

The hidden set and expanded boxes of a graph are kept in a named view, so
repeated runs redraw the same picture.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default: ~/.config/foldgraph/config.toml)")
	pf.String("view", viewstate.DefaultName, "name of the saved view")
	pf.String("cache-backend", cache.BackendFile, "cache backend: file, redis, mongo, none")
	pf.String("cache-dir", "", "cache directory for the file backend")
	pf.String("cache-prefix", "", "prefix for cache keys on a shared backend")
	pf.String("log-level", "info", "log level: debug, info, warn, error")

	_ = root.RegisterFlagCompletionFunc("view", c.completeViewNames)

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.sccCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig merges the config file, environment and the flags of cmd.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		c.SetLogLevel(lvl)
	}
	c.cfg = cfg
	return nil
}

// config returns the loaded configuration, or defaults when a command runs
// outside the root command (as in tests).
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		cfg, err := config.Load(c.configPath, nil)
		if err != nil {
			c.Logger.Warn("using built-in defaults", "err", err)
			cfg = &config.Config{}
		}
		c.cfg = cfg
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, c.config().Keyer(), c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts := c.config().CacheOptions()
	if opts.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		opts.Dir = dir
	}
	cc, err := cache.Open(ctx, opts)
	if err != nil {
		if stderrors.Is(err, cache.ErrUnavailable) {
			c.Logger.Warn("cache unavailable, continuing without it", "backend", opts.Backend, "err", err)
			return cache.NewNullCache(), nil
		}
		return nil, err
	}
	return cc, nil
}

// viewStore opens the store holding named views.
func (c *CLI) viewStore() (*viewstate.FileStore, error) {
	return viewstate.NewFileStore(c.config().View.Dir)
}

// loadView returns the configured view, creating it if it does not exist.
func (c *CLI) loadView(ctx context.Context) (*viewstate.FileStore, *viewstate.State, error) {
	store, err := c.viewStore()
	if err != nil {
		return nil, nil, err
	}
	name := c.config().View.Name
	if name == "" {
		name = viewstate.DefaultName
	}
	st, err := viewstate.Load(ctx, store, name)
	if err != nil {
		return nil, nil, err
	}
	return store, st, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/foldgraph/).
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

// outputPath derives "<input without extension>.<suffix>" when output is
// empty.
func outputPath(input, output, suffix string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + suffix
}

// =============================================================================
// Argument Helpers
// =============================================================================

// parseIDs converts vertex id arguments.
func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidVertex, "vertex id %q is not a number", a)
		}
		if err := errors.ValidateVertexID(id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// readGraph loads a graph file and reports its warnings.
func (c *CLI) readGraph(path string) (*digraph.Hierarchical, error) {
	h, err := graph.ReadGraphFile(path, digraph.WithLogger(c.Logger))
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", path, err)
	}
	for _, w := range h.Graph().Warnings() {
		c.Logger.Warn("graph input", "warning", w)
	}
	return h, nil
}

// applyView replays st onto h, warning about ids the graph lacks.
func (c *CLI) applyView(h *digraph.Hierarchical, st *viewstate.State) {
	if stale := st.Apply(h); len(stale) > 0 {
		printWarning("view %q hides vertices not in this graph: %v", st.Name, stale)
	}
}
