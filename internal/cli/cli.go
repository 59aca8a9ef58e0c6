package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/legendpack/pkg/cache"
	"github.com/matzehuels/legendpack/pkg/config"
	"github.com/matzehuels/legendpack/pkg/pipeline"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	out        io.Writer
}

// New creates a CLI that logs to w at level and prints results to stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command results (not logs) to w.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// loadConfig reads the config file named by --config, or the default one.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.configPath != "" {
		c.Logger.Debug("loaded config", "path", c.configPath)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, c.newKeyer(), c.Logger)
	r.LegendTTL = c.Config.Cache.TTL.Duration
	return r, nil
}

// newKeyer scopes cache keys to the configured namespace, if any.
func (c *CLI) newKeyer() cache.Keyer {
	ns := c.Config.Cache.Namespace
	if ns == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), ns+":")
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:    c.Config.Cache.RedisURL,
			Prefix: appName + ":",
		})
	}
	dir, err := c.Config.CacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// pipelineOptions converts the effective settings into runner options.
func (c *CLI) pipelineOptions(formats []string, refresh bool) pipeline.Options {
	cfg := c.Config
	return pipeline.Options{
		MaxSections:      cfg.MaxSections,
		MaxSectionHeight: cfg.MaxSectionHeight,
		LayerThreshold:   cfg.LayerThreshold,
		MaxCombinations:  cfg.MaxCombinations,
		MaxCandidates:    cfg.MaxCandidates,
		MinImprovement:   cfg.MinImprovement,
		Strategy:         cfg.Strategy,
		Formats:          formats,
		Refresh:          refresh,
		Logger:           c.Logger,
	}
}
