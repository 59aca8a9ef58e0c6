// Package config loads legendpack settings from TOML files.
//
// Settings are layered: built-in defaults, then the config file, then
// command-line flags (applied by the CLI). A missing default config file is
// not an error; a missing explicitly requested one is.
//
// Example file:
//
//	max_sections = 4
//	max_section_height = 200
//	layer_threshold = 12
//	max_candidates = 150
//	strategy = "auto"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	namespace = "staging"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/legendpack/pkg/errors"
	"github.com/matzehuels/legendpack/pkg/legend"
)

const appName = "legendpack"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config holds every setting that can come from a file.
type Config struct {
	MaxSections      int     `toml:"max_sections"`
	MaxSectionHeight float64 `toml:"max_section_height"`
	LayerThreshold   int     `toml:"layer_threshold"`
	MaxCombinations  int     `toml:"max_combinations"`
	MaxCandidates    int     `toml:"max_candidates"`
	MinImprovement   float64 `toml:"min_improvement"`
	Strategy         string  `toml:"strategy"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`

	// Namespace scopes cache keys so that several deployments can share
	// one Redis database.
	Namespace string `toml:"namespace"`
}

// ServerConfig configures `legendpack serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration that decodes from TOML strings like "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxSections:     4,
		LayerThreshold:  legend.DefaultLayerThreshold,
		MaxCombinations: legend.DefaultMaxCombinations,
		MaxCandidates:   legend.DefaultMaxCandidates,
		Strategy:        string(legend.StrategyAuto),
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     Duration{24 * time.Hour},
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads path on top of the defaults. An empty path falls back to
// DefaultPath, which may be absent.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := errors.ValidateSections(c.MaxSections); err != nil {
		return err
	}
	if err := errors.ValidateHeight(c.MaxSectionHeight); err != nil {
		return err
	}
	if _, ok := legend.ParseStrategy(c.Strategy); !ok {
		return errors.New(errors.ErrCodeInvalidArgument, "unknown strategy %q", c.Strategy)
	}
	if c.MinImprovement < 0 || c.MinImprovement >= 1 {
		return errors.New(errors.ErrCodeInvalidArgument, "min_improvement must be in [0, 1), got %g", c.MinImprovement)
	}
	switch c.Cache.Backend {
	case "", CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidArgument, "cache backend redis needs redis_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidArgument, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// PackOptions converts the packing settings into legend options.
func (c Config) PackOptions() []legend.Option {
	strategy, _ := legend.ParseStrategy(c.Strategy)
	return []legend.Option{
		legend.WithMaxSectionHeight(c.MaxSectionHeight),
		legend.WithLayerThreshold(c.LayerThreshold),
		legend.WithMaxCombinations(c.MaxCombinations),
		legend.WithMaxCandidates(c.MaxCandidates),
		legend.WithMinImprovement(c.MinImprovement),
		legend.WithStrategy(strategy),
	}
}

// DefaultPath returns the XDG config location
// (~/.config/legendpack/config.toml).
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the cache directory: the configured one, or the XDG
// default (~/.cache/legendpack/).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
