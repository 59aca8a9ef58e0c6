package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/legendpack/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
max_sections = 3
max_section_height = 200
strategy = "greedy"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/1"
ttl = "90m"

[server]
addr = "127.0.0.1:9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxSections != 3 || cfg.MaxSectionHeight != 200 {
		t.Errorf("sections = %d/%v, want 3/200", cfg.MaxSections, cfg.MaxSectionHeight)
	}
	if cfg.Strategy != "greedy" {
		t.Errorf("Strategy = %q, want greedy", cfg.Strategy)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	// Keys absent from the file keep their defaults.
	if cfg.LayerThreshold != Default().LayerThreshold {
		t.Errorf("LayerThreshold = %d, want default", cfg.LayerThreshold)
	}
	if len(cfg.PackOptions()) == 0 {
		t.Error("PackOptions should not be empty")
	}
}

func TestLoadMissingDefaultIsFine(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxSections != Default().MaxSections {
		t.Errorf("MaxSections = %d, want default", cfg.MaxSections)
	}
}

func TestLoadMissingExplicitFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", "max_sections = = 3", errors.ErrCodeInvalidFormat},
		{"unknown key", "max_colums = 3", errors.ErrCodeInvalidInput},
		{"zero sections", "max_sections = 0", errors.ErrCodeInvalidArgument},
		{"bad strategy", `strategy = "fastest"`, errors.ErrCodeInvalidArgument},
		{"redis without url", "[cache]\nbackend = \"redis\"", errors.ErrCodeInvalidArgument},
		{"bad improvement", "min_improvement = 1.5", errors.ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestCacheDir(t *testing.T) {
	cfg := Default()
	cfg.Cache.Dir = "/tmp/custom"
	if dir, _ := cfg.CacheDir(); dir != "/tmp/custom" {
		t.Errorf("CacheDir = %q, want /tmp/custom", dir)
	}

	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	if dir, _ := Default().CacheDir(); dir != filepath.Join(xdg, "legendpack") {
		t.Errorf("CacheDir = %q, want XDG path", dir)
	}
}
