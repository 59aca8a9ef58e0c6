package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/legendpack/pkg/cache"
	legendio "github.com/matzehuels/legendpack/pkg/io"
	"github.com/matzehuels/legendpack/pkg/legend"
	"github.com/matzehuels/legendpack/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can share one Runner as long as each passes its own layers.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// LegendTTL and ArtifactTTL override the default entry lifetimes when
	// non-zero.
	LegendTTL   time.Duration
	ArtifactTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute packs layers and renders every requested format.
func (r *Runner) Execute(ctx context.Context, layers []*legend.Block, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	start := time.Now()
	res, hash, hit, err := r.pack(ctx, layers, opts)
	if err != nil {
		return nil, err
	}
	result.Legend = res
	result.DocHash = hash
	result.Stats.PackTime = time.Since(start)
	result.CacheInfo.PackHit = hit

	r.Logger.Debug("packed legend",
		"sections", res.SectionsUsed,
		"strategy", res.Strategy,
		"cached", hit,
		"duration", result.Stats.PackTime)

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// PackWithCacheInfo packs layers in place and reports whether the result
// came from the cache. On a hit the cached flags and offsets are copied onto
// layers, so callers observe the same tree either way.
func (r *Runner) PackWithCacheInfo(ctx context.Context, layers []*legend.Block, opts Options) (legend.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return legend.Result{}, false, err
	}
	res, _, hit, err := r.pack(ctx, layers, opts)
	return res, hit, err
}

// Pack is PackWithCacheInfo without the cache hit info.
func (r *Runner) Pack(ctx context.Context, layers []*legend.Block, opts Options) (legend.Result, error) {
	res, _, err := r.PackWithCacheInfo(ctx, layers, opts)
	return res, err
}

func (r *Runner) pack(ctx context.Context, layers []*legend.Block, opts Options) (legend.Result, string, bool, error) {
	hooks := observability.Pack()
	hooks.OnPackStart(ctx, len(layers), opts.MaxSections)
	start := time.Now()

	if err := legend.Validate(layers); err != nil {
		hooks.OnPackComplete(ctx, "", 0, time.Since(start), err)
		return legend.Result{}, "", false, err
	}
	hash, err := DocHash(layers)
	if err != nil {
		hooks.OnPackComplete(ctx, "", 0, time.Since(start), err)
		return legend.Result{}, "", false, err
	}
	key := r.Keyer.LegendKey(hash, opts.LegendKeyOpts())

	if !opts.Refresh {
		if res, ok := r.cachedLegend(ctx, key, layers); ok {
			hooks.OnPackComplete(ctx, string(res.Strategy), res.SectionsUsed, time.Since(start), nil)
			return res, hash, true, nil
		}
	}

	res, err := legend.MakeLegend(layers, opts.MaxSections, opts.LegendOptions()...)
	hooks.OnPackComplete(ctx, string(res.Strategy), res.SectionsUsed, time.Since(start), err)
	if err != nil {
		return legend.Result{}, "", false, err
	}

	var buf bytes.Buffer
	if err := legendio.WriteJSON(res, &buf); err == nil {
		r.store(ctx, "legend", key, buf.Bytes(), r.ttl(r.LegendTTL, cache.TTLLegend))
	}
	return res, hash, false, nil
}

func (r *Runner) cachedLegend(ctx context.Context, key string, layers []*legend.Block) (legend.Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "legend")
		return legend.Result{}, false
	}
	p, err := legendio.ReadPacked(bytes.NewReader(data))
	if err != nil || !annotate(layers, p.Layers) {
		r.Logger.Debug("discarding unusable cache entry", "key", key)
		observability.Cache().OnCacheMiss(ctx, "legend")
		return legend.Result{}, false
	}
	observability.Cache().OnCacheHit(ctx, "legend")
	res := p.Result()
	res.Layers = layers
	return res, true
}

// RenderWithCacheInfo renders res in every requested format and reports
// whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res legend.Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := legendio.WriteJSON(res, &buf); err != nil {
		return nil, false, fmt.Errorf("serialize result for cache key: %w", err)
	}
	resultHash := cache.Hash(buf.Bytes())

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(resultHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			break
		}
		observability.Cache().OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := Render(ctx, res, opts.Formats)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(resultHash, opts.ArtifactKeyOpts(format))
		r.store(ctx, "artifact", key, data, r.ttl(r.ArtifactTTL, cache.TTLArtifact))
	}
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, res legend.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, res, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) ttl(override, def time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// DocHash hashes the measured content of layers: flags and offsets are
// ignored, so a packed and an unpacked copy of a document share a hash.
func DocHash(layers []*legend.Block) (string, error) {
	clean := legend.CloneAll(layers)
	for _, b := range clean {
		b.Walk(func(b *legend.Block, _ int) bool {
			b.Y, b.SplitBefore = 0, false
			return true
		})
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return "", fmt.Errorf("hash document: %w", err)
	}
	return cache.Hash(data), nil
}

// annotate copies Y and SplitBefore from src onto dst. It reports false, and
// leaves dst untouched, when the two trees differ in shape.
func annotate(dst, src []*legend.Block) bool {
	if !sameShape(dst, src) {
		return false
	}
	var copyFlags func(d, s []*legend.Block)
	copyFlags = func(d, s []*legend.Block) {
		for i := range d {
			d[i].Y, d[i].SplitBefore = s[i].Y, s[i].SplitBefore
			copyFlags(d[i].Items, s[i].Items)
		}
	}
	copyFlags(dst, src)
	return true
}

func sameShape(a, b []*legend.Block) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameShape(a[i].Items, b[i].Items) {
			return false
		}
	}
	return true
}
