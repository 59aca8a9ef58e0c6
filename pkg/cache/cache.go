// Package cache stores packing results and rendered artifacts.
//
// Packing is pure computation, so a result depends only on the legend
// document and the packing options. The runner hashes both into a key and
// keeps the encoded result under it. Three backends are provided:
//
//   - [FileCache]: one JSON file per entry under a local directory (CLI)
//   - [RedisCache]: shared entries with native expiry (server deployments)
//   - [NullCache]: stores nothing (--no-cache, tests)
//
// Keys are produced by a [Keyer]; [ScopedKeyer] prefixes them for
// multi-tenant isolation.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. hit is false on a miss; a miss is not
	// an error.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// LegendKey keys a packing result by document hash and options.
	LegendKey(docHash string, opts LegendKeyOpts) string

	// ArtifactKey keys a rendered output by result hash and format.
	ArtifactKey(resultHash string, opts ArtifactKeyOpts) string
}

// LegendKeyOpts are the packing options that change a result.
type LegendKeyOpts struct {
	MaxSections      int     `json:"max_sections"`
	MaxSectionHeight float64 `json:"max_section_height"`
	LayerThreshold   int     `json:"layer_threshold"`
	MaxCombinations  int     `json:"max_combinations"`
	MaxCandidates    int     `json:"max_candidates"`
	MinImprovement   float64 `json:"min_improvement"`
	Strategy         string  `json:"strategy"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LegendKey returns "legend:<sha256>".
func (DefaultKeyer) LegendKey(docHash string, opts LegendKeyOpts) string {
	return hashKey("legend", docHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", resultHash, opts)
}

// Default entry lifetimes.
const (
	TTLLegend   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
