// Package pipeline runs the pack → render pipeline used by the CLI and the
// HTTP server, with caching in between.
//
// Both entry points go through a [Runner] so that option defaults, cache
// keys and observability events are identical whichever way a legend is
// packed.
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, layers, pipeline.Options{
//	    MaxSections: 3,
//	    Formats:     []string{pipeline.FormatSVG},
//	})
//	svg := res.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/legendpack/pkg/cache"
	"github.com/matzehuels/legendpack/pkg/errors"
	"github.com/matzehuels/legendpack/pkg/legend"
)

// DefaultMaxSections is used when Options.MaxSections is zero.
const DefaultMaxSections = 4

// Output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatTXT  = "txt"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatTXT:  true,
}

// Options configures a pipeline run. It doubles as the JSON body of the
// server's pack endpoint, minus the layers.
type Options struct {
	MaxSections      int     `json:"maxSections,omitempty"`
	MaxSectionHeight float64 `json:"maxSectionHeight,omitempty"`
	LayerThreshold   int     `json:"layerThreshold,omitempty"`
	MaxCombinations  int     `json:"maxCombinations,omitempty"`
	MaxCandidates    int     `json:"maxCandidates,omitempty"`
	MinImprovement   float64 `json:"minImprovement,omitempty"`
	Strategy         string  `json:"strategy,omitempty"`

	Formats []string `json:"formats,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result holds the outputs of a pipeline run.
type Result struct {
	// Legend is the packing result. Its Layers are the caller's blocks,
	// annotated in place.
	Legend legend.Result

	// DocHash identifies the input document in cache keys.
	DocHash string

	// Artifacts holds rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing information.
type Stats struct {
	PackTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	PackHit   bool
	RenderHit bool
}

// ValidateFormats checks every requested format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeUnsupported,
				"unsupported format %q (must be one of: json, dot, svg, png, txt)", f)
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ValidateAndSetDefaults checks the options and fills in defaults. Calling it
// more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxSections == 0 {
		o.MaxSections = DefaultMaxSections
	}
	if err := errors.ValidateSections(o.MaxSections); err != nil {
		return err
	}
	if err := errors.ValidateHeight(o.MaxSectionHeight); err != nil {
		return err
	}
	if o.MinImprovement < 0 || o.MinImprovement >= 1 {
		return errors.New(errors.ErrCodeInvalidArgument, "min improvement must be in [0, 1)")
	}
	s, ok := legend.ParseStrategy(o.Strategy)
	if !ok {
		return errors.New(errors.ErrCodeInvalidArgument,
			"unknown strategy %q (must be one of: auto, optimal, greedy)", o.Strategy)
	}
	o.Strategy = string(s)
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	o.validated = true
	return nil
}

// LegendOptions converts the options to packer options.
func (o *Options) LegendOptions() []legend.Option {
	return []legend.Option{
		legend.WithMaxSectionHeight(o.MaxSectionHeight),
		legend.WithLayerThreshold(o.LayerThreshold),
		legend.WithMaxCombinations(o.MaxCombinations),
		legend.WithMaxCandidates(o.MaxCandidates),
		legend.WithMinImprovement(o.MinImprovement),
		legend.WithStrategy(legend.Strategy(o.Strategy)),
		legend.WithLogger(o.Logger),
	}
}

// LegendKeyOpts returns the cache key options for a packing result.
func (o *Options) LegendKeyOpts() cache.LegendKeyOpts {
	return cache.LegendKeyOpts{
		MaxSections:      o.MaxSections,
		MaxSectionHeight: o.MaxSectionHeight,
		LayerThreshold:   o.LayerThreshold,
		MaxCombinations:  o.MaxCombinations,
		MaxCandidates:    o.MaxCandidates,
		MinImprovement:   o.MinImprovement,
		Strategy:         o.Strategy,
	}
}

// ArtifactKeyOpts returns the cache key options for a rendered artifact.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format}
}
