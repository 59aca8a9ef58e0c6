package legend

import (
	"io"

	"github.com/charmbracelet/log"
)

// Default tuning values.
const (
	// DefaultLayerThreshold is the number of top-level layers above which
	// MakeLegend skips the search and chunks greedily.
	DefaultLayerThreshold = 12

	// DefaultMaxCombinations caps the placements the exhaustive search will
	// score before switching to the dynamic program.
	DefaultMaxCombinations = 200_000

	// DefaultMaxCandidates is the number of break candidates above which
	// MakeLegend chunks greedily instead of searching. The search costs
	// roughly sections² × candidates² once the dynamic program is in use.
	DefaultMaxCandidates = 150
)

// Strategy names the method used to place section breaks.
type Strategy string

const (
	// StrategyAuto searches for the best split unless there are too many
	// layers or break candidates, in which case it chunks greedily.
	StrategyAuto Strategy = "auto"
	// StrategyOptimal always searches, whatever the layer count.
	StrategyOptimal Strategy = "optimal"
	// StrategyGreedy always chunks by running height.
	StrategyGreedy Strategy = "greedy"

	// StrategySingle is reported when everything fits in one section.
	StrategySingle Strategy = "single"
	// StrategyEmpty is reported for an empty legend.
	StrategyEmpty Strategy = "empty"
)

// ParseStrategy converts a user-supplied name to a Strategy. The empty string
// maps to StrategyAuto.
func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(s) {
	case "", StrategyAuto:
		return StrategyAuto, true
	case StrategyOptimal:
		return StrategyOptimal, true
	case StrategyGreedy:
		return StrategyGreedy, true
	}
	return "", false
}

type config struct {
	maxSectionHeight float64
	layerThreshold   int
	maxCombinations  int
	maxCandidates    int
	minImprovement   float64
	strategy         Strategy
	logger           *log.Logger
}

// Option configures MakeLegend and FindOptimalSplit.
type Option func(*config)

// WithMaxSectionHeight bounds the height of a section. Zero disables the
// bound.
func WithMaxSectionHeight(h float64) Option {
	return func(c *config) { c.maxSectionHeight = h }
}

// WithLayerThreshold sets how many top-level layers the search handles before
// greedy chunking takes over. Non-positive values are ignored.
func WithLayerThreshold(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.layerThreshold = n
		}
	}
}

// WithMaxCombinations sets the exhaustive search limit. Non-positive values
// are ignored.
func WithMaxCombinations(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxCombinations = n
		}
	}
}

// WithMaxCandidates sets how many break candidates the search handles before
// greedy chunking takes over. Non-positive values are ignored.
func WithMaxCandidates(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxCandidates = n
		}
	}
}

// WithMinImprovement requires each extra section to lower the tallest section
// by at least this fraction (0.1 means 10%). Values outside [0, 1) are
// ignored.
func WithMinImprovement(f float64) Option {
	return func(c *config) {
		if f >= 0 && f < 1 {
			c.minImprovement = f
		}
	}
}

// WithStrategy forces a packing strategy. Unknown values are ignored.
func WithStrategy(s Strategy) Option {
	return func(c *config) {
		if s, ok := ParseStrategy(string(s)); ok {
			c.strategy = s
		}
	}
}

// WithLogger routes debug traces to l.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts []Option) config {
	c := config{
		layerThreshold:  DefaultLayerThreshold,
		maxCombinations: DefaultMaxCombinations,
		maxCandidates:   DefaultMaxCandidates,
		strategy:        StrategyAuto,
		logger:          log.New(io.Discard),
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}
