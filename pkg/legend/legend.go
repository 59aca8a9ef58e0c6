package legend

import (
	"math"

	"github.com/matzehuels/legendpack/pkg/errors"
)

// Result summarises a packing run. Layers is the same slice that was passed
// in, now annotated.
type Result struct {
	Layers       []*Block
	SectionsUsed int
	Strategy     Strategy
	Sections     []Section
	MaxHeight    float64
	TotalHeight  float64
}

// MakeLegend decides how many sections (at most maxSections) the legend
// needs and marks the breaks on layers in place.
//
// The decision, in order:
//   - an empty legend uses zero sections and is not an error;
//   - one section when maxSections is 1 or everything fits the height bound;
//   - greedy chunking when there are more top-level layers than the layer
//     threshold or more break candidates than the candidate limit (or
//     StrategyGreedy is forced);
//   - otherwise the split search runs for every section count up to
//     maxSections. With a height bound, the fewest sections that fit win.
//     Without one, or when nothing fits, the fewest sections that reach the
//     best achievable tallest section win.
//
// It returns an INVALID_ARGUMENT error when maxSections <= 0 or the height
// bound is negative, and an INVALID_INPUT error for malformed trees.
func MakeLegend(layers []*Block, maxSections int, opts ...Option) (Result, error) {
	cfg := newConfig(opts)
	if err := errors.ValidateSections(maxSections); err != nil {
		return Result{}, err
	}
	if err := errors.ValidateHeight(cfg.maxSectionHeight); err != nil {
		return Result{}, err
	}
	if len(layers) == 0 {
		return Result{Layers: layers, Strategy: StrategyEmpty}, nil
	}
	if err := Validate(layers); err != nil {
		return Result{}, err
	}

	ClearSplits(layers)
	total := Layout(layers)
	res := Result{Layers: layers, TotalHeight: total}
	bound := cfg.maxSectionHeight

	cands := collectCandidates(layers, 0, 0, nil)
	auto := cfg.strategy == StrategyAuto

	switch {
	case maxSections == 1 || (bound > 0 && total <= bound+eps):
		res.Strategy = StrategySingle
		res.SectionsUsed = 1

	case cfg.strategy == StrategyGreedy || (auto && len(layers) > cfg.layerThreshold):
		target := greedyTarget(total, maxSections, bound)
		if len(layers) == 1 {
			res.SectionsUsed = SplitLayer(layers[0], target)
		} else {
			res.SectionsUsed = chunkLayers(layers, total, target)
		}
		res.Strategy = StrategyGreedy

	case auto && len(cands) > cfg.maxCandidates:
		res.SectionsUsed = chunkCandidates(cands, total, greedyTarget(total, maxSections, bound))
		res.Strategy = StrategyGreedy

	default:
		p := bestPlan(cands, total, maxSections, cfg)
		p.commit()
		res.SectionsUsed = p.Sections()
		res.Strategy = StrategyOptimal
	}

	res.Sections = Sections(layers)
	for _, s := range res.Sections {
		res.MaxHeight = math.Max(res.MaxHeight, s.Height)
	}

	cfg.logger.Debug("packed legend",
		"layers", len(layers),
		"strategy", res.Strategy,
		"sections", res.SectionsUsed,
		"max_height", res.MaxHeight,
		"total_height", total)
	return res, nil
}

// bestPlan evaluates every section count up to maxSections and picks one.
func bestPlan(cands []candidate, total float64, maxSections int, cfg config) Plan {
	maxK := min(maxSections, len(cands)+1)

	var chosen Plan
	for k := 1; k <= maxK; k++ {
		p := search(cands, total, k-1, cfg.maxCombinations)
		cfg.logger.Debug("evaluated section count",
			"sections", k,
			"max_height", p.MaxHeight,
			"exhaustive", p.Exhaustive)

		if cfg.maxSectionHeight > 0 && p.MaxHeight <= cfg.maxSectionHeight+eps {
			return p
		}
		if k == 1 || p.MaxHeight < chosen.MaxHeight*(1-cfg.minImprovement)-eps {
			chosen = p
		}
	}
	return chosen
}
