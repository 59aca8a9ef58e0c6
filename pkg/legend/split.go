package legend

import (
	"math"

	"github.com/matzehuels/legendpack/pkg/errors"
	"github.com/matzehuels/legendpack/pkg/legend/comb"
)

// eps absorbs float noise when comparing section heights.
const eps = 1e-9

// Plan is a concrete placement of section breaks.
type Plan struct {
	// Splits are the blocks that open a new section, in document order.
	Splits []*Block
	// Heights holds the height of every section, len(Splits)+1 entries.
	Heights []float64
	// MaxHeight is the tallest section.
	MaxHeight float64
	// Exhaustive reports whether the plan came from full enumeration rather
	// than the dynamic program.
	Exhaustive bool

	sumSq float64
	picks []int
}

// Sections returns the number of sections the plan produces.
func (p Plan) Sections() int { return len(p.Heights) }

// FindOptimalSplit places exactly numSplits section breaks inside b.
//
// Existing SplitBefore flags below b are cleared and Y offsets of b's
// descendants are recomputed first. The flag on b itself is left alone since
// it belongs to b's parent.
//
// It returns an EMPTY_INPUT error when b is nil or has no items, and an
// INVALID_ARGUMENT error when numSplits is negative or larger than the
// number of candidate positions in b.
func FindOptimalSplit(b *Block, numSplits int, opts ...Option) (Plan, error) {
	if b == nil || !b.IsContainer() {
		return Plan{}, errors.New(errors.ErrCodeEmptyInput, "block has no items to split")
	}
	cfg := newConfig(opts)

	for _, c := range b.Items {
		ClearSplits([]*Block{c})
	}
	total := layoutBlock(b)
	cands := collectCandidates(b.Items, 0, 0, nil)

	if numSplits < 0 || numSplits > len(cands) {
		return Plan{}, errors.New(errors.ErrCodeInvalidArgument,
			"numSplits must be between 0 and %d, got %d", len(cands), numSplits)
	}

	p := search(cands, total, numSplits, cfg.maxCombinations)
	p.commit()
	cfg.logger.Debug("split block",
		"block", b.Label(),
		"candidates", len(cands),
		"splits", numSplits,
		"max_height", p.MaxHeight,
		"exhaustive", p.Exhaustive)
	return p, nil
}

// commit writes the plan's flags onto the tree.
func (p Plan) commit() {
	for _, b := range p.Splits {
		b.SplitBefore = true
	}
}

// search finds the best placement of numSplits breaks among cands.
func search(cands []candidate, total float64, numSplits, maxCombinations int) Plan {
	var picks []int
	exhaustive := comb.Binomial(len(cands), numSplits) <= maxCombinations
	if exhaustive {
		picks = searchExhaustive(cands, total, numSplits)
	} else {
		picks = searchDP(cands, total, numSplits)
	}
	p := buildPlan(cands, total, picks)
	p.Exhaustive = exhaustive
	return p
}

func buildPlan(cands []candidate, total float64, picks []int) Plan {
	p := Plan{
		Splits:  make([]*Block, len(picks)),
		Heights: make([]float64, 0, len(picks)+1),
		picks:   picks,
	}
	prev := 0.0
	for i, idx := range picks {
		p.Splits[i] = cands[idx].block
		p.Heights = append(p.Heights, cands[idx].offset-prev)
		prev = cands[idx].offset
	}
	p.Heights = append(p.Heights, total-prev)
	for _, h := range p.Heights {
		p.MaxHeight = math.Max(p.MaxHeight, h)
		p.sumSq += h * h
	}
	return p
}

// better reports whether score (mx, sq) beats (bestMx, bestSq).
func better(mx, sq, bestMx, bestSq float64) bool {
	if mx < bestMx-eps {
		return true
	}
	return math.Abs(mx-bestMx) <= eps && sq < bestSq-eps
}

// searchExhaustive scores every placement. Ties keep the first placement in
// enumeration order, which favours earlier breaks.
func searchExhaustive(cands []candidate, total float64, numSplits int) []int {
	var best []bool
	bestMx, bestSq := math.Inf(1), math.Inf(1)

	for seq := range comb.Combinations(len(cands), numSplits) {
		var mx, sq, prev float64
		for i, on := range seq {
			if !on {
				continue
			}
			h := cands[i].offset - prev
			mx = math.Max(mx, h)
			sq += h * h
			prev = cands[i].offset
		}
		h := total - prev
		mx = math.Max(mx, h)
		sq += h * h

		if better(mx, sq, bestMx, bestSq) {
			bestMx, bestSq = mx, sq
			best = append(best[:0], seq...)
		}
	}
	return comb.Indices(best)
}

// searchDP solves the same problem as searchExhaustive in O(s·m²).
//
// Phase one finds the smallest achievable tallest section. Phase two
// minimises the sum of squares over placements that respect that bound,
// which yields the same ranking as the exhaustive search.
func searchDP(cands []candidate, total float64, numSplits int) []int {
	if numSplits == 0 {
		return nil
	}
	m := len(cands)
	pos := func(i int) float64 { return cands[i].offset }
	inf := math.Inf(1)

	// f[j][i]: smallest tallest section covering [0, pos(i)] with j+1
	// breaks, the last one at candidate i.
	f := make([][]float64, numSplits)
	for j := range f {
		f[j] = make([]float64, m)
		for i := range f[j] {
			f[j][i] = inf
		}
	}
	for i := 0; i < m; i++ {
		f[0][i] = pos(i)
	}
	for j := 1; j < numSplits; j++ {
		for i := j; i < m; i++ {
			for k := j - 1; k < i; k++ {
				f[j][i] = math.Min(f[j][i], math.Max(f[j-1][k], pos(i)-pos(k)))
			}
		}
	}
	bound := inf
	for i := numSplits - 1; i < m; i++ {
		bound = math.Min(bound, math.Max(f[numSplits-1][i], total-pos(i)))
	}
	bound += eps

	g := make([][]float64, numSplits)
	parent := make([][]int, numSplits)
	for j := range g {
		g[j] = make([]float64, m)
		parent[j] = make([]int, m)
		for i := range g[j] {
			g[j][i] = inf
			parent[j][i] = -1
		}
	}
	for i := 0; i < m; i++ {
		if pos(i) <= bound {
			g[0][i] = pos(i) * pos(i)
		}
	}
	for j := 1; j < numSplits; j++ {
		for i := j; i < m; i++ {
			for k := j - 1; k < i; k++ {
				h := pos(i) - pos(k)
				if h > bound || math.IsInf(g[j-1][k], 1) {
					continue
				}
				if v := g[j-1][k] + h*h; v < g[j][i]-eps {
					g[j][i] = v
					parent[j][i] = k
				}
			}
		}
	}

	last, bestSq := -1, inf
	for i := numSplits - 1; i < m; i++ {
		h := total - pos(i)
		if h > bound || math.IsInf(g[numSplits-1][i], 1) {
			continue
		}
		if v := g[numSplits-1][i] + h*h; v < bestSq-eps {
			bestSq = v
			last = i
		}
	}

	picks := make([]int, numSplits)
	for j, i := numSplits-1, last; j >= 0; j-- {
		picks[j] = i
		i = parent[j][i]
	}
	return picks
}
