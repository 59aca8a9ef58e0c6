// Package legend packs map-legend blocks into a bounded number of sections.
//
// A legend is a forest of [Block] values: top-level layers, optionally holding
// groups and items. Heights are measured by the caller. The packer decides
// where new sections start and records the decision as [Block.SplitBefore]
// flags on the existing blocks. It also fills in [Block.Y]. It never adds or
// removes blocks.
//
// # Entry points
//
// [MakeLegend] is the top-level call. It chooses how many sections to use,
// at most the requested maximum, and places the breaks:
//
//	res, err := legend.MakeLegend(layers, 4, legend.WithMaxSectionHeight(200))
//	if err != nil {
//	    return err
//	}
//	for _, s := range res.Sections {
//	    fmt.Println(s.Start, s.Height)
//	}
//
// [FindOptimalSplit] places an exact number of breaks inside one container.
// [SplitLayer] is the cheap greedy alternative for a single tall layer.
//
// # Candidate positions
//
// A break may go before any block that is not the first child of its
// container, at any depth. Breaking before a first child is the same cut as
// breaking before its parent, so it is not offered twice.
//
// # Scoring
//
// Placements are ranked by the tallest resulting section, then by the sum of
// squared section heights, so that among equally tall layouts the more even
// one wins. Small searches enumerate every placement with package comb; large
// ones use an exact dynamic program with the same ranking.
//
// # Concurrency
//
// Packing is synchronous and mutates the caller's tree. Callers must not
// touch the tree from other goroutines during a call.
package legend
