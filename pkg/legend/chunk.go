package legend

import "math"

// greedyTarget picks the section count for greedy chunking: maxSections,
// or fewer when a height bound says fewer will do.
func greedyTarget(total float64, maxSections int, bound float64) int {
	target := maxSections
	if bound > 0 {
		need := int(math.Ceil(total/bound - eps))
		target = min(target, max(need, 1))
	}
	return target
}

// chunkLayers walks the top-level layers and starts a new section once the
// running height has reached total/target. It places at most target-1
// breaks and returns the number of sections used. A legend with no height
// stays in one section.
func chunkLayers(layers []*Block, total float64, target int) int {
	chunk := total / float64(max(target, 1))
	if target <= 1 || chunk <= eps {
		return 1
	}
	var running float64
	splits := 0
	for i, l := range layers {
		if i > 0 && splits < target-1 && running >= chunk-eps {
			l.SplitBefore = true
			splits++
			running = 0
		}
		running += l.Extent()
	}
	return splits + 1
}

// chunkCandidates is chunkLayers over every break candidate in the forest:
// a break goes before the first candidate that starts at least total/target
// below the previous break.
func chunkCandidates(cands []candidate, total float64, target int) int {
	chunk := total / float64(max(target, 1))
	if target <= 1 || chunk <= eps {
		return 1
	}
	var last float64
	splits := 0
	for _, c := range cands {
		if splits == target-1 {
			break
		}
		if c.offset-last >= chunk-eps {
			c.block.SplitBefore = true
			splits++
			last = c.offset
		}
	}
	return splits + 1
}

// SplitLayer breaks a single layer into roughly parts pieces of equal height
// by walking its items in order. A group contributes its header before its
// children are visited, so a break can land between a header and its first
// child.
//
// Existing flags below b are cleared. It returns the number of sections
// produced, which may be fewer than parts when the layer has too few items.
func SplitLayer(b *Block, parts int) int {
	if b == nil {
		return 0
	}
	for _, c := range b.Items {
		ClearSplits([]*Block{c})
	}
	layoutBlock(b)
	if parts <= 1 || !b.IsContainer() {
		return 1
	}

	chunk := b.Extent() / float64(parts)
	if chunk <= eps {
		return 1
	}
	var running float64
	splits := 0
	first := true

	var traverse func(items []*Block)
	traverse = func(items []*Block) {
		for _, item := range items {
			if !first && splits < parts-1 && running >= chunk-eps {
				item.SplitBefore = true
				splits++
				running = 0
			}
			first = false
			if item.IsContainer() {
				running += item.HeaderHeight
				traverse(item.Items)
			} else {
				running += item.Height
			}
		}
	}
	traverse(b.Items)
	return splits + 1
}
