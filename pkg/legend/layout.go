package legend

// Layout assigns Y offsets across a forest of layers and returns the total
// legend height. Layers are stacked from 0; children are placed below their
// parent's header.
func Layout(layers []*Block) float64 {
	var off float64
	for _, l := range layers {
		l.Y = off
		off += layoutBlock(l)
	}
	return off
}

// layoutBlock positions the descendants of b relative to b and returns b's
// extent.
func layoutBlock(b *Block) float64 {
	if !b.IsContainer() {
		return b.Height
	}
	off := b.HeaderHeight
	for _, c := range b.Items {
		c.Y = off
		off += layoutBlock(c)
	}
	return off
}

// candidate is a block a section break may precede.
type candidate struct {
	block  *Block
	offset float64 // from the top of the packed region
	depth  int
}

// collectCandidates lists the break candidates among items and their
// descendants in document order. Y offsets must already be laid out; base is
// the absolute offset the items' Y values are relative to.
func collectCandidates(items []*Block, base float64, depth int, out []candidate) []candidate {
	for i, b := range items {
		abs := base + b.Y
		if i > 0 {
			out = append(out, candidate{block: b, offset: abs, depth: depth})
		}
		if b.IsContainer() {
			out = collectCandidates(b.Items, abs, depth+1, out)
		}
	}
	return out
}
