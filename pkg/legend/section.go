package legend

// Section is a run of consecutive blocks between two breaks.
type Section struct {
	Index  int     `json:"index"`
	Start  float64 `json:"start"`
	Height float64 `json:"height"`
	// Path locates the block that opens the section: indexes into the layer
	// list, then into each Items slice.
	Path []int `json:"path"`
	// Opener is the label of that block.
	Opener string `json:"opener"`
}

// Sections derives the sections of a packed forest from its SplitBefore
// flags. It does not modify the tree. Flags on the leading chain of first
// blocks (the first layer, its first child and so on) are ignored since
// nothing precedes them.
func Sections(layers []*Block) []Section {
	if len(layers) == 0 {
		return nil
	}
	var out []Section
	cur := Section{Path: []int{0}, Opener: layers[0].Label()}

	var visit func(items []*Block, base float64, path []int) float64
	visit = func(items []*Block, base float64, path []int) float64 {
		off := base
		for i, b := range items {
			p := append(path[:len(path):len(path)], i)
			if b.SplitBefore && !isFirst(p) {
				cur.Height = off - cur.Start
				out = append(out, cur)
				cur = Section{Index: len(out), Start: off, Path: p, Opener: b.Label()}
			}
			if b.IsContainer() {
				off = visit(b.Items, off+b.HeaderHeight, p)
			} else {
				off += b.Height
			}
		}
		return off
	}
	total := visit(layers, 0, nil)
	cur.Height = total - cur.Start
	return append(out, cur)
}

func isFirst(path []int) bool {
	for _, i := range path {
		if i != 0 {
			return false
		}
	}
	return true
}
