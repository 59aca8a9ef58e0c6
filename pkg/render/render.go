// Package render turns a packed legend into something a person can look at.
//
// [ToDOT] draws each section as a Graphviz cluster with the blocks stacked
// top to bottom in document order. [RenderSVG] and [RenderPNG] lay that
// graph out with the embedded Graphviz from goccy/go-graphviz, so no
// external binaries are required. [Text] produces a plain indented report
// for terminals and logs.
//
//	res, _ := legend.MakeLegend(layers, 3)
//	svg, err := render.RenderSVG(ctx, render.ToDOT(res))
package render

import (
	"github.com/matzehuels/legendpack/pkg/legend"
)

// Row is one block in document order.
type Row struct {
	Block *legend.Block
	// Depth is 0 for layers.
	Depth int
	// Section is the zero-based section the block falls in.
	Section int
	// Opens is set when a section starts at this block.
	Opens bool
}

// Flatten lists every block of layers in document order and assigns each to
// the section it falls in. Flags on the leading chain of first blocks are
// ignored, as in legend.Sections.
func Flatten(layers []*legend.Block) []Row {
	var rows []Row
	section := 0
	var visit func(items []*legend.Block, depth int, leading bool)
	visit = func(items []*legend.Block, depth int, leading bool) {
		for i, b := range items {
			first := leading && i == 0
			opens := b.SplitBefore && !first
			if opens {
				section++
			}
			rows = append(rows, Row{Block: b, Depth: depth, Section: section, Opens: opens})
			if b.IsContainer() {
				visit(b.Items, depth+1, first)
			}
		}
	}
	visit(layers, 0, true)
	return rows
}
