package render

import (
	"fmt"
	"strings"

	"github.com/matzehuels/legendpack/pkg/legend"
)

// Text renders res as a plain report: a summary line, then every block
// indented by depth with a rule at each section start.
//
//	3 sections (optimal), tallest 180 of 500 px
//	== section 1  0-120 (120 px)
//	roads  120
//	...
func Text(res legend.Result) string {
	var b strings.Builder
	noun := "sections"
	if res.SectionsUsed == 1 {
		noun = "section"
	}
	fmt.Fprintf(&b, "%d %s (%s), tallest %s of %s px\n",
		res.SectionsUsed, noun, res.Strategy, fmtHeight(res.MaxHeight), fmtHeight(res.TotalHeight))

	open := -1
	for _, r := range Flatten(res.Layers) {
		if r.Section != open {
			open = r.Section
			if open < len(res.Sections) {
				s := res.Sections[open]
				fmt.Fprintf(&b, "== section %d  %s-%s (%s px)\n", open+1,
					fmtHeight(s.Start), fmtHeight(s.Start+s.Height), fmtHeight(s.Height))
			} else {
				fmt.Fprintf(&b, "== section %d\n", open+1)
			}
		}
		fmt.Fprintf(&b, "%s%s  %s\n", strings.Repeat("  ", r.Depth), r.Block.Label(), fmtHeight(r.Block.Extent()))
	}
	return b.String()
}
