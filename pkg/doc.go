// Package pkg holds the libraries behind legendpack, a packer that splits
// map-legend blocks into a bounded number of visual sections.
//
// # Layout
//
//  1. [legend] - the packer: block tree, split search, legend assembler
//  2. [legend/comb] - boolean combination enumeration used by the search
//  3. [io] - JSON import and export of legend documents
//  4. [pipeline] - orchestration (pack → render) with caching
//  5. [render] - DOT, SVG, PNG and text views of a packed legend
//  6. [cache], [config], [errors], [observability], [buildinfo] - plumbing
//
// # Data flow
//
//	legend JSON
//	     ↓
//	[io] package (decode + validate)
//	     ↓
//	[legend] package (Layout, FindOptimalSplit, MakeLegend)
//	     ↓
//	[render] package (DOT/SVG/PNG/TXT) or [io] (packed JSON)
//
// # Quick start
//
//	doc, _ := io.ImportJSON("legend.json")
//	res, err := legend.MakeLegend(doc.Layers, 3, legend.WithMaxSectionHeight(400))
//	if err != nil {
//	    return err
//	}
//	for _, s := range res.Sections {
//	    fmt.Printf("section %d starts at %q (%g px)\n", s.Index+1, s.Opener, s.Height)
//	}
package pkg
