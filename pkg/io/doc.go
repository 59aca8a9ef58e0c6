// Package io provides JSON import and export for legend documents.
//
// # Input Format
//
// A legend document is either a bare array of layers or an object with a
// "layers" array and optional packing hints:
//
//	[
//	  {"id": "roads", "type": "layer", "headerHeight": 20, "items": [
//	    {"type": "item", "height": 20},
//	    {"type": "item", "height": 20}
//	  ]},
//	  {"id": "parks", "type": "layer", "height": 64}
//	]
//
//	{
//	  "maxSections": 4,
//	  "maxSectionHeight": 200,
//	  "layers": [ ... ]
//	}
//
// Block fields follow [legend.Block]: id, name, type, height, headerHeight,
// items. Any y or splitBefore values present on input are kept on the
// decoded blocks; the packer overwrites them.
//
// # Output Format
//
// [WriteJSON] emits the packed legend together with a summary:
//
//	{
//	  "sectionsUsed": 3,
//	  "strategy": "optimal",
//	  "maxHeight": 180,
//	  "totalHeight": 500,
//	  "sections": [{"index": 0, "start": 0, "height": 180, "path": [0], "opener": "roads"}],
//	  "layers": [ ... ]
//	}
//
// The output is itself a valid input document, so a packed legend can be
// re-read and re-packed.
//
// # Concurrency
//
// Readers return independent trees that the caller owns. Writers only read
// the result they are given.
//
// [legend.Block]: github.com/matzehuels/legendpack/pkg/legend.Block
package io
