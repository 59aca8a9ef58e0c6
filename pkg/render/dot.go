package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/legendpack/pkg/legend"
)

// sectionColors cycles through cluster backgrounds.
var sectionColors = []string{"#eef4fb", "#fdf3e7", "#eef8ee", "#f6eefb", "#fbeeee"}

// ToDOT converts a packed legend to Graphviz DOT. Each section becomes a
// cluster labelled with its index and height; blocks inside are chained by
// invisible edges so they keep their document order.
func ToDOT(res legend.Result) string {
	rows := Flatten(res.Layers)
	heights := make(map[int]float64, len(res.Sections))
	for _, s := range res.Sections {
		heights[s.Index] = s.Height
	}

	var buf bytes.Buffer
	buf.WriteString("digraph legend {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  newrank=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=12, width=2.5];\n")
	buf.WriteString("  edge [style=invis];\n")
	buf.WriteString("  ranksep=0.15;\n")

	open := -1
	for i, r := range rows {
		if r.Section != open {
			if open >= 0 {
				buf.WriteString("  }\n")
			}
			open = r.Section
			fmt.Fprintf(&buf, "\n  subgraph cluster_%d {\n", open)
			fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("section %d  (%s px)", open+1, fmtHeight(heights[open])))
			fmt.Fprintf(&buf, "    style=\"rounded,filled\";\n    color=%q;\n", sectionColors[open%len(sectionColors)])
		}
		fmt.Fprintf(&buf, "    n%d [%s];\n", i, nodeAttrs(r))
	}
	if open >= 0 {
		buf.WriteString("  }\n")
	}

	if len(rows) > 1 {
		buf.WriteString("\n ")
		for i := range rows {
			if i > 0 {
				buf.WriteString(" ->")
			}
			fmt.Fprintf(&buf, " n%d", i)
		}
		buf.WriteString(";\n")
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(r Row) string {
	b := r.Block
	label := fmt.Sprintf("%s\n%s px", b.Label(), fmtHeight(b.Extent()))
	attrs := fmt.Sprintf("label=%q", label)
	switch {
	case b.Kind == legend.KindLayer:
		attrs += `, fillcolor="#d7e3f0", penwidth=1.5`
	case b.IsContainer():
		attrs += `, fillcolor="#ececec"`
	}
	if r.Opens {
		attrs += `, color="#c0392b", penwidth=2`
	}
	return attrs
}

func fmtHeight(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// RenderSVG lays out a DOT graph and returns SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG lays out a DOT graph and returns PNG bytes.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one that
// scales, keeping the original viewBox extent.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
