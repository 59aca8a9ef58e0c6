package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	legendio "github.com/matzehuels/legendpack/pkg/io"
	"github.com/matzehuels/legendpack/pkg/legend"
	"github.com/matzehuels/legendpack/pkg/observability"
	"github.com/matzehuels/legendpack/pkg/render"
)

// Render produces res in each of formats. DOT is built once and shared by
// the graphical formats.
func Render(ctx context.Context, res legend.Result, formats []string) (map[string][]byte, error) {
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}
	var dot string
	artifacts := make(map[string][]byte, len(formats))

	for _, format := range formats {
		observability.Pack().OnRenderStart(ctx, format)
		start := time.Now()

		var data []byte
		var err error
		switch format {
		case FormatJSON:
			var buf bytes.Buffer
			err = legendio.WriteJSON(res, &buf)
			data = buf.Bytes()
		case FormatTXT:
			data = []byte(render.Text(res))
		case FormatDOT, FormatSVG, FormatPNG:
			if dot == "" {
				dot = render.ToDOT(res)
			}
			switch format {
			case FormatDOT:
				data = []byte(dot)
			case FormatSVG:
				data, err = render.RenderSVG(ctx, dot)
			case FormatPNG:
				data, err = render.RenderPNG(ctx, dot)
			}
		}

		observability.Pack().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
