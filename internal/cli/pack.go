package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/legendpack/pkg/config"
	legendio "github.com/matzehuels/legendpack/pkg/io"
	"github.com/matzehuels/legendpack/pkg/pipeline"
)

type packOpts struct {
	flags   packFlags
	formats string
	output  string
	noCache bool
	refresh bool
}

// packCommand creates the pack command, the main entry point: read a legend
// document, pack it and write the result.
func (c *CLI) packCommand() *cobra.Command {
	var opts packOpts

	cmd := &cobra.Command{
		Use:   "pack [file]",
		Short: "Pack a legend document into sections",
		Long: `Pack reads a legend document (a JSON array of layers, or an object with a
"layers" key), marks where each section starts and writes the result.

Use "-" to read from stdin. With a single format and no --output the result
goes to stdout.`,
		Example: `  legendpack pack legend.json -n 3
  legendpack pack legend.json --max-height 400 -f json,svg -o out/legend
  cat legend.json | legendpack pack - -f txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPack(cmd, args[0], &opts)
		},
	}

	opts.flags.register(cmd)
	cmd.Flags().StringVarP(&opts.formats, "format", "f", pipeline.FormatJSON, "output format(s): json, dot, svg, png, txt (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when a cached result exists")

	return cmd
}

func (c *CLI) runPack(cmd *cobra.Command, path string, opts *packOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	formats := pipeline.ParseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}
	if len(formats) > 1 && opts.output == "" {
		return fmt.Errorf("multiple formats need --output")
	}

	doc, err := c.readDocument(cmd, path)
	if err != nil {
		return err
	}
	if err := c.effectiveConfig(cmd, &opts.flags, doc); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	var spin *Spinner
	if needsGraphviz(formats) && opts.output != "" {
		spin = newSpinner(ctx, os.Stderr, "Rendering "+strings.Join(formats, ", "))
		spin.Start()
	}
	res, err := runner.Execute(ctx, doc.Layers, c.pipelineOptions(formats, opts.refresh))
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Packed %d layers", len(doc.Layers)))

	if opts.output == "" {
		_, err := c.out.Write(res.Artifacts[formats[0]])
		return err
	}

	paths, err := writeArtifacts(res, formats, opts.output)
	if err != nil {
		return err
	}
	printSuccess(c.out, "Packed into %s", StyleNumber.Render(fmt.Sprint(res.Legend.SectionsUsed))+" sections")
	printStats(c.out, res.Legend, res.CacheInfo.PackHit)
	for _, p := range paths {
		printFile(c.out, p)
	}
	if len(res.Legend.Sections) > 1 {
		printNextStep(c.out, "Inspect sections", appName+" sections "+path)
	}
	return nil
}

// readDocument reads path, or stdin for "-".
func (c *CLI) readDocument(cmd *cobra.Command, path string) (*legendio.Document, error) {
	if path == "-" {
		return legendio.ReadJSON(cmd.InOrStdin())
	}
	return legendio.ImportJSON(path)
}

// effectiveConfig layers document hints and then flags over the loaded
// config.
func (c *CLI) effectiveConfig(cmd *cobra.Command, f *packFlags, doc *legendio.Document) error {
	cfg := c.Config
	applyDocument(&cfg, doc)
	if err := f.apply(cmd, &cfg); err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

func applyDocument(cfg *config.Config, doc *legendio.Document) {
	if doc == nil {
		return
	}
	if doc.MaxSections > 0 {
		cfg.MaxSections = doc.MaxSections
	}
	if doc.MaxSectionHeight > 0 {
		cfg.MaxSectionHeight = doc.MaxSectionHeight
	}
}

// writeArtifacts writes each format to output. A single format goes to
// output as given; several formats share output as a base path. The json
// document is exported from the packed legend itself.
func writeArtifacts(res *pipeline.Result, formats []string, output string) ([]string, error) {
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		p := output
		if len(formats) > 1 {
			p = strings.TrimSuffix(output, filepath.Ext(output)) + "." + f
		}
		if f == pipeline.FormatJSON {
			if err := legendio.ExportJSON(res.Legend, p); err != nil {
				return nil, fmt.Errorf("write %s: %w", p, err)
			}
		} else if err := os.WriteFile(p, res.Artifacts[f], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func needsGraphviz(formats []string) bool {
	for _, f := range formats {
		if f == pipeline.FormatSVG || f == pipeline.FormatPNG {
			return true
		}
	}
	return false
}
