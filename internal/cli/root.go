// Package cli implements the legendpack command-line interface.
//
// # Commands
//
//   - pack: pack a legend document and write JSON, DOT, SVG, PNG or text
//   - sections: print the section table of a packed legend
//   - preview: browse the sections interactively
//   - comb: list boolean combinations (debugging the split search)
//   - serve: run the HTTP API
//   - cache: inspect or clear the result cache
//   - completion: generate shell completion scripts
//
// # Configuration
//
// Settings come from built-in defaults, then the TOML config file
// (--config, or ~/.config/legendpack/config.toml), then flags.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// shows the packer's per-section-count evaluation.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/legendpack/pkg/buildinfo"
)

// appName is the application name used for directories and display.
const appName = "legendpack"

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "legendpack splits map legends into balanced sections",
		Long: `legendpack packs the blocks of a map legend (layers, groups and items with
pre-measured heights) into at most N visual sections, keeping the tallest
section as short as possible.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/legendpack/config.toml)")

	root.AddCommand(c.packCommand())
	root.AddCommand(c.sectionsCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.combCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
