package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/legendpack/pkg/legend"
)

// previewCommand opens an interactive section browser. It packs in memory
// with the library directly, without the cache, so +/- repacking is cheap.
func (c *CLI) previewCommand() *cobra.Command {
	var flags packFlags

	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Browse the sections of a legend interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			if err := c.effectiveConfig(cmd, &flags, doc); err != nil {
				return err
			}

			opts := append(c.Config.PackOptions(), legend.WithLogger(c.Logger))
			repack := func(n int) (legend.Result, error) {
				return legend.MakeLegend(doc.Layers, n, opts...)
			}
			res, err := repack(c.Config.MaxSections)
			if err != nil {
				return err
			}

			m := NewSectionBrowserModel(res, c.Config.MaxSections, repack)
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithAltScreen()).Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
