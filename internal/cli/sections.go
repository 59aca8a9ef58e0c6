package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// sectionsCommand packs a document and prints its section table.
func (c *CLI) sectionsCommand() *cobra.Command {
	var (
		flags   packFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "sections [file]",
		Short: "Show the sections a legend packs into",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := c.readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			if err := c.effectiveConfig(cmd, &flags, doc); err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, hit, err := runner.PackWithCacheInfo(ctx, doc.Layers, c.pipelineOptions(nil, false))
			if err != nil {
				return err
			}

			fmt.Fprintln(c.out, StyleTitle.Render(args[0]))
			printStats(c.out, res, hit)
			if res.SectionsUsed == 0 {
				printInfo(c.out, "Legend is empty")
				return nil
			}
			fmt.Fprintln(c.out, sectionsTable(res))
			printKeyValue(c.out, "total", fmtPx(res.TotalHeight))
			if c.Config.MaxSectionHeight > 0 {
				printKeyValue(c.out, "bound", fmtPx(c.Config.MaxSectionHeight))
				if res.MaxHeight > c.Config.MaxSectionHeight {
					fmt.Fprintln(c.out, StyleWarning.Render(fmt.Sprintf("! tallest section exceeds the bound with %d sections", res.SectionsUsed)))
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	return cmd
}
