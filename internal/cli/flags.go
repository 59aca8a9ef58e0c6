package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/legendpack/pkg/config"
	"github.com/matzehuels/legendpack/pkg/legend"
)

// packFlags are the packing settings every packing command accepts. Only
// flags set on the command line override the config file.
type packFlags struct {
	sections        int
	maxHeight       float64
	layerThreshold  int
	maxCombinations int
	maxCandidates   int
	minImprovement  float64
	strategy        string
}

func (f *packFlags) register(cmd *cobra.Command) {
	def := config.Default()
	fs := cmd.Flags()
	fs.IntVarP(&f.sections, "sections", "n", def.MaxSections, "maximum number of sections")
	fs.Float64Var(&f.maxHeight, "max-height", 0, "maximum section height in pixels (0 = unbounded)")
	fs.IntVar(&f.layerThreshold, "layer-threshold", legend.DefaultLayerThreshold, "layers above which greedy chunking is used")
	fs.IntVar(&f.maxCombinations, "max-combinations", legend.DefaultMaxCombinations, "exhaustive search limit before the dynamic program is used")
	fs.IntVar(&f.maxCandidates, "max-candidates", legend.DefaultMaxCandidates, "break candidates above which greedy chunking is used")
	fs.Float64Var(&f.minImprovement, "min-improvement", 0, "fraction an extra section must shave off the tallest section")
	fs.StringVar(&f.strategy, "strategy", "auto", "packing strategy: auto, optimal, greedy")

	_ = cmd.RegisterFlagCompletionFunc("strategy", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "optimal", "greedy"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// apply copies the flags that were set onto cfg and revalidates it.
func (f *packFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("sections") {
		cfg.MaxSections = f.sections
	}
	if fs.Changed("max-height") {
		cfg.MaxSectionHeight = f.maxHeight
	}
	if fs.Changed("layer-threshold") {
		cfg.LayerThreshold = f.layerThreshold
	}
	if fs.Changed("max-combinations") {
		cfg.MaxCombinations = f.maxCombinations
	}
	if fs.Changed("max-candidates") {
		cfg.MaxCandidates = f.maxCandidates
	}
	if fs.Changed("min-improvement") {
		cfg.MinImprovement = f.minImprovement
	}
	if fs.Changed("strategy") {
		cfg.Strategy = f.strategy
	}
	return cfg.Validate()
}
