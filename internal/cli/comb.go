package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/legendpack/pkg/errors"
	"github.com/matzehuels/legendpack/pkg/legend/comb"
)

// combLimit caps how many sequences comb prints without --all.
const combLimit = 1000

// combCommand lists the boolean sequences the split search enumerates.
// It is a debugging aid: "comb 5 2" shows every way to place 2 breaks among
// 5 candidate positions, in the order they are scored.
func (c *CLI) combCommand() *cobra.Command {
	var (
		countOnly bool
		all       bool
	)

	cmd := &cobra.Command{
		Use:   "comb <n> <k>",
		Short: "List every length-n sequence with k true values",
		Example: `  legendpack comb 4 2
  legendpack comb 30 5 --count`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidArgument, err, "n must be an integer")
			}
			k, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidArgument, err, "k must be an integer")
			}
			if n < 0 || k < 0 || k > n {
				return errors.New(errors.ErrCodeInvalidArgument, "need 0 <= k <= n, got n=%d k=%d", n, k)
			}

			total := comb.Binomial(n, k)
			if countOnly {
				fmt.Fprintln(c.out, total)
				return nil
			}
			if total > combLimit && !all {
				return errors.New(errors.ErrCodeInvalidArgument,
					"%d sequences; use --count, or --all to print them anyway", total)
			}
			for seq := range comb.Combinations(n, k) {
				fmt.Fprintln(c.out, formatSeq(seq))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&countOnly, "count", false, "print only the number of sequences")
	cmd.Flags().BoolVar(&all, "all", false, "print even very long listings")
	return cmd
}

// formatSeq renders a sequence as 1s and 0s, e.g. "1100".
func formatSeq(seq []bool) string {
	var b strings.Builder
	for _, v := range seq {
		if v {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
