package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/famtree/internal/tree"
)

var statsCmd = &cobra.Command{
	Use:   "stats [input]",
	Short: "Summarise the size and shape of a tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		root, _, err := loadTree(cmd, args)
		if err != nil {
			return handleMissingInput(ctx, err)
		}

		s := tree.Summarize(root)
		if structuredOutputRequested() {
			return printStructured(ctx, s)
		}

		out := stdoutFromContext(ctx)
		if root == nil {
			fmt.Fprintln(out, "Empty tree")
			return nil
		}
		fmt.Fprintf(out, "Root:        %s\n", s.Root)
		fmt.Fprintf(out, "People:      %s\n", humanize.Comma(int64(s.Nodes)))
		fmt.Fprintf(out, "Leaves:      %s\n", humanize.Comma(int64(s.Leaves)))
		fmt.Fprintf(out, "Generations: %d\n", len(s.Generations))
		fmt.Fprintf(out, "Widest:      %s\n", humanize.Comma(int64(s.Widest)))
		for depth, count := range s.Generations {
			fmt.Fprintf(out, "  %s generation: %s\n", humanize.Ordinal(depth+1), humanize.Comma(int64(count)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
