package cmd

import (
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/famtree/internal/output"
	"github.com/salmonumbrella/famtree/internal/tree"
)

var flattenCmd = &cobra.Command{
	Use:   "flatten [input]",
	Short: "List every node as a flat row",
	Long: `Flatten lists the tree in document order, one row per node with a stable
id, the parent id, the depth and the number of children. Ids are derived
from each node's position, so re-running on the same input gives the same
ids.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		root, _, err := loadTree(cmd, args)
		if err != nil {
			return handleMissingInput(ctx, err)
		}

		rows := tree.Flatten(root)
		if rows == nil {
			rows = []tree.Row{}
		}
		if GetOutputFormat() == output.FormatText {
			return output.NewPrinter(stdoutFromContext(ctx), output.FormatTable).Print(ctx, rows)
		}
		return printStructured(ctx, rows)
	},
}

func init() {
	rootCmd.AddCommand(flattenCmd)
}
