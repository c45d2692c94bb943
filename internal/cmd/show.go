package cmd

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [input]",
	Short: "Parse a tree and print it",
	Long: `Show parses an ASCII family tree and prints the result.

Text output redraws the tree; json, yaml and ndjson print the same document
convert would write. --query filters JSON output with a jq expression.`,
	Example: `  famtree show data/tree.txt
  famtree show data/tree.txt -o json --query '.children[].name'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		root, _, err := loadTree(cmd, args)
		if err != nil {
			return handleMissingInput(ctx, err)
		}
		return printStructured(ctx, root)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
