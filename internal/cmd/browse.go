package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/famtree/internal/browse"
)

var browseCmd = &cobra.Command{
	Use:   "browse [input]",
	Short: "Explore the tree interactively",
	Long: `Browse opens a collapsible view of the tree in the terminal. Branches start
folded below the root; enter toggles a branch and left jumps to the parent.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if !stdoutIsTerminal(cmd.OutOrStdout()) {
			return fmt.Errorf("browse requires an interactive terminal")
		}

		root, _, err := loadTree(cmd, args)
		if err != nil {
			return handleMissingInput(ctx, err)
		}
		return runProgram(browse.New(root))
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
