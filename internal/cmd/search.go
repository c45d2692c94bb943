package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/famtree/internal/output"
	"github.com/salmonumbrella/famtree/internal/tree"
)

var searchCmd = &cobra.Command{
	Use:   "search <query> [input]",
	Short: "Find people by name",
	Long: `Search lists every node whose name contains the query, ignoring case,
together with its depth and the path from the root.`,
	Example: `  famtree search nils
  famtree search "per hansson" data/tree.txt -o json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.TrimSpace(args[0])
	if query == "" {
		return ValidationError{Field: "query", Message: "must not be empty"}
	}

	root, _, err := loadTree(cmd, args[1:])
	if err != nil {
		return handleMissingInput(ctx, err)
	}

	matches := tree.Search(root, query)
	if matches == nil {
		matches = []tree.Match{}
	}

	format := GetOutputFormat()
	if format != output.FormatText {
		return printStructured(ctx, matches)
	}

	matches = output.ApplyAgentOptions(ctx, matches).([]tree.Match)
	out := stdoutFromContext(ctx)
	if len(matches) == 0 {
		fmt.Fprintf(out, "No matches for %q\n", query)
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(out, "%s (generation %d)\n  %s\n", m.Name, m.Depth, strings.Join(m.Path, " > "))
	}
	return nil
}
