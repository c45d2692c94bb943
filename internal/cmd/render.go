package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/famtree/internal/render"
)

var (
	renderDiagram string
	renderOut     string
	renderLR      bool
)

var renderCmd = &cobra.Command{
	Use:   "render [input]",
	Short: "Draw the tree as a Graphviz diagram",
	Long: `Render draws the tree as Graphviz DOT source or as an SVG image produced
by the embedded Graphviz. Output goes to stdout unless --out is set.`,
	Example: `  famtree render > family.dot
  famtree render --diagram svg --out data/family.svg`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderDiagram, "diagram", "dot", "Diagram format (dot|svg)")
	renderCmd.Flags().StringVar(&renderOut, "out", "-", "Output file (- for stdout)")
	renderCmd.Flags().BoolVar(&renderLR, "left-to-right", false, "Lay generations out left to right")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := render.ParseFormat(renderDiagram)
	if err != nil {
		return ValidationError{Field: "--diagram", Message: err.Error()}
	}

	root, _, err := loadTree(cmd, args)
	if err != nil {
		return handleMissingInput(ctx, err)
	}

	data, err := render.Render(ctx, root, format, render.Options{LeftToRight: renderLR})
	if err != nil {
		return err
	}

	if renderOut == "" || renderOut == "-" {
		_, err := stdoutFromContext(ctx).Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(renderOut), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(renderOut, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", renderOut, err)
	}
	if !quietFlag {
		fmt.Fprintf(stdoutFromContext(ctx), "Wrote %s\n", renderOut)
	}
	return nil
}
