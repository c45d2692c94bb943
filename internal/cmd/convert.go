package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/famtree/internal/output"
)

var (
	convertOut    string
	convertAs     string
	convertIndent int
)

var convertCmd = &cobra.Command{
	Use:   "convert [input]",
	Short: "Convert an ASCII tree file to a JSON document",
	Long: `Convert reads an ASCII family tree and writes it as a JSON document.

The input defaults to data/gyllencreutz_tree_ascii.txt and the output to
data/family.json; missing output directories are created. Use - to read
from stdin or to write to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertOut, "out", "", "Output file (default: data/family.json, - for stdout)")
	convertCmd.Flags().StringVar(&convertAs, "as", "", "Document format (json|yaml, default from --out extension)")
	convertCmd.Flags().IntVar(&convertIndent, "indent", 4, "Spaces per JSON indent level")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	root, source, err := loadTree(cmd, args)
	if err != nil {
		return handleMissingInput(ctx, err)
	}

	dest := resolveOutput(convertOut)
	format, err := documentFormat(convertAs, dest)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	printer := output.NewPrinter(&buf, format)
	printer.SetIndent(resolveIndent(cmd, convertIndent))
	// The document is always the whole tree, so --query does not apply.
	if err := printer.Print(context.Background(), root); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}

	if dest == "-" {
		_, err := stdoutFromContext(ctx).Write(buf.Bytes())
		return err
	}
	if err := writeDocument(dest, buf.Bytes()); err != nil {
		return err
	}
	logger.Debug("wrote document", "source", displayPath(source), "dest", dest, "format", format)

	if structuredOutputRequested() {
		return printStructured(ctx, map[string]interface{}{
			"status": "created",
			"input":  displayPath(source),
			"output": dest,
			"nodes":  root.Count(),
		})
	}
	if !quietFlag {
		fmt.Fprintf(stdoutFromContext(ctx), "Successfully created '%s'.\n", dest)
	}
	return nil
}

// writeDocument writes data to dest, creating missing directories.
func writeDocument(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// documentFormat resolves --as, falling back to the destination extension.
func documentFormat(as, dest string) (output.Format, error) {
	value := strings.ToLower(strings.TrimSpace(as))
	if value == "" {
		switch strings.ToLower(filepath.Ext(dest)) {
		case ".yaml", ".yml":
			value = "yaml"
		default:
			value = "json"
		}
	}
	switch value {
	case "json":
		return output.FormatJSON, nil
	case "yaml":
		return output.FormatYAML, nil
	default:
		return "", ValidationError{Field: "--as", Message: fmt.Sprintf("%q (expected json|yaml)", as)}
	}
}
