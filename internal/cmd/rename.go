package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/famtree/internal/output"
	"github.com/salmonumbrella/famtree/internal/tree"
)

var renameIndent int

var renameCmd = &cobra.Command{
	Use:   "rename <row-id> <name> [document]",
	Short: "Rename a person in a written document",
	Long: `Rename edits a document written by convert. The person is picked by the
row id that 'famtree flatten' prints; the document is rewritten in place
with the same format and indent as convert.

The document defaults to the convert output (data/family.json). Ids are
derived from names, so the renamed person and their descendants get new
ids; the new id is printed.`,
	Example: `  famtree flatten
  famtree rename <id> "Per Hansson Gyllencreutz"
  famtree rename <id> "Per Hansson" data/family.yaml`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runRename,
}

func init() {
	renameCmd.Flags().IntVar(&renameIndent, "indent", 4, "Spaces per JSON indent level")
	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	id := strings.TrimSpace(args[0])
	name := strings.TrimSpace(args[1])
	if name == "" {
		return ValidationError{Field: "name", Message: "must not be empty"}
	}
	if strings.ContainsAny(name, "\r\n") {
		return ValidationError{Field: "name", Message: "must be a single line"}
	}

	var flagDoc string
	if len(args) == 3 {
		flagDoc = args[2]
	}
	dest := resolveOutput(flagDoc)
	if dest == "-" {
		return ValidationError{Field: "document", Message: "rename edits a file; stdin is not supported"}
	}
	format, err := documentFormat("", dest)
	if err != nil {
		return err
	}

	root, err := readDocument(dest, format)
	if err != nil {
		return handleMissingInput(ctx, err)
	}

	var oldName string
	if n := tree.Find(root, id); n != nil {
		oldName = n.Name
	}
	row, ok := tree.Rename(root, id, name)
	if !ok {
		return ValidationError{Field: "row id", Message: fmt.Sprintf("no person with id %q in %s", id, dest)}
	}

	var buf bytes.Buffer
	printer := output.NewPrinter(&buf, format)
	printer.SetIndent(resolveIndent(cmd, renameIndent))
	if err := printer.Print(context.Background(), root); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	if err := writeDocument(dest, buf.Bytes()); err != nil {
		return err
	}
	logger.Debug("renamed", "document", dest, "from", oldName, "to", name, "id", row.ID)

	if structuredOutputRequested() {
		return printStructured(ctx, map[string]interface{}{
			"status":      "renamed",
			"document":    dest,
			"previous_id": id,
			"id":          row.ID,
			"old_name":    oldName,
			"name":        row.Name,
		})
	}
	if !quietFlag {
		fmt.Fprintf(stdoutFromContext(ctx), "Renamed '%s' to '%s' in '%s' (id %s).\n", oldName, row.Name, dest, row.ID)
	}
	return nil
}

// readDocument decodes a document written by convert. An empty document
// ({} or blank) yields a nil tree.
func readDocument(path string, format output.Format) (*tree.Node, error) {
	data, err := readRaw(path, nil)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var root tree.Node
	switch format {
	case output.FormatYAML:
		err = yaml.Unmarshal(data, &root)
	default:
		err = json.Unmarshal(data, &root)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if root.Name == "" && len(root.Children) == 0 {
		return nil, nil
	}
	return &root, nil
}
