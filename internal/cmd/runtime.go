package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/famtree/internal/config"
	"github.com/salmonumbrella/famtree/internal/tree"
)

// loadConfigFromFlag loads config from --config if provided, otherwise from default path.
func loadConfigFromFlag() (*config.Config, error) {
	if strings.TrimSpace(configFile) != "" {
		return config.Load(configFile)
	}
	return config.ReadConfig()
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if cmd.Flags().Changed(name) {
		return true
	}
	return cmd.InheritedFlags().Changed(name)
}

func formatConfigLoadError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load config: %w", err)
}

func currentConfig() *config.Config {
	if activeConfig == nil {
		return &config.Config{}
	}
	return activeConfig
}

// firstNonEmpty returns the first value that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// resolveInput picks the input path with precedence: argument > env > config > default.
func resolveInput(args []string) string {
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}
	return firstNonEmpty(arg, envGet("FAMTREE_INPUT"), currentConfig().Input, config.DefaultInput)
}

// resolveOutput picks the output path with precedence: flag > env > config > default.
func resolveOutput(flagValue string) string {
	return firstNonEmpty(flagValue, envGet("FAMTREE_OUTPUT"), currentConfig().Output, config.DefaultOutput)
}

// resolveIndent picks the JSON indent with precedence: flag > config > default.
func resolveIndent(cmd *cobra.Command, flagValue int) int {
	if flagChanged(cmd, "indent") {
		return flagValue
	}
	if currentConfig().Indent > 0 {
		return currentConfig().Indent
	}
	return config.DefaultIndent
}

// parseOptions builds parser options from flags, env and config.
func parseOptions(cmd *cobra.Command) ([]tree.Option, error) {
	modeStr := currentConfig().LevelMode
	if v := envGet("FAMTREE_LEVEL_MODE"); strings.TrimSpace(v) != "" {
		modeStr = v
	}
	if flagChanged(cmd, "level-mode") {
		modeStr = levelMode
	}
	mode, err := tree.ParseLevelMode(modeStr)
	if err != nil {
		return nil, ValidationError{Field: "level mode", Message: err.Error()}
	}

	width := currentConfig().IndentWidth
	if flagChanged(cmd, "indent-width") {
		width = indentWidth
	}
	if width < 0 {
		return nil, ValidationError{Field: "indent width", Message: strconv.Itoa(width) + " is negative"}
	}

	return []tree.Option{tree.WithLevelMode(mode), tree.WithIndentWidth(width)}, nil
}

// loadTree reads and parses the input named by args. A nil tree with a nil
// error means the input held no lines.
func loadTree(cmd *cobra.Command, args []string) (*tree.Node, string, error) {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	opts, err := parseOptions(cmd)
	if err != nil {
		return nil, "", err
	}

	source := resolveInput(args)
	data, err := readRaw(source, stdinFromContext(ctx))
	if err != nil {
		return nil, source, err
	}
	logger.Debug("read input", "source", source, "size", humanize.Bytes(uint64(len(data))))

	root := tree.Parse(string(data), opts...)
	logger.Debug("parsed tree", "nodes", humanize.Comma(int64(root.Count())))
	return root, source, nil
}

// handleMissingInput prints the missing-input message and swallows the
// error so the command ends without output and without failing.
func handleMissingInput(ctx context.Context, err error) error {
	var notFound InputNotFoundError
	if errors.As(err, &notFound) {
		fmt.Fprintln(stderrFromContext(ctx), notFound.Error())
		return nil
	}
	return err
}

func displayPath(path string) string {
	if path == "-" {
		return "stdin"
	}
	return filepath.Clean(path)
}
