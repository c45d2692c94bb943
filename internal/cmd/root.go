package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/famtree/internal/config"
	"github.com/salmonumbrella/famtree/internal/output"
)

var (
	// Version is set at build time
	version = "dev"
	// Commit is set at build time
	commit = "none"
	// Date is set at build time
	date = "unknown"
)

// SetVersionInfo sets the version information from build flags
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	applyVersionInfo()
}

func applyVersionInfo() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("famtree version %s (commit: %s, built: %s)\n", version, commit, date))
}

// Global flags
var (
	outputFmt   string
	outputType  output.Format
	debug       bool
	configFile  string
	queryExpr   string
	queryFile   string
	errorFmt    string
	quietFlag   bool
	resultLimit int
	resultSort  string
	resultDesc  bool
	levelMode   string
	indentWidth int
)

// activeConfig is the config loaded for the running command.
var activeConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "famtree",
	Short: "Convert ASCII family trees to JSON",
	Long: `famtree reads a family tree drawn with |, ` + "`" + ` and - connectors and turns it
into nested JSON, one object per person with an optional "children" list.

  Hans Gyllencreutz
  |-- Nils Hansson
  |   ` + "`" + `-- Erik Nilsson
  |-- Per Hansson

Environment Variables:
  FAMTREE_INPUT        Default input file
  FAMTREE_OUTPUT       Default output file for convert
  FAMTREE_LEVEL_MODE   Level inference (count|column)
  FAMTREE_LISTEN_ADDR  Address for serve
  FAMTREE_API_KEY      API key required by serve`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceErrors = true

		skipConfigLoad := cmd.Name() == "config" || (cmd.Parent() != nil && cmd.Parent().Name() == "config")
		activeConfig = &config.Config{}
		if !skipConfigLoad {
			loadedCfg, err := loadConfigFromFlag()
			if err != nil {
				return formatConfigLoadError(err)
			}
			activeConfig = loadedCfg
		}

		// Output format selection: --output > config > non-TTY json > text
		formatStr := outputFmt
		if !flagChanged(cmd, "output") && !flagChanged(cmd, "format") && strings.TrimSpace(activeConfig.OutputFormat) != "" {
			formatStr = strings.TrimSpace(activeConfig.OutputFormat)
		} else if !flagChanged(cmd, "output") && !flagChanged(cmd, "format") && !isTerminal(cmd.OutOrStdout()) {
			formatStr = "json"
		}
		format, err := output.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		outputType = format
		outputFmt = string(format)

		if queryExpr != "" && queryFile != "" {
			return fmt.Errorf("use only one of --query or --query-file")
		}
		if queryFile != "" {
			loaded, err := readInputSource(queryFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			queryExpr = loaded
		}

		level := charmlog.InfoLevel
		switch {
		case debug:
			level = charmlog.DebugLevel
		case quietFlag:
			level = charmlog.ErrorLevel
		}

		ctx := cmd.Context()
		ctx = withIO(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		ctx = withLogger(ctx, newLogger(cmd.ErrOrStderr(), level))
		ctx = output.WithFormat(ctx, outputType)
		ctx = output.WithQuery(ctx, queryExpr)
		ctx = output.WithLimit(ctx, resultLimit)
		ctx = output.WithSort(ctx, resultSort, resultDesc)
		ctx = output.WithQuiet(ctx, quietFlag)
		ctx = withErrorFormat(ctx, errorFmt)
		cmd.SetContext(ctx)
		// Execute reports errors through the root's context.
		cmd.Root().SetContext(ctx)

		if err := validateErrorFormat(errorFmt); err != nil {
			return err
		}
		if effectiveErrorFormat(ctx) != "text" {
			cmd.SilenceUsage = true
		}
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printCommandError(currentContext(), err)
		return err
	}
	return nil
}

// GetOutputFormat returns the configured output format
func GetOutputFormat() output.Format {
	if outputType != "" {
		return outputType
	}
	parsed, err := output.ParseFormat(outputFmt)
	if err != nil {
		return output.FormatText
	}
	return parsed
}

func init() {
	applyVersionInfo()

	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format (text|json|ndjson|table|yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFmt, "format", "text", "Alias for --output")
	rootCmd.PersistentFlags().StringVar(&queryExpr, "query", "", "jq expression to filter JSON output")
	rootCmd.PersistentFlags().StringVar(&queryFile, "query-file", "", "Read jq expression from file (use - for stdin)")
	rootCmd.PersistentFlags().StringVar(&errorFmt, "error-format", "auto", "Error output format (auto|text|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().IntVar(&resultLimit, "result-limit", 0, "Limit number of results in output (0 = unlimited)")
	rootCmd.PersistentFlags().StringVar(&resultSort, "result-sort-by", "", "Sort output results by field")
	rootCmd.PersistentFlags().BoolVar(&resultDesc, "result-desc", false, "Sort output results in descending order")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ~/.config/famtree/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&levelMode, "level-mode", "", "How connector prefixes map to depth (count|column)")
	rootCmd.PersistentFlags().IntVar(&indentWidth, "indent-width", 0, "Columns per generation for --level-mode column (default 4)")
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
