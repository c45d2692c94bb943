package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/famtree/internal/config"
	"github.com/salmonumbrella/famtree/internal/output"
	"github.com/salmonumbrella/famtree/internal/tree"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration stored in ~/.config/famtree/config.yaml.

A path ending in .toml passed with --config is read and written as TOML.
You can view, set, or unset keys such as input, output, indent, and level_mode.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfigFromFlag()
		if err != nil {
			return formatConfigLoadError(err)
		}
		if structuredOutputRequested() {
			return printStructured(ctx, configOutput(cfg))
		}

		out := stdoutFromContext(ctx)
		fmt.Fprintln(out, "Config:")
		values := configOutput(cfg)
		for _, key := range supportedConfigKeys() {
			fmt.Fprintf(out, "  %s: %v\n", key, values[key])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Unset a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported configuration keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		keys := supportedConfigKeys()
		sort.Strings(keys)

		if structuredOutputRequested() {
			return printStructured(ctx, keys)
		}

		out := stdoutFromContext(ctx)
		fmt.Fprintln(out, "Supported keys:")
		for _, key := range keys {
			fmt.Fprintf(out, "  %s\n", key)
		}
		return nil
	},
}

func configPath() (string, error) {
	if strings.TrimSpace(configFile) != "" {
		return configFile, nil
	}
	return config.DefaultConfigPath()
}

func supportedConfigKeys() []string {
	return []string{
		"input",
		"output",
		"output_format",
		"indent",
		"level_mode",
		"indent_width",
		"listen_addr",
		"keyring_backend",
	}
}

func applyConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "input":
		cfg.Input = value
	case "output":
		cfg.Output = value
	case "output_format":
		if _, err := output.ParseFormat(value); err != nil {
			return ValidationError{Field: key, Message: err.Error()}
		}
		cfg.OutputFormat = value
	case "indent":
		n, err := parseNonNegative(key, value)
		if err != nil {
			return err
		}
		cfg.Indent = n
	case "level_mode":
		if _, err := tree.ParseLevelMode(value); err != nil {
			return ValidationError{Field: key, Message: err.Error()}
		}
		cfg.LevelMode = value
	case "indent_width":
		n, err := parseNonNegative(key, value)
		if err != nil {
			return err
		}
		cfg.IndentWidth = n
	case "listen_addr":
		cfg.ListenAddr = value
	case "keyring_backend":
		cfg.KeyringBackend = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func clearConfigValue(cfg *config.Config, key string) error {
	switch key {
	case "input":
		cfg.Input = ""
	case "output":
		cfg.Output = ""
	case "output_format":
		cfg.OutputFormat = ""
	case "indent":
		cfg.Indent = 0
	case "level_mode":
		cfg.LevelMode = ""
	case "indent_width":
		cfg.IndentWidth = 0
	case "listen_addr":
		cfg.ListenAddr = ""
	case "keyring_backend":
		cfg.KeyringBackend = ""
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func parseNonNegative(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("%q is not a non-negative integer", value)}
	}
	return n, nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configKeysCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	key := strings.ToLower(strings.TrimSpace(args[0]))
	value := strings.TrimSpace(args[1])

	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}

	if err := applyConfigValue(cfg, key, value); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	if structuredOutputRequested() {
		return printStructured(ctx, map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}

	fmt.Fprintf(stdoutFromContext(ctx), "Updated %s\n", key)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	key := strings.ToLower(strings.TrimSpace(args[0]))

	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}

	if err := clearConfigValue(cfg, key); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	if structuredOutputRequested() {
		return printStructured(ctx, map[string]string{
			"status": "unset",
			"key":    key,
		})
	}

	fmt.Fprintf(stdoutFromContext(ctx), "Unset %s\n", key)
	return nil
}

func configOutput(cfg *config.Config) map[string]interface{} {
	return map[string]interface{}{
		"input":           cfg.Input,
		"output":          cfg.Output,
		"output_format":   cfg.OutputFormat,
		"indent":          cfg.Indent,
		"level_mode":      cfg.LevelMode,
		"indent_width":    cfg.IndentWidth,
		"listen_addr":     cfg.ListenAddr,
		"keyring_backend": cfg.KeyringBackend,
	}
}
