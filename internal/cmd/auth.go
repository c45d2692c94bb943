package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/famtree/internal/secrets"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the API key for famtree serve",
	Long: `Manage the API key that 'famtree serve' requires on /api routes.

The key is stored in your system keychain (macOS Keychain, Windows Credential
Manager, Secret Service, or an encrypted file on Linux). FAMTREE_API_KEY
overrides the stored key.

Examples:
  famtree auth set-key            # prompt for a key
  famtree auth set-key --generate # create a random key
  famtree auth status
  famtree auth clear-key`,
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Store the server API key",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSetKey,
}

var clearKeyCmd = &cobra.Command{
	Use:   "clear-key",
	Short: "Remove the stored server API key",
	Args:  cobra.NoArgs,
	RunE:  runClearKey,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a server API key is configured",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var generateKey bool

func init() {
	authCmd.AddCommand(setKeyCmd)
	authCmd.AddCommand(clearKeyCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)

	setKeyCmd.Flags().BoolVar(&generateKey, "generate", false, "Generate a random key and print it once")
}

func runSetKey(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var key string
	generated := false
	switch {
	case len(args) == 1:
		key = strings.TrimSpace(args[0])
	case generateKey:
		key = uuid.NewString()
		generated = true
	default:
		var err error
		key, err = promptSecret(ctx, "Enter API key: ")
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
	}
	if key == "" {
		return ValidationError{Field: "key", Message: "must not be empty"}
	}

	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	if err := store.Set(secrets.ServerKeyName, secrets.Secret{Value: key, CreatedAt: time.Now().UTC()}); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}

	shown := maskToken(key)
	if generated {
		shown = key
	}
	if structuredOutputRequested() {
		return printStructured(ctx, map[string]interface{}{
			"status": "stored",
			"key":    shown,
		})
	}

	out := stdoutFromContext(ctx)
	fmt.Fprintln(out, "API key stored.")
	if generated {
		fmt.Fprintf(out, "Key: %s\n", key)
	}
	return nil
}

func runClearKey(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	if err := store.Delete(secrets.ServerKeyName); err != nil && !errors.Is(err, secrets.ErrNotFound) {
		return fmt.Errorf("failed to remove key: %w", err)
	}

	if structuredOutputRequested() {
		return printStructured(ctx, map[string]interface{}{"status": "cleared"})
	}
	fmt.Fprintln(stdoutFromContext(ctx), "API key removed.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	source := "none"
	var createdAt time.Time
	if strings.TrimSpace(envGet("FAMTREE_API_KEY")) != "" {
		source = "env"
	} else {
		store, err := openSecretsStore()
		if err != nil {
			return fmt.Errorf("failed to open credential store: %w", err)
		}
		secret, err := store.Get(secrets.ServerKeyName)
		switch {
		case err == nil:
			source = "keyring"
			createdAt = secret.CreatedAt
		case !errors.Is(err, secrets.ErrNotFound):
			return fmt.Errorf("failed to read key: %w", err)
		}
	}

	backend := secrets.ResolveKeyringBackendInfo()
	if structuredOutputRequested() {
		result := map[string]interface{}{
			"configured":      source != "none",
			"source":          source,
			"keyring_backend": backend.Value,
		}
		if !createdAt.IsZero() {
			result["created_at"] = createdAt.Format(time.RFC3339)
		}
		return printStructured(ctx, result)
	}

	out := stdoutFromContext(ctx)
	if source == "none" {
		fmt.Fprintln(out, "Status: no API key (serve accepts all requests)")
		fmt.Fprintln(out, "\nRun 'famtree auth set-key' to require one.")
		return nil
	}
	fmt.Fprintf(out, "Status: API key configured (%s)\n", source)
	if !createdAt.IsZero() {
		fmt.Fprintf(out, "Stored: %s\n", createdAt.Format(time.RFC3339))
	}
	fmt.Fprintf(out, "Keyring backend: %s (%s)\n", backend.Value, backend.Source)
	return nil
}

// promptSecret prompts for a secret input (no echo)
func promptSecret(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(stderrFromContext(ctx), prompt)

	in := stdinFromContext(ctx)
	if file, ok := in.(*os.File); ok {
		if term.IsTerminal(int(file.Fd())) {
			password, err := term.ReadPassword(int(file.Fd()))
			fmt.Fprintln(stderrFromContext(ctx))
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(string(password)), nil
		}
	}

	// Piped input may end without a newline.
	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// maskToken masks a token for display, showing only first and last 4 characters
func maskToken(token string) string {
	if len(token) <= 12 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
