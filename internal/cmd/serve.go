package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/famtree/internal/config"
	"github.com/salmonumbrella/famtree/internal/secrets"
	"github.com/salmonumbrella/famtree/internal/server"
)

var (
	serveAddr   string
	serveNoAuth bool
)

var serveCmd = &cobra.Command{
	Use:   "serve [input]",
	Short: "Serve the tree over HTTP",
	Long: `Serve parses the input once and exposes it over HTTP:

  GET  /health             liveness
  GET  /api/tree           the tree document
  GET  /api/search?q=name  name search
  GET  /api/flatten        flat rows
  GET  /api/stats          summary
  POST /api/parse          parse the request body and return the tree

When an API key is configured (FAMTREE_API_KEY or 'famtree auth set-key'),
every /api route requires "Authorization: Bearer <key>".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: 127.0.0.1:8080)")
	serveCmd.Flags().BoolVar(&serveNoAuth, "no-auth", false, "Do not require an API key even if one is stored")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	root, source, err := loadTree(cmd, args)
	if err != nil {
		return handleMissingInput(ctx, err)
	}
	opts, err := parseOptions(cmd)
	if err != nil {
		return err
	}

	apiKey := ""
	if !serveNoAuth {
		apiKey, err = resolveAPIKey()
		if err != nil {
			return fmt.Errorf("resolve API key (use --no-auth to serve without one): %w", err)
		}
	}

	addr := firstNonEmpty(serveAddr, envGet("FAMTREE_LISTEN_ADDR"), currentConfig().ListenAddr, config.DefaultListenAddr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewServer(root, apiKey, logger, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving", "addr", addr, "input", displayPath(source), "nodes", root.Count(), "auth", apiKey != "")
	if err := listenAndServe(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// resolveAPIKey returns the server key with precedence env > keyring.
// Only a missing keyring entry means "no key"; any other keyring failure is
// returned so the server never starts open by accident.
func resolveAPIKey() (string, error) {
	if v := strings.TrimSpace(envGet("FAMTREE_API_KEY")); v != "" {
		return v, nil
	}
	store, err := openSecretsStore()
	if err != nil {
		return "", fmt.Errorf("open keyring: %w", err)
	}
	secret, err := store.Get(secrets.ServerKeyName)
	if errors.Is(err, secrets.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return secret.Value, nil
}
