package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/famtree/internal/output"
)

type errorFormatKey struct{}

// withErrorFormat records the --error-format value, normalized to lower case.
func withErrorFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, errorFormatKey{}, strings.ToLower(strings.TrimSpace(format)))
}

func errorFormatFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(errorFormatKey{}).(string); ok {
		return v
	}
	return ""
}

func validateErrorFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto", "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("invalid --error-format %q (expected auto|text|json|yaml)", format)
	}
}

// effectiveErrorFormat resolves "auto" against the output format so a
// pipeline reading -o json also gets JSON errors.
func effectiveErrorFormat(ctx context.Context) string {
	format := errorFormatFromContext(ctx)
	if format == "" || format == "auto" {
		switch output.FormatFromContext(ctx) {
		case output.FormatJSON, output.FormatNDJSON:
			return "json"
		case output.FormatYAML:
			return "yaml"
		default:
			return "text"
		}
	}
	return format
}

func printCommandError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	switch effectiveErrorFormat(ctx) {
	case "json":
		enc := json.NewEncoder(stderrFromContext(ctx))
		enc.SetEscapeHTML(false)
		_ = enc.Encode(buildErrorEnvelope(err))
		return
	case "yaml":
		enc := yaml.NewEncoder(stderrFromContext(ctx))
		enc.SetIndent(2)
		_ = enc.Encode(buildErrorEnvelope(err))
		_ = enc.Close()
		return
	}

	_, _ = fmt.Fprintln(stderrFromContext(ctx), err)
}

func buildErrorEnvelope(err error) map[string]interface{} {
	errMap := map[string]interface{}{
		"message":  err.Error(),
		"category": "system",
		"type":     "error",
	}

	var inputErr InputNotFoundError
	if errors.As(err, &inputErr) {
		errMap["type"] = "input_not_found"
		errMap["category"] = "user"
		errMap["path"] = inputErr.Path
	}

	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		errMap["type"] = "validation"
		errMap["category"] = "user"
		if validationErr.Field != "" {
			errMap["field"] = validationErr.Field
		}
	}

	return map[string]interface{}{"error": errMap}
}
