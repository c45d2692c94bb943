package cmd

import (
	"context"

	"github.com/salmonumbrella/famtree/internal/output"
)

func structuredOutputRequested() bool {
	return output.IsStructured(GetOutputFormat())
}

func printStructured(ctx context.Context, data interface{}) error {
	printer := output.NewPrinter(stdoutFromContext(ctx), GetOutputFormat())
	return printer.Print(ctx, data)
}

func currentContext() context.Context {
	if rootCmd != nil && rootCmd.Context() != nil {
		return rootCmd.Context()
	}
	return context.Background()
}
