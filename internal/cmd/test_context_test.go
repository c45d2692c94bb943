package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/salmonumbrella/famtree/internal/output"
)

func withTestContext(t *testing.T, format output.Format) (*bytes.Buffer, *bytes.Buffer, func()) {
	t.Helper()
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}

	ctx := withIO(context.Background(), in, out, errBuf)
	ctx = output.WithFormat(ctx, format)
	ctx = output.WithQuiet(ctx, true)
	rootCmd.SetContext(ctx)

	prevType := outputType
	prevFmt := outputFmt
	outputType = format
	outputFmt = string(format)

	return out, errBuf, func() {
		outputType = prevType
		outputFmt = prevFmt
		rootCmd.SetContext(context.Background())
	}
}
