package cmd

import (
	"context"
	"io"
	"os"
)

type ioKey struct{}

// streams are the command's stdin/stdout/stderr, swapped in tests.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func withIO(ctx context.Context, in io.Reader, out, err io.Writer) context.Context {
	return context.WithValue(ctx, ioKey{}, streams{in: in, out: out, err: err})
}

func streamsFromContext(ctx context.Context) streams {
	if ctx != nil {
		if v, ok := ctx.Value(ioKey{}).(streams); ok {
			return v
		}
	}
	return streams{}
}

func stdinFromContext(ctx context.Context) io.Reader {
	if s := streamsFromContext(ctx); s.in != nil {
		return s.in
	}
	return os.Stdin
}

func stdoutFromContext(ctx context.Context) io.Writer {
	if s := streamsFromContext(ctx); s.out != nil {
		return s.out
	}
	return os.Stdout
}

func stderrFromContext(ctx context.Context) io.Writer {
	if s := streamsFromContext(ctx); s.err != nil {
		return s.err
	}
	return os.Stderr
}
