package cmd

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates a stderr-style logger with short timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "famtree",
	})
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the command logger, or log.Default() when none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
			return l
		}
	}
	return log.Default()
}
