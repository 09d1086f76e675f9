package analyzer

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

type ctxKey int

const loggerKey ctxKey = 0

// WithLogger returns a context carrying l. Analyses run with that context
// log through l instead of the analyzer's own logger.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// LoggerFromContext returns the logger attached to ctx, or log.Default().
func LoggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := loggerFrom(ctx); ok {
		return l
	}
	return log.Default()
}

func loggerFrom(ctx context.Context) (*log.Logger, bool) {
	l, ok := ctx.Value(loggerKey).(*log.Logger)
	return l, ok && l != nil
}

// NewLogger creates a timestamped logger writing to w at level.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "webcompat",
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
	})
}
