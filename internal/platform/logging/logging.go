// Package logging builds the gateway's slog loggers and carries the
// request-scoped logger through context.Context.
//
// Handlers and clients log through logging.FromContext(ctx) so that lines
// emitted while serving a request carry request_id, correlation_id, user_id
// and org_id. Error records name the operation and include the full chain:
//
//	logging.FromContext(ctx).ErrorContext(ctx, "upstream call failed",
//	    slog.String("operation", "gateway.Forward"),
//	    slog.String("path", path),
//	    slog.Any("error", err),
//	)
//
// The auth token never appears in logs; the masq-based ReplaceAttr installed
// by New scrubs it even if a call site attaches it by mistake.
package logging

import (
	"context"
	"io"
	"log/slog"
)

type contextKey struct{}

// New returns a logger writing to w. level is one of debug, info, warn or
// error (case-insensitive, default info). format "text" selects the text
// handler; anything else gets JSON. Debug level adds source locations.
func New(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   lvl <= slog.LevelDebug,
		ReplaceAttr: newRedactAttr(),
	}

	if format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the request logger, or slog.Default() outside a request.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
