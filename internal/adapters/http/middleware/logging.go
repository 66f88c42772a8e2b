package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/logging"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
)

// loggedFields are the bound metadata fields attached to every request log
// line. The auth token is deliberately absent.
var loggedFields = [...]usercontext.Field{usercontext.CorrelationID, usercontext.UserID, usercontext.OrgID}

// Logging brackets each request with start and completion records and puts
// a request-scoped logger into the context for handlers and clients to use
// via logging.FromContext. Only metadata fields the caller actually sent are
// attached. Completion is logged at warn for 4xx and error for 5xx.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			reqLogger := logger.With(requestAttrs(ctx)...)
			ctx = logging.WithLogger(ctx, reqLogger)

			reqLogger.InfoContext(ctx, "request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			if reqLogger.Enabled(ctx, slog.LevelDebug) {
				reqLogger.LogAttrs(ctx, slog.LevelDebug, "request headers", RedactHeaders(r.Header)...)
			}

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			reqLogger.LogAttrs(ctx, completionLevel(rw.status), "request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rw.status),
				slog.Int64("bytes", rw.bytes),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

func requestAttrs(ctx context.Context) []any {
	attrs := []any{slog.String("request_id", RequestIDFromContext(ctx))}
	vals := usercontext.ValuesFromContext(ctx)
	for _, f := range loggedFields {
		if v, ok := vals.Get(f); ok {
			attrs = append(attrs, slog.String(f.String(), v))
		}
	}
	return attrs
}

func completionLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
