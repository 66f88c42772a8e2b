package middleware

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/propagation"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
)

// UserContext returns middleware that captures the tmx-* request headers into
// a fresh binding on the request context and releases the binding when the
// handler chain returns, whether it returns normally or by panic.
//
// A present correlation id is echoed on the response. Capture never rejects
// a request: missing headers simply leave the corresponding fields absent.
//
// UserContext must run inside Recovery so that the deferred release happens
// while a panic unwinds, and outside Logging so that the request logger can
// be enriched with the captured ids.
func UserContext(store *usercontext.Store, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, md := store.Capture(r.Context(), propagation.HeaderCarrier(r.Header))
			defer store.Unbind(ctx)

			if id, ok := md.CorrelationID(); ok {
				w.Header().Set(usercontext.HeaderCorrelationID, id)
				logger.DebugContext(ctx, "captured correlation id",
					slog.String("correlation_id", id),
					slog.String("path", r.URL.Path),
				)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
