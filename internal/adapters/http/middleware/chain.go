package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/telemetry"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/platform/usercontext"
)

// Middleware is the shape every function in this package returns.
type Middleware = func(http.Handler) http.Handler

// Chain wraps a handler so that mws[0] sees the request first.
// Chain(a, b)(h) is a(b(h)).
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}

// Standard returns the gateway's inbound stack in its required order.
// UserContext sits inside Recovery so the binding is released while a panic
// unwinds, and outside Logging and Timeout so both see the bound metadata.
// A zero timeout leaves requests unbounded.
func Standard(store *usercontext.Store, metrics *telemetry.Metrics, logger *slog.Logger, timeout time.Duration) Middleware {
	mws := []Middleware{
		Recovery(logger),
		RequestID(),
		UserContext(store, logger),
		OpenTelemetry(metrics),
		Logging(logger),
	}
	if timeout > 0 {
		mws = append(mws, Timeout(timeout))
	}
	return Chain(mws...)
}
