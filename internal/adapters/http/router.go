// Package http is the gateway's inbound HTTP adapter: routes, the server
// lifecycle, and the handlers and middleware beneath it.
package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/http/dto"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/domain"
)

// NewRouter mounts the probes under /health and the gateway API under
// /api/v1. mws wrap every route, including unmatched ones, in the order
// given.
func NewRouter(gateway *handlers.GatewayHandler, probes *handlers.HealthHandler, mws ...middleware.Middleware) http.Handler {
	r := chi.NewRouter()
	for _, mw := range mws {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		dto.WriteErrorResponse(w, req, fmt.Errorf("no route for %s: %w", req.URL.Path, domain.ErrNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		dto.WriteErrorResponse(w, req, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, domain.ErrMethodNotAllowed))
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", probes.Liveness)
		r.Get("/ready", probes.Readiness)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/context", gateway.Context)
		r.Get("/aggregate", gateway.Aggregate)
		r.Post("/aggregate", gateway.Aggregate)
		r.HandleFunc("/proxy/*", gateway.Proxy)
	})

	return r
}
