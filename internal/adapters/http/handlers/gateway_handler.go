// Package handlers provides HTTP request handlers for the gateway's endpoints.
package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/http/dto"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/domain"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/ports"
)

// defaultMaxBodyBytes bounds proxied request bodies when no limit is configured.
const defaultMaxBodyBytes = 1 << 20

// GatewayHandler handles the proxy, aggregate, and context endpoints.
type GatewayHandler struct {
	svc          ports.GatewayService
	maxBodyBytes int64
}

// NewGatewayHandler creates a GatewayHandler. maxBodyBytes bounds proxied
// request bodies; values < 1 use 1 MB.
func NewGatewayHandler(svc ports.GatewayService, maxBodyBytes int64) *GatewayHandler {
	if maxBodyBytes < 1 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &GatewayHandler{svc: svc, maxBodyBytes: maxBodyBytes}
}

// Proxy handles ANY /api/v1/proxy/*. The remainder of the path, the query,
// end-to-end headers, and the body are relayed to the upstream, and the
// upstream's status, headers, and body are written back.
func (h *GatewayHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		if tooLarge(err) {
			dto.WriteErrorResponse(w, r, fmt.Errorf("request body exceeds %d bytes: %w", h.maxBodyBytes, domain.ErrTooLarge))
			return
		}
		dto.WriteErrorResponse(w, r, &domain.ValidationError{
			Fields: map[string]string{"body": "unreadable"},
		})
		return
	}

	resp, err := h.svc.Forward(r.Context(), &domain.ProxyRequest{
		Method:   r.Method,
		Path:     "/" + chi.URLParam(r, "*"),
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
		Body:     body,
	})
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	for k, vs := range resp.Header {
		if http.CanonicalHeaderKey(k) == "Content-Length" {
			continue
		}
		w.Header()[k] = vs
	}
	w.WriteHeader(resp.StatusCode)
	if r.Method != http.MethodHead {
		_, _ = w.Write(resp.Body)
	}
}

// Aggregate handles GET /api/v1/aggregate?path=/a&path=/b and
// POST /api/v1/aggregate with a JSON body of paths.
func (h *GatewayHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	var paths []string
	if r.Method == http.MethodPost {
		var req dto.AggregateRequest
		if !readRequest(w, r, h.maxBodyBytes, &req) {
			return
		}
		paths = req.Paths
	} else {
		paths = dto.AggregatePathsFromQuery(r.URL.Query())
	}

	res, err := h.svc.Aggregate(r.Context(), paths)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToAggregateResponse(res))
}

// Context handles GET /api/v1/context. It reports the metadata captured
// from the inbound request; the auth token is reported by presence only.
func (h *GatewayHandler) Context(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Describe(r.Context())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToContextResponse(v))
}
