package handlers

import (
	"net/http"

	"github.com/jsamuelsen11/tmx-edge-gateway/internal/adapters/http/dto"
	"github.com/jsamuelsen11/tmx-edge-gateway/internal/ports"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	registry ports.HealthRegistry
}

func NewHealthHandler(registry ports.HealthRegistry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// Liveness reports that the process is up. It never consults dependencies.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.LivenessResponse{Status: dto.HealthOK})
}

// Readiness runs every registered check and answers 503 if any fails.
// Failing checks are reported by name with their error text.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	resp := dto.ToReadinessResponse(h.registry.CheckAll(r.Context()))

	code := http.StatusOK
	if resp.Status != dto.HealthReady {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, resp)
}
