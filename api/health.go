package api

import (
	"net/http"

	"github.com/siftlabs/sift/internal/knowledge"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	store *knowledge.Store
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(store *knowledge.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// RegisterRoutes registers the probe endpoints.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /ready", h.handleReady)
}

// handleHealth reports process liveness only; it never touches dependencies.
func (h *HealthHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports whether the database answers a ping.
func (h *HealthHandler) handleReady(w http.ResponseWriter, r *http.Request) {
	if !h.store.Healthy(r.Context()) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
