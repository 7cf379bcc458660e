package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/kosyncd/pkg/api"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	logger *slog.Logger
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		logger: logger,
	}
}

// Health handles GET /healthcheck
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(h.logger, w, http.StatusOK, api.HealthResponse{State: "OK"})
}
