package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/kosyncd/internal/server/storage"
	"github.com/iudanet/kosyncd/internal/validation"
	"github.com/iudanet/kosyncd/pkg/api"
)

// ProgressHandler handles reading-position sync requests
type ProgressHandler struct {
	logger *slog.Logger
	sync   storage.SyncStorage
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(logger *slog.Logger, sync storage.SyncStorage) *ProgressHandler {
	return &ProgressHandler{
		logger: logger,
		sync:   sync,
	}
}

// Get handles GET /syncs/progress/{document}.
// A document that was never synced yields an empty object, not an error.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username, ok := GetUsername(ctx)
	if !ok {
		WriteError(h.logger, w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	document := r.PathValue("document")
	if err := validation.ValidateDocument(document); err != nil {
		h.logger.WarnContext(ctx, "invalid document", slog.Any("error", err))
		WriteError(h.logger, w, http.StatusForbidden, CodeDocumentMissing, "invalid document field")
		return
	}

	progress, err := h.sync.GetProgress(ctx, username, document)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get progress",
			slog.String("username", username),
			slog.String("document", document),
			slog.Any("error", err))
		WriteError(h.logger, w, http.StatusInternalServerError, CodeStorage, "storage unavailable")
		return
	}

	WriteJSON(h.logger, w, http.StatusOK, progress)
}

// Update handles PUT /syncs/progress.
// The record is replaced wholesale; last write wins.
func (h *ProgressHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username, ok := GetUsername(ctx)
	if !ok {
		WriteError(h.logger, w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	var req api.UpdateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode progress request", slog.Any("error", err))
		WriteError(h.logger, w, http.StatusForbidden, CodeInvalidRequest, "invalid request body")
		return
	}

	if err := validation.ValidateDocument(req.Document); err != nil {
		WriteError(h.logger, w, http.StatusForbidden, CodeDocumentMissing, "invalid document field")
		return
	}
	if req.Progress == "" || req.Device == "" {
		WriteError(h.logger, w, http.StatusForbidden, CodeInvalidRequest, "missing required fields")
		return
	}

	timestamp, err := h.sync.SetProgress(ctx, username, req.Document, req.Progress, req.Percentage, req.Device, req.DeviceID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to set progress",
			slog.String("username", username),
			slog.String("document", req.Document),
			slog.Any("error", err))
		WriteError(h.logger, w, http.StatusInternalServerError, CodeStorage, "storage unavailable")
		return
	}

	h.logger.InfoContext(ctx, "progress updated",
		slog.String("username", username),
		slog.String("document", req.Document),
		slog.String("device", req.Device))

	WriteJSON(h.logger, w, http.StatusOK, api.UpdateProgressResponse{
		Document:  req.Document,
		Timestamp: timestamp,
	})
}
