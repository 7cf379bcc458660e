package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/kosyncd/internal/server/storage"
	"github.com/iudanet/kosyncd/internal/validation"
	"github.com/iudanet/kosyncd/pkg/api"
)

// AnnotationsHandler handles versioned annotation sync requests
type AnnotationsHandler struct {
	logger *slog.Logger
	sync   storage.SyncStorage
}

// NewAnnotationsHandler creates a new annotations handler
func NewAnnotationsHandler(logger *slog.Logger, sync storage.SyncStorage) *AnnotationsHandler {
	return &AnnotationsHandler{
		logger: logger,
		sync:   sync,
	}
}

// Get handles GET /syncs/annotations/{document}.
// A document that was never synced yields version 0 with empty sets.
func (h *AnnotationsHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	doc, err := h.sync.GetAnnotations(ctx, username, document)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get annotations",
			slog.String("username", username),
			slog.String("document", document),
			slog.Any("error", err))
		WriteError(h.logger, w, http.StatusInternalServerError, CodeStorage, "storage unavailable")
		return
	}

	WriteJSON(h.logger, w, http.StatusOK, doc)
}

// Update handles PUT /syncs/annotations/{document}.
// Merges the uploaded sets into the stored state under optimistic locking;
// a stale base_version answers 409 and the client re-reads and retries.
func (h *AnnotationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username, ok := GetUsername(ctx)
	if !ok {
		WriteError(h.logger, w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	document := r.PathValue("document")
	if err := validation.ValidateDocument(document); err != nil {
		WriteError(h.logger, w, http.StatusForbidden, CodeDocumentMissing, "invalid document field")
		return
	}

	var req api.UpdateAnnotationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode annotations request", slog.Any("error", err))
		WriteError(h.logger, w, http.StatusForbidden, CodeInvalidRequest, "invalid request body")
		return
	}

	version, timestamp, err := h.sync.UpdateAnnotations(ctx, username, document, req.Annotations, req.Deleted, req.BaseVersion)
	if err != nil {
		if errors.Is(err, storage.ErrVersionConflict) {
			h.logger.InfoContext(ctx, "annotation version conflict",
				slog.String("username", username),
				slog.String("document", document))
			WriteError(h.logger, w, http.StatusConflict, CodeVersionConflict, "version conflict")
			return
		}
		h.logger.ErrorContext(ctx, "failed to update annotations",
			slog.String("username", username),
			slog.String("document", document),
			slog.Any("error", err))
		WriteError(h.logger, w, http.StatusInternalServerError, CodeStorage, "storage unavailable")
		return
	}

	h.logger.InfoContext(ctx, "annotations merged",
		slog.String("username", username),
		slog.String("document", document),
		slog.Uint64("version", version),
		slog.Int("uploaded", len(req.Annotations)),
		slog.Int("tombstones", len(req.Deleted)))

	WriteJSON(h.logger, w, http.StatusOK, api.UpdateAnnotationsResponse{
		Version:   version,
		Timestamp: timestamp,
	})
}
