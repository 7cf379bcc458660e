package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/kosyncd/pkg/api"
)

// Protocol error codes carried in the api.ErrorResponse envelope. The
// numbers and their HTTP statuses are fixed by the deployed client base.
const (
	CodeStorage         = 2000 // storage or serialization failure
	CodeUnauthorized    = 2001
	CodeUserExists      = 2002
	CodeInvalidRequest  = 2003
	CodeDocumentMissing = 2004
	CodeVersionConflict = 2005
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(logger *slog.Logger, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// WriteError writes the protocol error envelope
func WriteError(logger *slog.Logger, w http.ResponseWriter, statusCode, code int, message string) {
	WriteJSON(logger, w, statusCode, api.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
