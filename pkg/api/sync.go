package api

import "github.com/iudanet/kosyncd/internal/models"

// UpdateProgressRequest represents a reading-position upload
type UpdateProgressRequest struct {
	Document   string  `json:"document"`
	Progress   string  `json:"progress"` // opaque position marker
	Percentage float64 `json:"percentage"`
	Device     string  `json:"device"`
	DeviceID   string  `json:"device_id,omitempty"`
}

// UpdateProgressResponse acknowledges a reading-position upload
type UpdateProgressResponse struct {
	Document  string `json:"document"`
	Timestamp int64  `json:"timestamp"` // server-assigned unix seconds
}

// UpdateAnnotationsRequest represents an annotation-set upload.
// BaseVersion enables optimistic locking: when set and the stored version
// differs, the server answers with a version conflict and the client must
// re-read and retry. Annotations and deletions ride the same record format
// the server stores, so they are the models types verbatim.
type UpdateAnnotationsRequest struct {
	Annotations []models.Annotation `json:"annotations"`
	Deleted     []string            `json:"deleted"`
	BaseVersion *uint64             `json:"base_version,omitempty"`
}

// UpdateAnnotationsResponse acknowledges a merged annotation upload
type UpdateAnnotationsResponse struct {
	Version   uint64 `json:"version"`
	Timestamp int64  `json:"timestamp"`
}

// HealthResponse represents the healthcheck payload
type HealthResponse struct {
	State string `json:"state"`
}
