package models

// Progress is the single authoritative reading position for one
// (user, document) pair. Every write replaces the record wholesale; there is
// no merge. All fields are optional on the wire so a document that was never
// synced serializes as an empty object.
type Progress struct {
	Document   string   `json:"document,omitempty"`
	Progress   string   `json:"progress,omitempty"` // opaque position marker, e.g. an xpointer
	Percentage *float64 `json:"percentage,omitempty"`
	Device     string   `json:"device,omitempty"`
	DeviceID   string   `json:"device_id,omitempty"`
	Timestamp  int64    `json:"timestamp,omitempty"` // server-assigned unix seconds
}
