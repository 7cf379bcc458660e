package models

import "encoding/json"

// Annotation represents a single highlight, note or bookmark inside a
// document. The position fields (Page, Pos0, Pos1) are opaque to the server:
// depending on the document format readers send either a logical page number
// or an xpointer-style string, so they are carried as raw JSON and never
// interpreted.
type Annotation struct {
	Datetime        string          `json:"datetime"`                   // creation time "YYYY-MM-DD HH:MM:SS", also the tombstone key
	DatetimeUpdated string          `json:"datetime_updated,omitempty"` // last edit time, supersedes Datetime for recency
	Drawer          string          `json:"drawer,omitempty"`           // highlight style
	Color           string          `json:"color,omitempty"`
	Text            string          `json:"text,omitempty"` // quoted document text
	TextEdited      *bool           `json:"text_edited,omitempty"`
	Note            string          `json:"note,omitempty"`
	Chapter         string          `json:"chapter,omitempty"`
	PageNo          *int            `json:"pageno,omitempty"`
	Page            json.RawMessage `json:"page"` // page number or xpointer string
	Pos0            json.RawMessage `json:"pos0,omitempty"`
	Pos1            json.RawMessage `json:"pos1,omitempty"`
}

// PositionKey returns the identity of an annotation for merge purposes.
// Two annotations are "the same annotation" iff their (page, pos0, pos1)
// triple serializes identically. Datetime is deliberately not part of the
// key: it identifies tombstones, not annotations.
func (a *Annotation) PositionKey() string {
	return string(a.Page) + "|" + string(a.Pos0) + "|" + string(a.Pos1)
}

// EffectiveTime returns the timestamp used for recency comparisons during
// merge: DatetimeUpdated when present, Datetime otherwise. Values compare
// lexicographically, so clients must supply a sortable timestamp format.
func (a *Annotation) EffectiveTime() string {
	if a.DatetimeUpdated != "" {
		return a.DatetimeUpdated
	}
	return a.Datetime
}

// IsNewerThan reports whether a has a strictly greater effective time than
// other. Equal times are not newer: on a tie the existing entry wins.
func (a *Annotation) IsNewerThan(other *Annotation) bool {
	return a.EffectiveTime() > other.EffectiveTime()
}

// DocumentAnnotations is the versioned annotation state for one
// (user, document) pair.
type DocumentAnnotations struct {
	Version     uint64       `json:"version"` // increments by exactly 1 on every successful update
	Annotations []Annotation `json:"annotations"`
	Deleted     []string     `json:"deleted"`    // datetime tombstones, only ever grows
	UpdatedAt   int64        `json:"updated_at"` // unix seconds of the last successful merge
}

// NewDocumentAnnotations returns the zero state for a document that was
// never written: version 0 and empty sets. The slices are non-nil so they
// encode as JSON arrays, not null.
func NewDocumentAnnotations() *DocumentAnnotations {
	return &DocumentAnnotations{
		Annotations: []Annotation{},
		Deleted:     []string{},
	}
}
