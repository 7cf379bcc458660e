package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/kosyncd/internal/models"
	"github.com/iudanet/kosyncd/internal/server/storage"
	"github.com/iudanet/kosyncd/pkg/api"
)

// authedRequest builds a request carrying an authenticated username,
// the way the auth middleware would.
func authedRequest(method, target, document, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if document != "" {
		req.SetPathValue("document", document)
	}
	ctx := context.WithValue(req.Context(), UsernameKey, "alice")
	return req.WithContext(ctx)
}

func TestProgressHandler_Get(t *testing.T) {
	pct := 0.42
	sync := &mockSyncStorage{
		progress: &models.Progress{
			Document:   "book.epub",
			Progress:   "/body/DocFragment[12]",
			Percentage: &pct,
			Device:     "kobo",
			DeviceID:   "dev-1",
			Timestamp:  1700000000,
		},
	}
	h := NewProgressHandler(setupTestLogger(), sync)

	w := httptest.NewRecorder()
	h.Get(w, authedRequest(http.MethodGet, "/syncs/progress/book.epub", "book.epub", ""))

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.Progress
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "book.epub", resp.Document)
	assert.Equal(t, "/body/DocFragment[12]", resp.Progress)
	require.NotNil(t, resp.Percentage)
	assert.InDelta(t, 0.42, *resp.Percentage, 1e-9)
}

func TestProgressHandler_Get_NeverSynced(t *testing.T) {
	h := NewProgressHandler(setupTestLogger(), &mockSyncStorage{})

	w := httptest.NewRecorder()
	h.Get(w, authedRequest(http.MethodGet, "/syncs/progress/unknown.epub", "unknown.epub", ""))

	require.Equal(t, http.StatusOK, w.Code)
	// Every field is omitempty, so the absent record serializes as {}.
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestProgressHandler_Get_Unauthorized(t *testing.T) {
	h := NewProgressHandler(setupTestLogger(), &mockSyncStorage{})

	req := httptest.NewRequest(http.MethodGet, "/syncs/progress/book.epub", nil)
	req.SetPathValue("document", "book.epub")
	w := httptest.NewRecorder()
	h.Get(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, CodeUnauthorized, resp.Code)
}

func TestProgressHandler_Get_InvalidDocument(t *testing.T) {
	h := NewProgressHandler(setupTestLogger(), &mockSyncStorage{})

	w := httptest.NewRecorder()
	h.Get(w, authedRequest(http.MethodGet, "/syncs/progress/a:b", "a:b", ""))

	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, CodeDocumentMissing, resp.Code)
}

func TestProgressHandler_Update(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   int
	}{
		{
			name:       "success",
			body:       `{"document":"book.epub","progress":"/body/DocFragment[3]","percentage":0.1,"device":"kobo","device_id":"dev-1"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid json",
			body:       `{broken`,
			wantStatus: http.StatusForbidden,
			wantCode:   CodeInvalidRequest,
		},
		{
			name:       "missing document",
			body:       `{"progress":"/body/DocFragment[3]","device":"kobo"}`,
			wantStatus: http.StatusForbidden,
			wantCode:   CodeDocumentMissing,
		},
		{
			name:       "missing progress",
			body:       `{"document":"book.epub","device":"kobo"}`,
			wantStatus: http.StatusForbidden,
			wantCode:   CodeInvalidRequest,
		},
		{
			name:       "missing device",
			body:       `{"document":"book.epub","progress":"/body/DocFragment[3]"}`,
			wantStatus: http.StatusForbidden,
			wantCode:   CodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewProgressHandler(setupTestLogger(), &mockSyncStorage{setTS: 1700000123})

			w := httptest.NewRecorder()
			h.Update(w, authedRequest(http.MethodPut, "/syncs/progress", "", tt.body))

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				var resp api.UpdateProgressResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "book.epub", resp.Document)
				assert.Equal(t, int64(1700000123), resp.Timestamp)
			} else {
				var resp api.ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, tt.wantCode, resp.Code)
			}
		})
	}
}

func TestProgressHandler_Update_StorageError(t *testing.T) {
	sync := &mockSyncStorage{err: errors.New("disk full")}
	h := NewProgressHandler(setupTestLogger(), sync)

	body := `{"document":"book.epub","progress":"/body/DocFragment[3]","device":"kobo"}`
	w := httptest.NewRecorder()
	h.Update(w, authedRequest(http.MethodPut, "/syncs/progress", "", body))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, CodeStorage, resp.Code)
}

func TestAnnotationsHandler_Get_NeverSynced(t *testing.T) {
	h := NewAnnotationsHandler(setupTestLogger(), &mockSyncStorage{})

	w := httptest.NewRecorder()
	h.Get(w, authedRequest(http.MethodGet, "/syncs/annotations/book.epub", "book.epub", ""))

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.DocumentAnnotations
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, uint64(0), resp.Version)
	assert.Empty(t, resp.Annotations)
	assert.Empty(t, resp.Deleted)
}

func TestAnnotationsHandler_Update(t *testing.T) {
	sync := &mockSyncStorage{version: 3, updateTS: 1700000456}
	h := NewAnnotationsHandler(setupTestLogger(), sync)

	body := `{
		"annotations": [
			{"datetime":"2024-01-15 10:00:00","page":12,"pos0":"/a","pos1":"/b","text":"highlight"}
		],
		"deleted": ["2024-01-14 09:30:00"],
		"base_version": 2
	}`
	w := httptest.NewRecorder()
	h.Update(w, authedRequest(http.MethodPut, "/syncs/annotations/book.epub", "book.epub", body))

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.UpdateAnnotationsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, uint64(3), resp.Version)
	assert.Equal(t, int64(1700000456), resp.Timestamp)

	// The uploaded sets must reach storage untouched.
	require.Len(t, sync.gotAnnotations, 1)
	assert.Equal(t, "highlight", sync.gotAnnotations[0].Text)
	assert.Equal(t, []string{"2024-01-14 09:30:00"}, sync.gotDeleted)
	require.NotNil(t, sync.gotBaseVersion)
	assert.Equal(t, uint64(2), *sync.gotBaseVersion)
}

func TestAnnotationsHandler_Update_VersionConflict(t *testing.T) {
	sync := &mockSyncStorage{err: storage.ErrVersionConflict}
	h := NewAnnotationsHandler(setupTestLogger(), sync)

	body := `{"annotations":[],"deleted":[],"base_version":1}`
	w := httptest.NewRecorder()
	h.Update(w, authedRequest(http.MethodPut, "/syncs/annotations/book.epub", "book.epub", body))

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, CodeVersionConflict, resp.Code)
}

func TestAnnotationsHandler_Update_InvalidDocument(t *testing.T) {
	h := NewAnnotationsHandler(setupTestLogger(), &mockSyncStorage{})

	w := httptest.NewRecorder()
	h.Update(w, authedRequest(http.MethodPut, "/syncs/annotations/a:b", "a:b", `{}`))

	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, CodeDocumentMissing, resp.Code)
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(setupTestLogger())

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"state":"OK"}`, w.Body.String())
}
