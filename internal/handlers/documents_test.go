package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"knowledge-api/internal/storage"
)

type fakeCataloger struct {
	lastLimit  int
	lastOffset int
	lastFilter string
	docs       []*storage.DocumentRecord
	err        error
}

func (f *fakeCataloger) List(ctx context.Context, limit, offset int, titleContains string) ([]*storage.DocumentRecord, error) {
	f.lastLimit = limit
	f.lastOffset = offset
	f.lastFilter = titleContains
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func TestDocumentsHandler_List(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	catalog := &fakeCataloger{docs: []*storage.DocumentRecord{
		{
			ID:        "doc-1",
			Title:     "Manual",
			MimeType:  "application/pdf",
			Language:  "es",
			Status:    storage.StatusProcessed,
			Version:   2,
			CreatedAt: created,
			UpdatedAt: created,
		},
	}}
	handler := NewDocumentsHandler(catalog)

	req := httptest.NewRequest(http.MethodGet, "/api/knowledge/documents?limit=10&offset=20&q=man", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if catalog.lastLimit != 10 || catalog.lastOffset != 20 || catalog.lastFilter != "man" {
		t.Errorf("catalog called with limit=%d offset=%d q=%q", catalog.lastLimit, catalog.lastOffset, catalog.lastFilter)
	}

	var resp DocumentsListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("Success = false, want true")
	}
	if len(resp.Documents) != 1 {
		t.Fatalf("got %d documents, want 1", len(resp.Documents))
	}
	doc := resp.Documents[0]
	if doc.ID != "doc-1" || doc.Version != 2 || doc.Status != storage.StatusProcessed {
		t.Errorf("document = %+v", doc)
	}
	if doc.CreatedAt != "2026-08-01T12:00:00Z" {
		t.Errorf("CreatedAt = %q", doc.CreatedAt)
	}
	if doc.Tags == nil {
		t.Error("nil tags should encode as an empty array")
	}
}

func TestDocumentsHandler_BadParamsFallBack(t *testing.T) {
	catalog := &fakeCataloger{}
	handler := NewDocumentsHandler(catalog)

	req := httptest.NewRequest(http.MethodGet, "/api/knowledge/documents?limit=abc&offset=-", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if catalog.lastLimit != 0 || catalog.lastOffset != 0 {
		t.Errorf("unparseable params should fall back to zero, got limit=%d offset=%d", catalog.lastLimit, catalog.lastOffset)
	}
}

func TestDocumentsHandler_EmptyListEncodesAsArray(t *testing.T) {
	handler := NewDocumentsHandler(&fakeCataloger{})

	req := httptest.NewRequest(http.MethodGet, "/api/knowledge/documents", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"documents":[]`) {
		t.Errorf("body = %s, want empty documents array", rec.Body.String())
	}
}
