package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"knowledge-api/internal/indexer"
	"knowledge-api/internal/search"
	"knowledge-api/internal/storage"
)

type routerFakes struct{}

func (routerFakes) Ingest(ctx context.Context, req indexer.IngestRequest) (*indexer.IngestResult, error) {
	return &indexer.IngestResult{DocumentID: "doc-1"}, nil
}

func (routerFakes) Search(ctx context.Context, req search.Request) ([]search.Result, error) {
	return nil, nil
}

func (routerFakes) List(ctx context.Context, limit, offset int, titleContains string) ([]*storage.DocumentRecord, error) {
	return nil, nil
}

func (routerFakes) CollectionExists(ctx context.Context, collection string) (bool, error) {
	return true, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := storage.New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	fakes := routerFakes{}
	return NewRouter(&Deps{
		Pipeline:       fakes,
		Engine:         fakes,
		Catalog:        fakes,
		DB:             db,
		VectorStore:    fakes,
		CollectionName: "kb",
	})
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK},
		{name: "search", method: http.MethodPost, path: "/api/knowledge/search", body: `{"query":"x"}`, wantStatus: http.StatusOK},
		{name: "documents", method: http.MethodGet, path: "/api/knowledge/documents", wantStatus: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/api/nope", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodGet, path: "/api/knowledge/search", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d: %s", tt.method, tt.path, rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/knowledge/search", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
