package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"knowledge-api/internal/contextutil"
	"knowledge-api/internal/storage"
)

// Cataloger lists ingested documents.
type Cataloger interface {
	List(ctx context.Context, limit, offset int, titleContains string) ([]*storage.DocumentRecord, error)
}

// DocumentsHandler handles HTTP requests for browsing the document catalog.
type DocumentsHandler struct {
	catalog Cataloger
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(catalog Cataloger) *DocumentsHandler {
	return &DocumentsHandler{catalog: catalog}
}

// DocumentResponse represents one document in the catalog listing.
type DocumentResponse struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	SourceURL string   `json:"source_url,omitempty"`
	MimeType  string   `json:"mime_type"`
	Language  string   `json:"language"`
	Pages     *int     `json:"pages,omitempty"`
	Tags      []string `json:"tags"`
	Status    string   `json:"status"`
	Version   int      `json:"version"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// DocumentsListResponse represents the catalog listing response.
type DocumentsListResponse struct {
	Success   bool               `json:"success"`
	Documents []DocumentResponse `json:"documents"`
}

// ServeHTTP lists documents newest-first. Supports limit, offset and q
// (title substring filter) query parameters.
func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := parseIntParam(r, "limit", 0)
	offset := parseIntParam(r, "offset", 0)
	q := r.URL.Query().Get("q")

	docs, err := h.catalog.List(ctx, limit, offset, q)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	out := make([]DocumentResponse, len(docs))
	for i, doc := range docs {
		tags := doc.Tags
		if tags == nil {
			tags = []string{}
		}
		out[i] = DocumentResponse{
			ID:        doc.ID,
			Title:     doc.Title,
			SourceURL: doc.SourceURL,
			MimeType:  doc.MimeType,
			Language:  doc.Language,
			Pages:     doc.Pages,
			Tags:      tags,
			Status:    doc.Status,
			Version:   doc.Version,
			CreatedAt: doc.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt: doc.UpdatedAt.UTC().Format(time.RFC3339),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(DocumentsListResponse{Success: true, Documents: out}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// writeError writes an error response.
func (h *DocumentsHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
