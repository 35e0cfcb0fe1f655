package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"knowledge-api/internal/contextutil"
	"knowledge-api/internal/extract"
	"knowledge-api/internal/indexer"
)

// MaxUploadBytes caps the size of an uploaded file.
const MaxUploadBytes = 100 << 20

// Ingestor runs the ingestion pipeline for one uploaded document.
type Ingestor interface {
	Ingest(ctx context.Context, req indexer.IngestRequest) (*indexer.IngestResult, error)
}

// UploadHandler handles HTTP requests for document uploads.
type UploadHandler struct {
	pipeline Ingestor
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(pipeline Ingestor) *UploadHandler {
	return &UploadHandler{pipeline: pipeline}
}

// UploadResponse represents the response from the upload endpoint.
type UploadResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
	Pages      *int   `json:"pages,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP accepts a multipart upload and runs it through the pipeline.
//
// Expects a "file" part plus optional "title", "source_url" and "tags"
// (comma-separated) form fields. Returns 422 when the file's content cannot
// be extracted, 500 when persistence fails.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.WarnContext(ctx, "missing file part", "error", err)
		h.writeError(w, http.StatusBadRequest, "A file is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read uploaded file", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	var tags []string
	if raw := r.FormValue("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	result, err := h.pipeline.Ingest(ctx, indexer.IngestRequest{
		FileName:      header.Filename,
		MimeType:      mimeType,
		Data:          data,
		SourceURL:     r.FormValue("source_url"),
		TitleOverride: r.FormValue("title"),
		Tags:          tags,
	})
	if err != nil {
		var extractErr *extract.ExtractionError
		if errors.As(err, &extractErr) {
			logger.WarnContext(ctx, "extraction failed", "mime_type", mimeType, "error", err)
			h.writeError(w, http.StatusUnprocessableEntity, "Could not extract text from the uploaded file")
			return
		}
		var storeErr *indexer.StoreWriteError
		if errors.As(err, &storeErr) {
			logger.ErrorContext(ctx, "store write failed", "stage", storeErr.Stage, "error", err)
			h.writeError(w, http.StatusInternalServerError, "Failed to store the document")
			return
		}
		logger.ErrorContext(ctx, "ingestion failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to process the document")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(UploadResponse{
		Success:    true,
		DocumentID: result.DocumentID,
		Chunks:     result.ChunkCount,
		Pages:      result.Pages,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func (h *UploadHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
