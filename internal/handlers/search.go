package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"knowledge-api/internal/contextutil"
	"knowledge-api/internal/search"
)

// Searcher answers retrieval queries.
type Searcher interface {
	Search(ctx context.Context, req search.Request) ([]search.Result, error)
}

// SearchHandler handles HTTP requests for chunk retrieval.
type SearchHandler struct {
	engine           Searcher
	useVectorDefault bool
}

// NewSearchHandler creates a new SearchHandler. useVectorDefault controls the
// search strategy for requests that leave use_vector unset.
func NewSearchHandler(engine Searcher, useVectorDefault bool) *SearchHandler {
	return &SearchHandler{
		engine:           engine,
		useVectorDefault: useVectorDefault,
	}
}

// SearchRequest represents the HTTP request payload for retrieval queries.
type SearchRequest struct {
	Query     string         `json:"query"`
	TopK      int            `json:"top_k,omitempty"`
	Filters   map[string]any `json:"filters,omitempty"`
	UseVector *bool          `json:"use_vector,omitempty"`
}

// SearchResponse represents the HTTP response payload for retrieval queries.
type SearchResponse struct {
	Success bool            `json:"success"`
	Results []search.Result `json:"results"`
}

// ServeHTTP handles HTTP requests for retrieval queries.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	useVector := h.useVectorDefault
	if req.UseVector != nil {
		useVector = *req.UseVector
	}

	results, err := h.engine.Search(ctx, search.Request{
		Query:     req.Query,
		TopK:      req.TopK,
		Filters:   req.Filters,
		UseVector: useVector,
	})
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			logger.WarnContext(ctx, "empty query in request")
			h.writeError(w, http.StatusBadRequest, "Query is required")
			return
		}
		logger.ErrorContext(ctx, "search failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	if results == nil {
		results = []search.Result{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(SearchResponse{Success: true, Results: results}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func (h *SearchHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
