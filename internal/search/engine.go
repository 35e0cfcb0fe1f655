package search

import (
	"context"
	"errors"
	"strings"

	"knowledge-api/internal/contextutil"
	"knowledge-api/internal/storage"
	"knowledge-api/internal/vectorstore"
)

const (
	// DefaultTopK is the result count used when a request leaves TopK unset.
	DefaultTopK = 8
	// MaxTopK caps the result count a single request can ask for.
	MaxTopK = 50
)

// ErrEmptyQuery is returned when the query is blank after trimming.
var ErrEmptyQuery = errors.New("query must not be empty")

// Embedder turns query text into a vector, or nil when embedding is unavailable.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// Engine answers retrieval queries. The vector path embeds the query and asks
// Qdrant; whenever that path is disabled or fails, the engine falls back to
// FTS5 lexical search over the same chunks. Exactly one of the two strategies
// produces the results of any given call.
type Engine struct {
	chunkRepo   storage.ChunkStore
	vectorStore vectorstore.VectorStore
	embedder    Embedder
	collection  string
}

// NewEngine creates a search engine. embedder and vectorStore may be nil when
// vector search is not configured; every query then takes the lexical path.
func NewEngine(chunkRepo storage.ChunkStore, vectorStore vectorstore.VectorStore, embedder Embedder, collection string) *Engine {
	return &Engine{
		chunkRepo:   chunkRepo,
		vectorStore: vectorStore,
		embedder:    embedder,
		collection:  collection,
	}
}

// Search runs one retrieval query and returns ranked chunk hits.
func (e *Engine) Search(ctx context.Context, req Request) ([]Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	if req.UseVector && e.vectorStore != nil && e.embedder != nil {
		vec := e.embedder.Embed(ctx, query)
		if vec != nil {
			results, err := e.searchVector(ctx, vec, topK, req.Filters)
			if err == nil {
				return results, nil
			}
			logger.WarnContext(ctx, "vector search failed, falling back to lexical", "error", err)
		} else {
			logger.WarnContext(ctx, "query embedding unavailable, falling back to lexical")
		}
	}

	return e.searchLexical(ctx, query, topK, req.Filters)
}

func (e *Engine) searchVector(ctx context.Context, vec []float32, topK int, filters map[string]any) ([]Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	hits, err := e.vectorStore.Search(ctx, e.collection, vec, topK, filters)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		chunk, err := e.chunkRepo.GetByID(ctx, hit.PointID)
		if err != nil {
			// The point may outlive its chunk row across a re-ingest; skip it.
			logger.WarnContext(ctx, "vector hit has no chunk row", "point_id", hit.PointID, "error", err)
			continue
		}
		results = append(results, Result{
			ChunkID:    chunk.ID,
			DocumentID: chunk.DocumentID,
			ChunkIndex: chunk.ChunkIndex,
			Content:    chunk.Content,
			Score:      float64(hit.Score),
		})
	}
	return results, nil
}

func (e *Engine) searchLexical(ctx context.Context, query string, topK int, filters map[string]any) ([]Result, error) {
	documentID := ""
	tag := ""
	if filters != nil {
		if v, ok := filters["document_id"].(string); ok {
			documentID = v
		}
		if v, ok := filters["tag"].(string); ok {
			tag = v
		}
	}

	hits, err := e.chunkRepo.SearchLexical(ctx, query, topK, documentID, tag)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Result{
			ChunkID:    hit.ChunkID,
			DocumentID: hit.DocumentID,
			ChunkIndex: hit.ChunkIndex,
			Content:    hit.Content,
			Score:      hit.Score,
		})
	}
	return results, nil
}
