package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"

	"knowledge-api/internal/contextutil"
	"knowledge-api/internal/extract"
	"knowledge-api/internal/storage"
	"knowledge-api/internal/vectorstore"
)

// TextExtractor converts raw bytes plus a declared MIME type into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, mimeType string, data []byte) (*extract.Result, error)
}

// Embedder turns chunk text into a vector, or nil when embedding is unavailable.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// Pipeline orchestrates document ingestion: extraction, normalization,
// chunking, optional embedding, and persistence into SQLite and Qdrant.
type Pipeline struct {
	extractor   TextExtractor
	docRepo     storage.DocumentStore
	chunkRepo   storage.ChunkStore
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	chunker     *HybridChunker
	language    string
	embedChunks bool
}

// Options tunes a Pipeline beyond its required dependencies.
type Options struct {
	MaxTokens     int
	OverlapTokens int
	Language      string
	EmbedOnIngest bool
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	extractor TextExtractor,
	docRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	opts Options,
) *Pipeline {
	language := opts.Language
	if language == "" {
		language = "es"
	}
	return &Pipeline{
		extractor:   extractor,
		docRepo:     docRepo,
		chunkRepo:   chunkRepo,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		chunker:     NewHybridChunker(opts.MaxTokens, opts.OverlapTokens),
		language:    language,
		embedChunks: opts.EmbedOnIngest,
	}
}

// Ingest runs the full pipeline for one document.
// Re-ingesting byte-identical content resolves to the same document ID; the
// chunk set is rebuilt unconditionally on every successful call.
func (p *Pipeline) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	sum := sha256.Sum256(req.Data)
	hash := hex.EncodeToString(sum[:])

	title := req.TitleOverride
	if title == "" {
		title = req.FileName
	}
	if title == "" {
		title = "Untitled document"
	}

	extracted, err := p.extractor.Extract(ctx, req.MimeType, req.Data)
	if err != nil {
		// Record the failed attempt so the catalog reflects it; best effort.
		failed := &storage.DocumentRecord{
			Title:      title,
			SourceURL:  req.SourceURL,
			FileSHA256: hash,
			MimeType:   req.MimeType,
			Language:   p.language,
			Tags:       req.Tags,
			Status:     storage.StatusFailed,
		}
		if _, upErr := p.docRepo.UpsertByHash(ctx, failed); upErr != nil {
			logger.WarnContext(ctx, "failed to record failed document", "error", upErr, "hash", hash)
		}
		return nil, err
	}

	normalized := NormalizeText(extracted.Text)
	chunks := p.chunker.Chunk(normalized)

	doc := &storage.DocumentRecord{
		Title:      title,
		SourceURL:  req.SourceURL,
		FileSHA256: hash,
		MimeType:   req.MimeType,
		Language:   p.language,
		Pages:      extracted.Pages,
		Tags:       req.Tags,
		Status:     storage.StatusProcessing,
	}
	stored, err := p.docRepo.UpsertByHash(ctx, doc)
	if err != nil {
		return nil, &StoreWriteError{Stage: "document", Err: err}
	}

	// Remove stale vector points before the chunk rows they mirror go away.
	if p.vectorStore != nil {
		oldIDs, err := p.chunkRepo.ListIDsByDocument(ctx, stored.ID)
		if err != nil {
			return nil, &StoreWriteError{Stage: "chunks", Err: err}
		}
		if len(oldIDs) > 0 {
			if err := p.vectorStore.Delete(ctx, p.collection, oldIDs); err != nil {
				logger.WarnContext(ctx, "failed to delete stale vector points", "error", err, "count", len(oldIDs))
				// Continue anyway; the new chunk set replaces them in SQLite.
			}
		}
	}

	records := make([]*storage.ChunkRecord, len(chunks))
	var points []vectorstore.Point
	for i, chunk := range chunks {
		chunkID := uuid.New().String()
		records[i] = &storage.ChunkRecord{
			ID:         chunkID,
			DocumentID: stored.ID,
			ChunkIndex: chunk.Index,
			Content:    chunk.Content,
			Tokens:     chunk.Tokens,
		}

		if !p.embedChunks || p.embedder == nil {
			continue
		}
		// Embedding is sequential, one chunk at a time. A nil vector means the
		// embedding failed; the chunk is stored without one.
		vec := p.embedder.Embed(ctx, chunk.Content)
		if vec == nil {
			continue
		}
		tags := make([]any, len(req.Tags))
		for j, t := range req.Tags {
			tags[j] = t
		}
		points = append(points, vectorstore.Point{
			ID:  chunkID,
			Vec: vec,
			Meta: map[string]any{
				"document_id": stored.ID,
				"chunk_index": chunk.Index,
				"title":       stored.Title,
				"tags":        tags,
			},
		})
	}

	if err := p.chunkRepo.Replace(ctx, stored.ID, records); err != nil {
		return nil, &StoreWriteError{Stage: "chunks", Err: err}
	}

	if len(points) > 0 && p.vectorStore != nil {
		if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
			return nil, &StoreWriteError{Stage: "vectors", Err: err}
		}
	}

	logger.InfoContext(ctx, "document ingested",
		"document_id", stored.ID,
		"title", stored.Title,
		"mime_type", req.MimeType,
		"chunks", len(records),
		"embedded", len(points),
	)

	return &IngestResult{
		DocumentID: stored.ID,
		ChunkCount: len(records),
		Pages:      extracted.Pages,
	}, nil
}
