package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"knowledge-api/internal/catalog"
	"knowledge-api/internal/config"
	"knowledge-api/internal/embedding"
	"knowledge-api/internal/extract"
	"knowledge-api/internal/handlers"
	"knowledge-api/internal/http"
	"knowledge-api/internal/indexer"
	"knowledge-api/internal/llm"
	"knowledge-api/internal/search"
	"knowledge-api/internal/storage"
	"knowledge-api/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	docRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	ctx := context.Background()
	vectorsEnabled := cfg.EmbedOnIngest || cfg.UseVectorSearch

	// Vector store and embedder are only wired up when configured; without
	// them every query takes the lexical path and ingestion skips embedding.
	var vectorStore vectorstore.VectorStore
	var healthVectorStore handlers.CollectionChecker
	var embedder *embedding.Adapter
	if vectorsEnabled {
		qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		if err := qdrantStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)
		vectorStore = qdrantStore
		healthVectorStore = qdrantStore

		// Validate embedding client vector size (fail-fast)
		embedClient := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
		testEmbeddings, err := embedClient.EmbedTexts(ctx, []string{"test"})
		if err != nil {
			log.Fatalf("Failed to validate embedding client: %v", err)
		}
		if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
			log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
		}
		slog.Info("Embedding client validated", "model", cfg.EmbeddingModelName, "vector_size", cfg.QdrantVectorSize)
		embedder = embedding.NewAdapter(embedClient)
	}

	extractor := extract.NewDefault(cfg.OCRLanguages)

	var pipelineEmbedder indexer.Embedder
	var engineEmbedder search.Embedder
	if embedder != nil {
		pipelineEmbedder = embedder
		engineEmbedder = embedder
	}

	pipeline := indexer.NewPipeline(
		extractor,
		docRepo,
		chunkRepo,
		pipelineEmbedder,
		vectorStore,
		cfg.QdrantCollection,
		indexer.Options{
			MaxTokens:     cfg.ChunkMaxTokens,
			OverlapTokens: cfg.ChunkOverlapTokens,
			Language:      cfg.DefaultLanguage,
			EmbedOnIngest: cfg.EmbedOnIngest,
		},
	)

	engine := search.NewEngine(chunkRepo, vectorStore, engineEmbedder, cfg.QdrantCollection)
	catalogService := catalog.NewService(docRepo)
	slog.Info("Ingestion pipeline ready",
		"max_tokens", cfg.ChunkMaxTokens,
		"overlap_tokens", cfg.ChunkOverlapTokens,
		"embed_on_ingest", cfg.EmbedOnIngest,
		"vector_search", cfg.UseVectorSearch,
	)

	deps := &http.Deps{
		Pipeline:         pipeline,
		Engine:           engine,
		Catalog:          catalogService,
		DB:               db,
		VectorStore:      healthVectorStore,
		CollectionName:   cfg.QdrantCollection,
		UseVectorDefault: cfg.UseVectorSearch,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
