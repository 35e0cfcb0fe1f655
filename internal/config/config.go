package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	DBPath             string
	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingAPIKey    string
	EmbedOnIngest      bool
	UseVectorSearch    bool
	ChunkMaxTokens     int
	ChunkOverlapTokens int
	DefaultLanguage    string
	OCRLanguages       []string
	APIPort            string
	LogLevel           slog.Level
	LogFormat          string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	// Walk up from the working directory looking for a .env at the project root.
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		DBPath:             getEnv("DB_PATH", "./data/knowledge.db"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "knowledge_chunks"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "https://api.openai.com"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", ""),
		EmbedOnIngest:      getEnvBool("KNOWLEDGE_EMBED_ON_INGEST", false),
		UseVectorSearch:    getEnvBool("KNOWLEDGE_USE_VECTOR", false),
		DefaultLanguage:    getEnv("KNOWLEDGE_LANGUAGE", "es"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	// OCR language hints, passed to Tesseract ("spa+eng" style).
	cfg.OCRLanguages = strings.Split(getEnv("OCR_LANGUAGES", "spa+eng"), "+")

	var parseErr error
	cfg.ChunkMaxTokens, parseErr = getEnvInt("CHUNK_MAX_TOKENS", 1000)
	if parseErr != nil {
		return nil, parseErr
	}
	cfg.ChunkOverlapTokens, parseErr = getEnvInt("CHUNK_OVERLAP_TOKENS", 160)
	if parseErr != nil {
		return nil, parseErr
	}
	if cfg.ChunkMaxTokens <= 0 {
		return nil, fmt.Errorf("CHUNK_MAX_TOKENS must be greater than 0")
	}
	if cfg.ChunkOverlapTokens < 0 {
		return nil, fmt.Errorf("CHUNK_OVERLAP_TOKENS must not be negative")
	}

	// Must match the output vector size of the embeddings model. If the model's
	// native dimensionality exceeds what the index supports, configure a
	// lower-dimensional model variant instead of truncating vectors.
	cfg.QdrantVectorSize, parseErr = getEnvInt("QDRANT_VECTOR_SIZE", 1536)
	if parseErr != nil {
		return nil, parseErr
	}
	if cfg.QdrantVectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}

	switch strings.ToLower(getEnv("LOG_LEVEL", "info")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		cfg.LogLevel = slog.LevelInfo
	}

	if (cfg.EmbedOnIngest || cfg.UseVectorSearch) && cfg.EmbeddingAPIKey == "" {
		return nil, fmt.Errorf("EMBEDDING_API_KEY is required when embeddings are enabled")
	}

	// Create the data directory if it doesn't exist (for the DB file).
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable ("true" enables it).
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1"
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}
