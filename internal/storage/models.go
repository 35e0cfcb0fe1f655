package storage

import "time"

// Document lifecycle statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)

// DocumentRecord represents an ingested document in the database.
// FileSHA256 is the dedup key: byte-identical re-ingests resolve to the same row.
type DocumentRecord struct {
	ID         string // UUID
	Title      string
	SourceURL  string
	FileSHA256 string // SHA256 hex of the raw bytes
	MimeType   string
	Language   string
	Pages      *int // nil for formats without a reliable page count
	Tags       []string
	Status     string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ChunkRecord represents one chunk of a document's normalized text.
// Chunks never outlive their document; the schema cascades deletes.
type ChunkRecord struct {
	ID         string // UUID (same as the vector point ID)
	DocumentID string
	SectionID  string // optional structural section reference
	ChunkIndex int    // zero-based, contiguous per document
	Content    string
	Tokens     int
}

// LexicalHit is one full-text search match with its relevance score
// (higher is better).
type LexicalHit struct {
	ChunkID    string
	DocumentID string
	ChunkIndex int
	Content    string
	Score      float64
}
