package indexer

// Chunk is one retrieval-sized slice of a document's normalized text.
type Chunk struct {
	Content string
	Index   int
	Tokens  int
}

// IngestRequest carries one document into the ingestion pipeline.
type IngestRequest struct {
	FileName      string
	MimeType      string
	Data          []byte
	SourceURL     string
	TitleOverride string
	Tags          []string
}

// IngestResult reports what a successful ingest produced.
type IngestResult struct {
	DocumentID string
	ChunkCount int
	Pages      *int
}
