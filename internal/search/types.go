package search

// Request describes one retrieval query.
type Request struct {
	Query     string
	TopK      int
	Filters   map[string]any
	UseVector bool
}

// Result is a single ranked chunk hit.
type Result struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}
