package extract

import (
	"context"
	"strings"
)

// PlainStrategy handles plain text and CSV buffers by decoding them directly.
type PlainStrategy struct{}

// Handles reports whether the MIME type is plain-text-like.
func (s *PlainStrategy) Handles(mimeType string) bool {
	mt := strings.ToLower(mimeType)
	return strings.Contains(mt, "text") || strings.Contains(mt, "plain") || strings.Contains(mt, "csv")
}

// Extract decodes the buffer as UTF-8 text.
func (s *PlainStrategy) Extract(_ context.Context, data []byte) (*Result, error) {
	return &Result{Text: string(data)}, nil
}
