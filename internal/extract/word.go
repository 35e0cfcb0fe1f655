package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
)

// WordStrategy extracts text from word-processor documents (docx and friends).
// Word formats carry no reliable page count, so Pages stays nil.
type WordStrategy struct{}

// Handles reports whether the MIME type looks like a word-processor document.
func (s *WordStrategy) Handles(mimeType string) bool {
	mt := strings.ToLower(mimeType)
	return strings.Contains(mt, "word") || strings.Contains(mt, "docx")
}

// Extract converts the document body to plain text via docconv.
func (s *WordStrategy) Extract(_ context.Context, data []byte) (*Result, error) {
	text, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to convert document: %w", err)
	}
	return &Result{Text: text}, nil
}
