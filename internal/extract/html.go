package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLStrategy extracts visible body text from HTML buffers.
// script, style and noscript elements are dropped before taking the text.
type HTMLStrategy struct{}

// Handles reports whether the MIME type looks like HTML.
func (s *HTMLStrategy) Handles(mimeType string) bool {
	return strings.Contains(strings.ToLower(mimeType), "html")
}

// Extract parses the document and returns the body text.
func (s *HTMLStrategy) Extract(_ context.Context, data []byte) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	return &Result{Text: doc.Find("body").Text()}, nil
}
