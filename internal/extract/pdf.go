package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFStrategy extracts text and page count from PDF buffers.
type PDFStrategy struct{}

// Handles reports whether the MIME type looks like a PDF.
func (s *PDFStrategy) Handles(mimeType string) bool {
	return strings.Contains(strings.ToLower(mimeType), "pdf")
}

// Extract parses the PDF and returns its plain text plus the page count.
func (s *PDFStrategy) Extract(_ context.Context, data []byte) (*Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return nil, fmt.Errorf("failed to copy PDF text: %w", err)
	}

	pages := reader.NumPage()
	return &Result{Text: buf.String(), Pages: &pages}, nil
}
