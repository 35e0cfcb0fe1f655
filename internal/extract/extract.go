// Package extract converts raw document bytes into plain text by MIME family.
// Strategies are tried in registration order; the last one (OCR) accepts
// anything, so unknown MIME types fall through to it rather than failing.
package extract

import (
	"context"
	"fmt"
)

// Result holds the extracted plain text and, when the format provides one, a page count.
type Result struct {
	Text  string
	Pages *int
}

// Strategy extracts text for one family of MIME types.
type Strategy interface {
	// Handles reports whether this strategy can extract the given MIME type.
	Handles(mimeType string) bool
	// Extract converts raw bytes into plain text.
	Extract(ctx context.Context, data []byte) (*Result, error)
}

// ExtractionError is returned when the selected strategy fails.
// No partial text is produced; the ingest that triggered it aborts.
type ExtractionError struct {
	MimeType string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %q: %v", e.MimeType, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor dispatches extraction over an ordered strategy set.
type Extractor struct {
	strategies []Strategy
}

// New creates an Extractor from an ordered list of strategies.
// Order matters: the first strategy whose Handles returns true wins.
func New(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// NewDefault creates an Extractor with the full strategy set:
// PDF, Word, HTML, Markdown, plain text/CSV, and OCR as the catch-all.
func NewDefault(ocrLanguages []string) *Extractor {
	return New(
		&PDFStrategy{},
		&WordStrategy{},
		&HTMLStrategy{},
		&MarkdownStrategy{},
		&PlainStrategy{},
		NewOCRStrategy(ocrLanguages),
	)
}

// Extract runs the first matching strategy against data.
// A strategy failure is fatal and wrapped as *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, mimeType string, data []byte) (*Result, error) {
	for _, s := range e.strategies {
		if !s.Handles(mimeType) {
			continue
		}
		res, err := s.Extract(ctx, data)
		if err != nil {
			return nil, &ExtractionError{MimeType: mimeType, Err: err}
		}
		return res, nil
	}
	return nil, &ExtractionError{MimeType: mimeType, Err: fmt.Errorf("no extraction strategy registered")}
}
