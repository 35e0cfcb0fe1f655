package extract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// OCRStrategy recognizes text from image buffers via Tesseract.
// It accepts any MIME type and is registered last, making it the fallback for
// formats no other strategy claims. An unrecognized MIME type is therefore not
// an error in itself; only a failing OCR run is.
type OCRStrategy struct {
	languages []string
}

// NewOCRStrategy creates an OCR strategy with the given language hints
// (Tesseract language codes, e.g. "spa", "eng").
func NewOCRStrategy(languages []string) *OCRStrategy {
	if len(languages) == 0 {
		languages = []string{"spa", "eng"}
	}
	return &OCRStrategy{languages: languages}
}

// Handles always returns true; OCR is the catch-all.
func (s *OCRStrategy) Handles(string) bool {
	return true
}

// Extract runs Tesseract over the raw buffer. OCR gives no page count.
func (s *OCRStrategy) Extract(_ context.Context, data []byte) (*Result, error) {
	client := gosseract.NewClient()
	defer func() {
		_ = client.Close()
	}()

	if err := client.SetLanguage(s.languages...); err != nil {
		return nil, fmt.Errorf("failed to set OCR languages: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to load image for OCR: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR recognition failed: %w", err)
	}
	return &Result{Text: text}, nil
}
