// Package embedding adapts an embeddings provider for per-chunk use during
// ingestion and for query embedding at search time.
package embedding

import (
	"context"

	"knowledge-api/internal/contextutil"
)

// MaxInputChars bounds embedding input length to keep cost down and stay under
// provider-side limits. Longer chunk text is truncated before the call.
const MaxInputChars = 8000

// Provider generates fixed-length vectors for texts.
type Provider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Adapter wraps a Provider with the pipeline's degradation policy: a failed
// embedding is logged and returned as nil, never surfaced as an error. One
// bad chunk loses its vector; the ingest keeps going.
type Adapter struct {
	provider Provider
}

// NewAdapter creates an Adapter over the given provider.
func NewAdapter(provider Provider) *Adapter {
	return &Adapter{provider: provider}
}

// Embed returns a vector for text, or nil if the provider fails.
func (a *Adapter) Embed(ctx context.Context, text string) []float32 {
	logger := contextutil.LoggerFromContext(ctx)

	if runes := []rune(text); len(runes) > MaxInputChars {
		text = string(runes[:MaxInputChars])
	}

	vectors, err := a.provider.EmbedTexts(ctx, []string{text})
	if err != nil {
		logger.WarnContext(ctx, "embedding failed, degrading to no vector", "error", err)
		return nil
	}
	if len(vectors) == 0 || vectors[0] == nil {
		logger.WarnContext(ctx, "embedding provider returned no vector")
		return nil
	}
	return vectors[0]
}
