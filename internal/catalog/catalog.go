package catalog

import (
	"context"

	"knowledge-api/internal/storage"
)

const (
	// DefaultLimit is the page size used when a request leaves it unset.
	DefaultLimit = 20
	// MaxLimit caps the page size a single request can ask for.
	MaxLimit = 100
)

// Service lists ingested documents for browsing.
type Service struct {
	docs storage.DocumentStore
}

// NewService creates a document catalog backed by the given store.
func NewService(docs storage.DocumentStore) *Service {
	return &Service{docs: docs}
}

// List returns documents newest-first, optionally filtered by a
// case-insensitive substring match on the title.
func (s *Service) List(ctx context.Context, limit, offset int, titleContains string) ([]*storage.DocumentRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.docs.List(ctx, limit, offset, titleContains)
}
