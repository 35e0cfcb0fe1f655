package storage

import (
	"context"
	"errors"
	"testing"
)

func setupTestDB(t *testing.T) *DocumentRepo {
	t.Helper()
	tmpDir := t.TempDir()
	db, err := New(tmpDir + "/test.db")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewDocumentRepo(db)
}

func TestDocumentRepo_UpsertByHash_New(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	pages := 3
	stored, err := repo.UpsertByHash(ctx, &DocumentRecord{
		Title:      "Manual",
		FileSHA256: "hash-1",
		MimeType:   "application/pdf",
		Language:   "es",
		Pages:      &pages,
		Tags:       []string{"manual", "v1"},
		Status:     StatusProcessing,
	})
	if err != nil {
		t.Fatalf("UpsertByHash() error = %v", err)
	}

	if stored.ID == "" {
		t.Error("stored document has no ID")
	}
	if stored.Version != 1 {
		t.Errorf("Version = %d, want 1", stored.Version)
	}
	if stored.Pages == nil || *stored.Pages != 3 {
		t.Errorf("Pages = %v, want 3", stored.Pages)
	}
	if len(stored.Tags) != 2 || stored.Tags[0] != "manual" {
		t.Errorf("Tags = %v, want [manual v1]", stored.Tags)
	}
	if stored.CreatedAt.IsZero() || stored.UpdatedAt.IsZero() {
		t.Error("timestamps not populated")
	}
}

func TestDocumentRepo_UpsertByHash_SameHashKeepsID(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	first, err := repo.UpsertByHash(ctx, &DocumentRecord{
		Title:      "Original",
		FileSHA256: "hash-1",
		MimeType:   "text/plain",
		Language:   "es",
		Status:     StatusProcessing,
	})
	if err != nil {
		t.Fatalf("UpsertByHash() error = %v", err)
	}

	second, err := repo.UpsertByHash(ctx, &DocumentRecord{
		Title:      "Renamed",
		FileSHA256: "hash-1",
		MimeType:   "text/plain",
		Language:   "es",
		Status:     StatusProcessing,
	})
	if err != nil {
		t.Fatalf("UpsertByHash() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("re-ingest changed ID: %q vs %q", second.ID, first.ID)
	}
	if second.Version != 2 {
		t.Errorf("Version = %d, want 2", second.Version)
	}
	if second.Title != "Renamed" {
		t.Errorf("Title = %q, want %q", second.Title, "Renamed")
	}
}

func TestDocumentRepo_GetByHash_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetByHash(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByHash() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_List(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for _, doc := range []struct{ title, hash string }{
		{"Guia de usuario", "hash-1"},
		{"Manual tecnico", "hash-2"},
		{"Notas sueltas", "hash-3"},
	} {
		if _, err := repo.UpsertByHash(ctx, &DocumentRecord{
			Title:      doc.title,
			FileSHA256: doc.hash,
			MimeType:   "text/plain",
			Language:   "es",
			Status:     StatusProcessed,
		}); err != nil {
			t.Fatalf("UpsertByHash() error = %v", err)
		}
	}

	// Spread created_at so the ordering is unambiguous.
	for hash, ts := range map[string]string{
		"hash-1": "2026-01-01 10:00:00",
		"hash-2": "2026-01-03 10:00:00",
		"hash-3": "2026-01-02 10:00:00",
	} {
		if _, err := repo.db.ExecContext(ctx, "UPDATE documents SET created_at = ? WHERE file_sha256 = ?", ts, hash); err != nil {
			t.Fatalf("failed to adjust created_at: %v", err)
		}
	}

	docs, err := repo.List(ctx, 10, 0, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("List() returned %d documents, want 3", len(docs))
	}
	wantOrder := []string{"Manual tecnico", "Notas sueltas", "Guia de usuario"}
	for i, want := range wantOrder {
		if docs[i].Title != want {
			t.Errorf("docs[%d].Title = %q, want %q", i, docs[i].Title, want)
		}
	}

	filtered, err := repo.List(ctx, 10, 0, "manual")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(filtered) != 1 || filtered[0].Title != "Manual tecnico" {
		t.Errorf("List(manual) = %v, want only the manual", filtered)
	}

	paged, err := repo.List(ctx, 1, 1, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(paged) != 1 || paged[0].Title != "Notas sueltas" {
		t.Errorf("List(limit=1, offset=1) = %v, want the second newest", paged)
	}
}
