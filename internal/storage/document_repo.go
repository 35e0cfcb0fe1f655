package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks knowledge-api/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// GetByHash gets a document by its content hash.
	// Returns nil and ErrNotFound if not found.
	GetByHash(ctx context.Context, fileSHA256 string) (*DocumentRecord, error)
	// UpsertByHash inserts a new document or updates the existing row with the
	// same content hash, preserving its ID and bumping its version.
	// It returns the stored record.
	UpsertByHash(ctx context.Context, doc *DocumentRecord) (*DocumentRecord, error)
	// GetByID gets a document by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*DocumentRecord, error)
	// List returns documents ordered by creation time descending, optionally
	// filtered by a case-insensitive substring match on title.
	List(ctx context.Context, limit, offset int, titleContains string) ([]*DocumentRecord, error)
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = "id, title, source_url, file_sha256, mime_type, language, pages, tags, status, version, created_at, updated_at"

// GetByHash gets a document by its content hash.
// Returns nil and ErrNotFound if not found.
func (r *DocumentRepo) GetByHash(ctx context.Context, fileSHA256 string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE file_sha256 = ?",
		fileSHA256,
	)
	return scanDocument(row)
}

// GetByID gets a document by its ID. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?",
		id,
	)
	return scanDocument(row)
}

// UpsertByHash inserts a new document or updates the existing row with the same
// content hash. Re-ingesting byte-identical content resolves to the same ID.
func (r *DocumentRepo) UpsertByHash(ctx context.Context, doc *DocumentRecord) (*DocumentRecord, error) {
	existing, err := r.GetByHash(ctx, doc.FileSHA256)
	if err != nil && err != ErrNotFound {
		return nil, fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing != nil {
		doc.ID = existing.ID
	} else if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	tags, err := json.Marshal(doc.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	var pages sql.NullInt64
	if doc.Pages != nil {
		pages = sql.NullInt64{Int64: int64(*doc.Pages), Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (id, title, source_url, file_sha256, mime_type, language, pages, tags, status, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		 ON CONFLICT (file_sha256) DO UPDATE SET
		 title = excluded.title, source_url = excluded.source_url,
		 mime_type = excluded.mime_type, language = excluded.language,
		 pages = excluded.pages, tags = excluded.tags, status = excluded.status,
		 version = documents.version + 1, updated_at = CURRENT_TIMESTAMP`,
		doc.ID, doc.Title, doc.SourceURL, doc.FileSHA256, doc.MimeType, doc.Language, pages, string(tags), doc.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert document: %w", err)
	}

	return r.GetByHash(ctx, doc.FileSHA256)
}

// List returns documents ordered by created_at descending.
func (r *DocumentRepo) List(ctx context.Context, limit, offset int, titleContains string) ([]*DocumentRecord, error) {
	query := "SELECT " + documentColumns + " FROM documents"
	args := []any{}
	if titleContains != "" {
		query += " WHERE title LIKE ? COLLATE NOCASE"
		args = append(args, "%"+titleContains+"%")
	}
	query += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*DocumentRecord
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return docs, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*DocumentRecord, error) {
	var doc DocumentRecord
	var pages sql.NullInt64
	var tags string
	var createdAt, updatedAt string

	err := row.Scan(&doc.ID, &doc.Title, &doc.SourceURL, &doc.FileSHA256, &doc.MimeType,
		&doc.Language, &pages, &tags, &doc.Status, &doc.Version, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	if pages.Valid {
		p := int(pages.Int64)
		doc.Pages = &p
	}
	if err := json.Unmarshal([]byte(tags), &doc.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if doc.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &doc, nil
}

// parseTimestamp parses a SQLite DATETIME string.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	// SQLite might use a different format depending on how the value was written
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
