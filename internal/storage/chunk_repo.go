package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks knowledge-api/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// Replace deletes all chunks for the document and inserts the new set.
	// The replacement and the document's transition to "processed" commit in
	// a single transaction.
	Replace(ctx context.Context, documentID string, chunks []*ChunkRecord) error
	// ListIDsByDocument returns all chunk IDs for a document, ordered by chunk_index.
	ListIDsByDocument(ctx context.Context, documentID string) ([]string, error)
	// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*ChunkRecord, error)
	// SearchLexical runs a full-text query over chunk content, ranked by bm25.
	// documentID optionally restricts matches to one document, tag to documents
	// carrying that tag.
	SearchLexical(ctx context.Context, query string, topK int, documentID, tag string) ([]*LexicalHit, error)
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// Replace swaps the document's chunk set wholesale and marks it processed.
// There is no incremental diffing; old rows go away even when the new set is empty.
func (r *ChunkRepo) Replace(ctx context.Context, documentID string, chunks []*ChunkRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("failed to delete old chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (id, document_id, section_id, chunk_index, content, tokens) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, chunk := range chunks {
		var sectionID sql.NullString
		if chunk.SectionID != "" {
			sectionID = sql.NullString{String: chunk.SectionID, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, documentID, sectionID, chunk.ChunkIndex, chunk.Content, chunk.Tokens); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", chunk.ChunkIndex, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE documents SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		StatusProcessed, documentID,
	); err != nil {
		return fmt.Errorf("failed to mark document processed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunk replacement: %w", err)
	}
	return nil
}

// ListIDsByDocument returns all chunk IDs for a document, ordered by chunk_index.
// Returns an empty slice if no chunks exist (not an error).
// Used to collect vector point IDs for deletion before re-ingesting.
func (r *ChunkRepo) ListIDsByDocument(ctx context.Context, documentID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM chunks WHERE document_id = ? ORDER BY chunk_index",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}

// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
func (r *ChunkRepo) GetByID(ctx context.Context, id string) (*ChunkRecord, error) {
	var chunk ChunkRecord
	var sectionID sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT id, document_id, section_id, chunk_index, content, tokens FROM chunks WHERE id = ?",
		id,
	).Scan(&chunk.ID, &chunk.DocumentID, &sectionID, &chunk.ChunkIndex, &chunk.Content, &chunk.Tokens)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk: %w", err)
	}
	chunk.SectionID = sectionID.String
	return &chunk, nil
}

// SearchLexical runs an FTS5 query over chunk content.
// Results come back ordered by bm25 rank; the returned score negates the rank
// so that higher means more relevant, matching the vector path's convention.
func (r *ChunkRepo) SearchLexical(ctx context.Context, query string, topK int, documentID, tag string) ([]*LexicalHit, error) {
	match := ftsMatchExpr(query)
	if match == "" {
		return nil, nil
	}

	sqlQuery := `SELECT c.id, c.document_id, c.chunk_index, c.content, bm25(chunks_fts)
		FROM chunks_fts
		JOIN chunks c ON c.rowid = chunks_fts.rowid
		WHERE chunks_fts MATCH ?`
	args := []any{match}
	if documentID != "" {
		sqlQuery += " AND c.document_id = ?"
		args = append(args, documentID)
	}
	if tag != "" {
		// Tags are stored as a JSON array of strings; match the quoted tag.
		sqlQuery += ` AND EXISTS (SELECT 1 FROM documents d WHERE d.id = c.document_id AND d.tags LIKE '%"' || ? || '"%')`
		args = append(args, tag)
	}
	sqlQuery += " ORDER BY bm25(chunks_fts) LIMIT ?"
	args = append(args, topK)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run lexical search: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var hits []*LexicalHit
	for rows.Next() {
		var hit LexicalHit
		var rank float64
		if err := rows.Scan(&hit.ChunkID, &hit.DocumentID, &hit.ChunkIndex, &hit.Content, &rank); err != nil {
			return nil, fmt.Errorf("failed to scan lexical hit: %w", err)
		}
		hit.Score = -rank
		hits = append(hits, &hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return hits, nil
}

// ftsMatchExpr turns free text into an FTS5 match expression: each term is
// quoted (neutralizing FTS syntax in user input) and terms are OR-ed so
// multi-word queries degrade gracefully.
func ftsMatchExpr(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " OR ")
}
