package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a pgvector-backed nearest-neighbour index. Indexing an id
// again replaces its vector.
type VectorIndex struct {
	db         *sql.DB
	dimensions int
}

// NewVectorIndex creates the pgvector extension, table and HNSW index on the
// store's pool. The HNSW index needs a fixed dimension, so with dimensions 0
// queries fall back to a sequential scan.
func NewVectorIndex(ctx context.Context, store *Store, dimensions int) (*VectorIndex, error) {
	v := &VectorIndex{db: store.db, dimensions: dimensions}
	if err := v.migrate(ctx); err != nil {
		return nil, fmt.Errorf("%w: migrate: %w", domain.ErrIndex, err)
	}
	return v, nil
}

func (v *VectorIndex) migrate(ctx context.Context) error {
	column := "vector"
	if v.dimensions > 0 {
		column = fmt.Sprintf("vector(%d)", v.dimensions)
	}
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS document_vectors (
			document_id TEXT PRIMARY KEY,
			embedding %s NOT NULL
		)`, column),
	}
	if v.dimensions > 0 {
		migrations = append(migrations,
			`CREATE INDEX IF NOT EXISTS idx_document_vectors_embedding
				ON document_vectors USING hnsw (embedding vector_cosine_ops)`)
	}

	for _, m := range migrations {
		if _, err := v.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

const upsertVector = `
	INSERT INTO document_vectors (document_id, embedding)
	VALUES ($1, $2::vector)
	ON CONFLICT (document_id) DO UPDATE SET embedding = EXCLUDED.embedding`

// Index adds or replaces one entry.
func (v *VectorIndex) Index(ctx context.Context, entry domain.IndexEntry) error {
	if err := v.check(entry); err != nil {
		return err
	}
	if _, err := v.db.ExecContext(ctx, upsertVector, entry.DocumentID, formatVector(entry.Vector)); err != nil {
		return fmt.Errorf("%w: upsert %s: %w", domain.ErrIndex, entry.DocumentID, err)
	}
	return nil
}

// BulkIndex writes entries in one transaction. Invalid entries are skipped;
// a database error rolls back the whole batch.
func (v *VectorIndex) BulkIndex(ctx context.Context, entries []domain.IndexEntry) (int, error) {
	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %w", domain.ErrIndex, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertVector)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare: %w", domain.ErrIndex, err)
	}
	defer stmt.Close()

	var (
		accepted int
		skipErr  error
	)
	for _, entry := range entries {
		if err := v.check(entry); err != nil {
			if skipErr == nil {
				skipErr = err
			}
			continue
		}
		if _, err := stmt.ExecContext(ctx, entry.DocumentID, formatVector(entry.Vector)); err != nil {
			return 0, fmt.Errorf("%w: upsert %s: %w", domain.ErrIndex, entry.DocumentID, err)
		}
		accepted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", domain.ErrIndex, err)
	}
	return accepted, skipErr
}

// Query returns the k nearest entries by cosine distance. Score is the
// cosine similarity, 1 - distance.
func (v *VectorIndex) Query(ctx context.Context, vector []float32, k int) ([]driven.VectorHit, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrIndex)
	}
	if k <= 0 {
		k = domain.DefaultTopK
	}

	rows, err := v.db.QueryContext(ctx, `
		SELECT document_id, 1 - (embedding <=> $1::vector) AS score
		FROM document_vectors
		ORDER BY embedding <=> $1::vector
		LIMIT $2
	`, formatVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", domain.ErrIndex, err)
	}
	defer rows.Close()

	hits := make([]driven.VectorHit, 0, k)
	for rows.Next() {
		var hit driven.VectorHit
		if err := rows.Scan(&hit.DocumentID, &hit.Score); err != nil {
			return nil, fmt.Errorf("%w: scan row: %w", domain.ErrIndex, err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndex, err)
	}
	return hits, nil
}

// Close is a no-op; the owning Store closes the pool.
func (v *VectorIndex) Close() error {
	return nil
}

func (v *VectorIndex) check(entry domain.IndexEntry) error {
	if entry.DocumentID == "" || len(entry.Vector) == 0 {
		return fmt.Errorf("%w: entry needs an id and a vector", domain.ErrIndex)
	}
	if v.dimensions > 0 && len(entry.Vector) != v.dimensions {
		return fmt.Errorf("%w: %s has %d dimensions, index has %d",
			domain.ErrIndex, entry.DocumentID, len(entry.Vector), v.dimensions)
	}
	return nil
}

// formatVector renders a pgvector literal: "[0.1,0.2,0.3]".
func formatVector(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
