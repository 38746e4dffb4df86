package postgres

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

const (
	scanPageSize    = 500
	documentColumns = "id, text, vector, source_locator, created_at"
)

// Store is a PostgreSQL-backed document store.
type Store struct {
	db *sql.DB
}

// Open connects to dsn and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			vector BYTEA,
			source_locator TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

// Exists reports whether a document with the given id is stored.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: check document %s: %w", domain.ErrStoreRead, id, err)
	}
	return exists, nil
}

// Get retrieves a document by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}
	return doc, nil
}

// Put stores or replaces a document.
func (s *Store) Put(ctx context.Context, doc domain.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, text, vector, source_locator, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			vector = EXCLUDED.vector,
			source_locator = EXCLUDED.source_locator,
			created_at = EXCLUDED.created_at
	`, documentArgs(doc)...)
	if err != nil {
		return fmt.Errorf("%w: upsert document %s: %w", domain.ErrStoreWrite, doc.ID, err)
	}
	return nil
}

// PutIfAbsent inserts the document unless its id is already present.
func (s *Store) PutIfAbsent(ctx context.Context, doc domain.Document) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, text, vector, source_locator, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, documentArgs(doc)...)
	if err != nil {
		return false, fmt.Errorf("%w: insert document %s: %w", domain.ErrStoreWrite, doc.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: insert document %s: %w", domain.ErrStoreWrite, doc.ID, err)
	}
	return n == 1, nil
}

// Scan visits every document in id order using keyset pagination.
func (s *Store) Scan(ctx context.Context, fn func(domain.Document) error) error {
	after := ""
	for {
		page, err := s.page(ctx, after)
		if err != nil {
			return err
		}
		for _, doc := range page {
			if err := fn(doc); err != nil {
				return err
			}
		}
		if len(page) < scanPageSize {
			return nil
		}
		after = page[len(page)-1].ID
	}
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count documents: %w", domain.ErrStoreRead, err)
	}
	return n, nil
}

// Close closes the connection pool, including for any VectorIndex built on it.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) page(ctx context.Context, after string) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id > $1 ORDER BY id LIMIT $2`,
		after, scanPageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", domain.ErrStoreRead, err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0, scanPageSize)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate documents: %w", domain.ErrStoreRead, err)
	}
	return docs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var blob []byte
	if err := row.Scan(&doc.ID, &doc.Text, &blob, &doc.SourceLocator, &doc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	doc.Vector = decodeVector(blob)
	return &doc, nil
}

func documentArgs(doc domain.Document) []any {
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return []any{doc.ID, doc.Text, encodeVector(doc.Vector), doc.SourceLocator, createdAt.UTC()}
}

func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v
}
