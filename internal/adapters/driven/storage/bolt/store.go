// Package bolt provides a single-file DocumentStore on bbolt, for
// deployments that want persistence without a SQL engine.
package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

var bucketDocuments = []byte("documents")

const scanPageSize = 500

// Store keeps JSON-encoded documents in one bbolt bucket keyed by id.
type Store struct {
	db *bbolt.DB
}

// NewStore opens (or creates) dataDir/documents.bolt.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dataDir, "documents.bolt"), 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDocuments)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

// Exists reports whether a document with the given id is stored.
func (s *Store) Exists(_ context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket(bucketDocuments).Get([]byte(id)) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}
	return exists, nil
}

// Get retrieves a document by ID.
func (s *Store) Get(_ context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocuments).Get([]byte(id))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &doc)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", domain.ErrStoreRead, id, err)
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// Put stores or replaces a document.
func (s *Store) Put(_ context.Context, doc domain.Document) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocuments).Put([]byte(doc.ID), data)
	})
	if err != nil {
		return fmt.Errorf("%w: saving %s: %w", domain.ErrStoreWrite, doc.ID, err)
	}
	return nil
}

// PutIfAbsent stores the document unless its id is present. bbolt
// serialises write transactions, so the check and the write are atomic.
func (s *Store) PutIfAbsent(_ context.Context, doc domain.Document) (bool, error) {
	data, err := encode(doc)
	if err != nil {
		return false, err
	}
	inserted := false
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocuments)
		if b.Get([]byte(doc.ID)) != nil {
			return nil
		}
		inserted = true
		return b.Put([]byte(doc.ID), data)
	})
	if err != nil {
		return false, fmt.Errorf("%w: saving %s: %w", domain.ErrStoreWrite, doc.ID, err)
	}
	return inserted, nil
}

// Scan visits every document in key order. Pages are copied out of the read
// transaction before fn runs, so fn may write to the store.
func (s *Store) Scan(ctx context.Context, fn func(domain.Document) error) error {
	var after []byte
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, last, err := s.page(after)
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
		after = last
	}
}

// Count returns the number of stored documents.
func (s *Store) Count(_ context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketDocuments).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// page returns up to scanPageSize documents with keys greater than after.
func (s *Store) page(after []byte) ([]domain.Document, []byte, error) {
	docs := make([]domain.Document, 0, scanPageSize)
	var last []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketDocuments).Cursor()
		k, v := c.First()
		if after != nil {
			k, v = c.Seek(after)
			if k != nil && bytes.Equal(k, after) {
				k, v = c.Next()
			}
		}
		for ; k != nil && len(docs) < scanPageSize; k, v = c.Next() {
			var doc domain.Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("decoding %s: %w", k, err)
			}
			docs = append(docs, doc)
			last = append(last[:0], k...)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
	}
	return docs, last, nil
}

func encode(doc domain.Document) ([]byte, error) {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %s: %w", domain.ErrStoreWrite, doc.ID, err)
	}
	return data, nil
}
