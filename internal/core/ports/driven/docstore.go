package driven

import (
	"context"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// DocumentStore is the durable source of truth for documents, keyed by
// content-derived id. Adapters wrap their failures in domain.ErrStoreRead
// or domain.ErrStoreWrite.
type DocumentStore interface {
	// Exists reports whether a document with the given id is stored.
	Exists(ctx context.Context, id string) (bool, error)

	// Get retrieves a document by id.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Put stores a document, replacing any existing record with the same id.
	Put(ctx context.Context, doc domain.Document) error

	// PutIfAbsent stores the document only if no record with its id exists.
	// It reports whether the write happened. This is the conditional write
	// that makes concurrent ingestion of the same text safe.
	PutIfAbsent(ctx context.Context, doc domain.Document) (bool, error)

	// Scan calls fn for every stored document. Iteration stops at the
	// first error returned by fn.
	Scan(ctx context.Context, fn func(domain.Document) error) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
