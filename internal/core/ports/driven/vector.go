package driven

import (
	"context"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// VectorIndex provides nearest-neighbour search over document vectors.
// It is derived data: everything in it can be rebuilt from DocumentStore.
// Adapters wrap their failures in domain.ErrIndex.
type VectorIndex interface {
	// Index adds one entry. Indexing the same id twice is backend-defined:
	// some replace, some keep both.
	Index(ctx context.Context, entry domain.IndexEntry) error

	// BulkIndex adds many entries and returns how many were accepted.
	BulkIndex(ctx context.Context, entries []domain.IndexEntry) (int, error)

	// Query finds the k nearest entries to the query vector, ordered by
	// descending Score. Returns all entries when fewer than k exist.
	Query(ctx context.Context, vector []float32, k int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// DocumentID is the matched document.
	DocumentID string

	// Score is the cosine similarity, higher is closer.
	Score float64
}
