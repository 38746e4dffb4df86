package driving

import (
	"context"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// DocumentService resolves document ids to stored documents.
type DocumentService interface {
	// Get retrieves a document by ID.
	// Returns domain.ErrNotFound if the id was never ingested.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}
