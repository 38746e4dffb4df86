package driving

import (
	"context"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// QueryService answers nearest-neighbour queries over ingested documents.
type QueryService interface {
	// Query embeds text and returns at most k hits ordered by descending
	// score. k <= 0 selects the configured default.
	Query(ctx context.Context, text string, k int) ([]domain.QueryHit, error)
}
