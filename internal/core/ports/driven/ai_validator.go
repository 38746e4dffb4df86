package driven

import (
	"context"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// EmbeddingValidator checks that an embedding configuration reaches a
// working provider.
type EmbeddingValidator interface {
	// ValidateEmbedding builds the provider from config and pings it.
	ValidateEmbedding(ctx context.Context, config *domain.EmbeddingSettings) error
}
