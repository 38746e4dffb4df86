package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
	"github.com/custodia-labs/semsearch/internal/core/ports/driving"
	"github.com/custodia-labs/semsearch/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService embeds query text and asks the vector index for neighbours.
// It never reads the document store, so query latency does not depend on
// text retrieval.
type QueryService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	topK     int
}

// NewQueryService creates a new query service.
func NewQueryService(
	settings domain.QuerySettings,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
) *QueryService {
	topK := settings.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &QueryService{
		embedder: embedder,
		index:    index,
		topK:     topK,
	}
}

// Query returns at most k hits ordered by descending score.
func (s *QueryService) Query(ctx context.Context, text string, k int) ([]domain.QueryHit, error) {
	logger.Section("Query Execution")
	logger.Debug("Query: %q", text)

	if text == "" {
		return nil, fmt.Errorf("%w: query text is empty", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = s.topK
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no provider configured", domain.ErrEmbeddingUnavailable)
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", classify(err, domain.ErrEmbeddingUnavailable))
	}
	logger.Debug("Query embedding: %d dimensions", len(vector))

	hits, err := s.index.Query(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", classify(err, domain.ErrIndex))
	}

	results := make([]domain.QueryHit, 0, min(len(hits), k))
	for _, hit := range hits {
		if len(results) == k {
			break
		}
		results = append(results, domain.QueryHit{Score: hit.Score, DocumentID: hit.DocumentID})
	}

	logger.Debug("Returning %d hits", len(results))
	return results, nil
}
