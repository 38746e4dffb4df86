package tui

import "github.com/custodia-labs/semsearch/internal/core/domain"

// QueryCompleted carries query results back to the model.
type QueryCompleted struct {
	Query string
	Hits  []domain.QueryHit
	Err   error
}

// DocumentLoaded carries a fetched document back to the model.
type DocumentLoaded struct {
	DocumentID string
	Document   *domain.Document
	Err        error
}
