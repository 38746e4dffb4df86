package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
	"github.com/custodia-labs/semsearch/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService resolves document ids against the document store.
type DocumentService struct {
	docStore driven.DocumentStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore) *DocumentService {
	return &DocumentService{docStore: docStore}
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is empty", domain.ErrInvalidInput)
	}
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}

	doc, err := s.docStore.Get(ctx, documentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, classify(err, domain.ErrStoreRead)
	}
	return doc, nil
}

// Count returns the number of stored documents.
func (s *DocumentService) Count(ctx context.Context) (int, error) {
	if s.docStore == nil {
		return 0, domain.ErrNotImplemented
	}
	n, err := s.docStore.Count(ctx)
	if err != nil {
		return 0, classify(err, domain.ErrStoreRead)
	}
	return n, nil
}
