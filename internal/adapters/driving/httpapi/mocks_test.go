package httpapi

import (
	"context"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	hits  []domain.QueryHit
	err   error
	gotK  int
	gotIn string
}

func (m *mockQueryService) Query(_ context.Context, text string, k int) ([]domain.QueryHit, error) {
	m.gotIn = text
	m.gotK = k
	return m.hits, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	document *domain.Document
	count    int
	err      error
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Count(_ context.Context) (int, error) {
	return m.count, m.err
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	result  domain.IngestResult
	locator string
	err     error
}

func (m *mockIngestionService) Ingest(_ context.Context, _, _ string) (domain.IngestResult, error) {
	return m.result, m.err
}

func (m *mockIngestionService) IngestBatch(_ context.Context, _ []domain.SourceDocument) domain.BatchReport {
	return domain.BatchReport{}
}

func (m *mockIngestionService) IngestPrefix(_ context.Context, _ string) (domain.BatchReport, error) {
	return domain.BatchReport{}, m.err
}

func (m *mockIngestionService) IngestEvents(_ context.Context, _ []domain.ObjectEvent) domain.BatchReport {
	return domain.BatchReport{}
}

func (m *mockIngestionService) Upload(_ context.Context, _ string) (string, error) {
	return m.locator, m.err
}
