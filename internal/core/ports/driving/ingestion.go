package driving

import (
	"context"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// IngestionService turns raw text into stored, deduplicated, indexed documents.
type IngestionService interface {
	// Ingest runs the pipeline for one document: hash, existence check,
	// embed, store, index. Empty text is a no-op with a nil error.
	// The result is always populated; the error is set when Status is failed.
	Ingest(ctx context.Context, text, sourceLocator string) (domain.IngestResult, error)

	// IngestBatch ingests each document independently. One failure never
	// stops the rest.
	IngestBatch(ctx context.Context, docs []domain.SourceDocument) domain.BatchReport

	// IngestPrefix ingests every object under prefix in object storage.
	// Only a failure to list the prefix is returned as an error.
	IngestPrefix(ctx context.Context, prefix string) (domain.BatchReport, error)

	// IngestEvents ingests one object per storage notification.
	IngestEvents(ctx context.Context, events []domain.ObjectEvent) domain.BatchReport

	// Upload stores text as a new object named after its content id and
	// returns the locator ("bucket/<id>.txt").
	Upload(ctx context.Context, text string) (string, error)
}
