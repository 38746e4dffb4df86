package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
	"github.com/custodia-labs/semsearch/internal/core/ports/driving"
	"github.com/custodia-labs/semsearch/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// uploadSuffix is appended to the content id to name uploaded objects.
const uploadSuffix = ".txt"

// IngestionService runs the deduplicated ingestion pipeline.
type IngestionService struct {
	hasher   driven.ContentHasher
	embedder driven.EmbeddingService
	docStore driven.DocumentStore
	index    driven.VectorIndex
	objects  driven.ObjectStore
	policy   domain.DuplicatePolicy
	now      func() time.Time
}

// NewIngestionService creates a new ingestion service.
// The embedder may be nil; every ingestion then fails with
// domain.ErrEmbeddingUnavailable.
func NewIngestionService(
	settings domain.IngestSettings,
	hasher driven.ContentHasher,
	embedder driven.EmbeddingService,
	docStore driven.DocumentStore,
	index driven.VectorIndex,
) *IngestionService {
	policy := settings.OnDuplicate
	if !policy.IsValid() {
		policy = domain.DuplicateSkip
	}
	return &IngestionService{
		hasher:   hasher,
		embedder: embedder,
		docStore: docStore,
		index:    index,
		policy:   policy,
		now:      time.Now,
	}
}

// SetObjectStore sets the object store used by prefix, event and upload ingestion.
func (s *IngestionService) SetObjectStore(store driven.ObjectStore) {
	s.objects = store
}

// Ingest runs the pipeline for one document.
// Steps run strictly in order: exists, embed, store, index.
func (s *IngestionService) Ingest(ctx context.Context, text, sourceLocator string) (domain.IngestResult, error) {
	result := domain.IngestResult{SourceLocator: sourceLocator}

	if text == "" {
		logger.Debug("Skipping empty document: %s", sourceLocator)
		result.Status = domain.IngestStatusEmpty
		return result, nil
	}

	id := s.hasher.ID(text)
	result.DocumentID = id

	exists, err := s.docStore.Exists(ctx, id)
	if err != nil {
		return fail(result, fmt.Errorf("check existence: %w", classify(err, domain.ErrStoreRead)))
	}

	if exists {
		existing, err := s.docStore.Get(ctx, id)
		if err != nil {
			return fail(result, fmt.Errorf("load existing: %w", classify(err, domain.ErrStoreRead)))
		}
		if existing.Text != text {
			return fail(result, fmt.Errorf("%w: id %s already holds different text", domain.ErrHashCollision, id))
		}
		if s.policy == domain.DuplicateSkip {
			logger.Debug("Already present: %s (%s)", id, sourceLocator)
			result.Status = domain.IngestStatusDuplicate
			return result, nil
		}
		logger.Debug("Overwriting: %s (%s)", id, sourceLocator)
	}

	if s.embedder == nil {
		return fail(result, fmt.Errorf("%w: no provider configured", domain.ErrEmbeddingUnavailable))
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fail(result, fmt.Errorf("embed: %w", classify(err, domain.ErrEmbeddingUnavailable)))
	}
	if len(vector) == 0 {
		return fail(result, fmt.Errorf("embed: %w: empty vector", domain.ErrEmbeddingUnavailable))
	}

	doc := domain.Document{
		ID:            id,
		Text:          text,
		Vector:        vector,
		SourceLocator: sourceLocator,
		CreatedAt:     s.now().UTC(),
	}

	if exists {
		if err := s.docStore.Put(ctx, doc); err != nil {
			return fail(result, fmt.Errorf("store: %w", classify(err, domain.ErrStoreWrite)))
		}
	} else {
		inserted, err := s.docStore.PutIfAbsent(ctx, doc)
		if err != nil {
			return fail(result, fmt.Errorf("store: %w", classify(err, domain.ErrStoreWrite)))
		}
		if !inserted {
			// A concurrent ingestion stored the same id between Exists and here.
			logger.Debug("Lost write race, already present: %s", id)
			result.Status = domain.IngestStatusDuplicate
			return result, nil
		}
	}
	result.Stored = true

	if err := s.index.Index(ctx, doc.IndexEntry()); err != nil {
		return fail(result, fmt.Errorf("index: %w", classify(err, domain.ErrIndex)))
	}

	logger.Debug("Ingested: %s (%s)", id, sourceLocator)
	result.Status = domain.IngestStatusIngested
	return result, nil
}

// IngestBatch ingests each document independently.
func (s *IngestionService) IngestBatch(ctx context.Context, docs []domain.SourceDocument) domain.BatchReport {
	logger.Section("Batch Ingestion")
	var report domain.BatchReport

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			report.Add(domain.IngestResult{
				SourceLocator: doc.SourceLocator,
				Status:        domain.IngestStatusFailed,
				Err:           err,
			})
			continue
		}
		result, err := s.Ingest(ctx, doc.Text, doc.SourceLocator)
		if err != nil {
			logger.Warn("Failed to ingest %s: %v", doc.SourceLocator, err)
		}
		report.Add(result)
	}

	logBatch(&report)
	return report
}

// IngestPrefix ingests every object under prefix.
func (s *IngestionService) IngestPrefix(ctx context.Context, prefix string) (domain.BatchReport, error) {
	logger.Section("Prefix Ingestion")
	var report domain.BatchReport

	if s.objects == nil {
		return report, ErrObjectStoreNotConfigured
	}

	objects, err := s.objects.List(ctx, prefix)
	if err != nil {
		return report, fmt.Errorf("list %q: %w", prefix, classify(err, domain.ErrObjectStore))
	}
	logger.Info("Found %d objects under %q in %s", len(objects), prefix, s.objects.Bucket())

	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			report.Add(domain.IngestResult{
				SourceLocator: s.objects.Locator(obj.Key),
				Status:        domain.IngestStatusFailed,
				Err:           err,
			})
			continue
		}
		report.Add(s.ingestObject(ctx, obj.Key))
	}

	logBatch(&report)
	return report, nil
}

// IngestEvents ingests one object per storage notification.
func (s *IngestionService) IngestEvents(ctx context.Context, events []domain.ObjectEvent) domain.BatchReport {
	var report domain.BatchReport

	for _, ev := range events {
		if s.objects == nil {
			report.Add(domain.IngestResult{
				SourceLocator: ev.Key,
				Status:        domain.IngestStatusFailed,
				Err:           ErrObjectStoreNotConfigured,
			})
			continue
		}
		if ev.Bucket != "" && ev.Bucket != s.objects.Bucket() {
			err := fmt.Errorf("%w: event for bucket %q, serving %q", domain.ErrInvalidInput, ev.Bucket, s.objects.Bucket())
			logger.Warn("Ignoring event for %s/%s: %v", ev.Bucket, ev.Key, err)
			report.Add(domain.IngestResult{
				SourceLocator: ev.Bucket + "/" + ev.Key,
				Status:        domain.IngestStatusFailed,
				Err:           err,
			})
			continue
		}
		report.Add(s.ingestObject(ctx, ev.Key))
	}

	return report
}

// Upload stores text as an object named after its content id.
func (s *IngestionService) Upload(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("%w: document text is empty", domain.ErrInvalidInput)
	}
	if s.objects == nil {
		return "", ErrObjectStoreNotConfigured
	}

	key := s.hasher.ID(text) + uploadSuffix
	if err := s.objects.Put(ctx, key, []byte(text)); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, classify(err, domain.ErrObjectStore))
	}

	locator := s.objects.Locator(key)
	logger.Debug("Uploaded: %s", locator)
	return locator, nil
}

// ingestObject reads one object and ingests its content.
func (s *IngestionService) ingestObject(ctx context.Context, key string) domain.IngestResult {
	locator := s.objects.Locator(key)

	data, err := s.objects.Get(ctx, key)
	if err != nil {
		err = fmt.Errorf("read object: %w", classify(err, domain.ErrObjectStore))
		logger.Warn("Failed to ingest %s: %v", locator, err)
		return domain.IngestResult{SourceLocator: locator, Status: domain.IngestStatusFailed, Err: err}
	}
	if !utf8.Valid(data) {
		err := fmt.Errorf("%w: object is not valid UTF-8", domain.ErrInvalidInput)
		logger.Warn("Failed to ingest %s: %v", locator, err)
		return domain.IngestResult{SourceLocator: locator, Status: domain.IngestStatusFailed, Err: err}
	}

	result, err := s.Ingest(ctx, string(data), locator)
	if err != nil {
		logger.Warn("Failed to ingest %s: %v", locator, err)
	}
	return result
}

// fail marks result as failed with err and returns both.
func fail(result domain.IngestResult, err error) (domain.IngestResult, error) {
	result.Status = domain.IngestStatusFailed
	result.Err = err
	return result, err
}

func logBatch(report *domain.BatchReport) {
	logger.Info("Batch complete: %d ingested, %d duplicates, %d empty, %d failed",
		report.Ingested(), report.Duplicates(), report.Empty(), report.Failed())
}
