package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semsearch/internal/adapters/driven/hashing"
	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// constHasher maps every text to the same id.
type constHasher struct{}

func (constHasher) ID(string) string { return "42" }
func (constHasher) Name() string     { return "const" }

type ingestFixture struct {
	log      *callLog
	embedder *mockEmbeddingService
	store    *mockDocumentStore
	index    *mockVectorIndex
	objects  *mockObjectStore
	svc      *IngestionService
}

func newIngestFixture(policy domain.DuplicatePolicy) *ingestFixture {
	log := &callLog{}
	f := &ingestFixture{
		log:      log,
		embedder: &mockEmbeddingService{vector: []float32{0.1, 0.2, 0.3}, log: log},
		store:    newMockDocumentStore(log),
		index:    &mockVectorIndex{log: log},
		objects:  newMockObjectStore("documents"),
	}
	f.svc = NewIngestionService(
		domain.IngestSettings{Hash: domain.HashFNV64a, OnDuplicate: policy},
		hashing.FNV64a{}, f.embedder, f.store, f.index,
	)
	f.svc.SetObjectStore(f.objects)
	f.svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestIngestionService_Ingest_Success(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	ctx := context.Background()

	result, err := f.svc.Ingest(ctx, "the quick brown fox", "documents/fox.txt")

	require.NoError(t, err)
	wantID := hashing.FNV64a{}.ID("the quick brown fox")
	assert.Equal(t, wantID, result.DocumentID)
	assert.Equal(t, domain.IngestStatusIngested, result.Status)
	assert.True(t, result.Stored)
	assert.True(t, result.OK())

	doc, err := f.store.Get(ctx, wantID)
	require.NoError(t, err)
	assert.Equal(t, "the quick brown fox", doc.Text)
	assert.Equal(t, "documents/fox.txt", doc.SourceLocator)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, doc.Vector)
	assert.Equal(t, 2024, doc.CreatedAt.Year())

	entries := f.index.indexed()
	require.Len(t, entries, 1)
	assert.Equal(t, wantID, entries[0].DocumentID)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, entries[0].Vector)
}

func TestIngestionService_Ingest_StepOrder(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)

	_, err := f.svc.Ingest(context.Background(), "ordered", "")

	require.NoError(t, err)
	assert.Equal(t, []string{"exists", "embed", "put", "index"}, f.log.list())
}

func TestIngestionService_Ingest_EmptyText(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)

	result, err := f.svc.Ingest(context.Background(), "", "documents/empty.txt")

	require.NoError(t, err)
	assert.Equal(t, domain.IngestStatusEmpty, result.Status)
	assert.Empty(t, result.DocumentID)
	assert.Empty(t, f.log.list())
}

func TestIngestionService_Ingest_DuplicateSkipped(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	ctx := context.Background()

	first, err := f.svc.Ingest(ctx, "same text", "a")
	require.NoError(t, err)
	second, err := f.svc.Ingest(ctx, "same text", "b")
	require.NoError(t, err)

	assert.Equal(t, domain.IngestStatusIngested, first.Status)
	assert.Equal(t, domain.IngestStatusDuplicate, second.Status)
	assert.Equal(t, first.DocumentID, second.DocumentID)
	assert.False(t, second.Stored)
	assert.Equal(t, 1, f.embedder.calls())
	assert.Len(t, f.index.indexed(), 1)

	doc, err := f.store.Get(ctx, first.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "a", doc.SourceLocator)
}

func TestIngestionService_Ingest_DuplicateOverwritten(t *testing.T) {
	f := newIngestFixture(domain.DuplicateOverwrite)
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, "same text", "a")
	require.NoError(t, err)
	second, err := f.svc.Ingest(ctx, "same text", "b")
	require.NoError(t, err)

	assert.Equal(t, domain.IngestStatusIngested, second.Status)
	assert.Equal(t, 2, f.embedder.calls())
	assert.Len(t, f.index.indexed(), 2)

	doc, err := f.store.Get(ctx, second.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "b", doc.SourceLocator)

	count, err := f.store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIngestionService_Ingest_InvalidPolicyDefaultsToSkip(t *testing.T) {
	f := newIngestFixture("sometimes")
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, "text", "")
	require.NoError(t, err)
	result, err := f.svc.Ingest(ctx, "text", "")
	require.NoError(t, err)

	assert.Equal(t, domain.IngestStatusDuplicate, result.Status)
}

func TestIngestionService_Ingest_HashCollision(t *testing.T) {
	for _, policy := range []domain.DuplicatePolicy{domain.DuplicateSkip, domain.DuplicateOverwrite} {
		t.Run(string(policy), func(t *testing.T) {
			f := newIngestFixture(policy)
			f.svc.hasher = constHasher{}
			ctx := context.Background()

			_, err := f.svc.Ingest(ctx, "first", "")
			require.NoError(t, err)
			result, err := f.svc.Ingest(ctx, "second", "")

			assert.ErrorIs(t, err, domain.ErrHashCollision)
			assert.Equal(t, domain.IngestStatusFailed, result.Status)
			doc, getErr := f.store.Get(ctx, "42")
			require.NoError(t, getErr)
			assert.Equal(t, "first", doc.Text)
		})
	}
}

func TestIngestionService_Ingest_EmbeddingUnavailable(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	f.embedder.err = errors.New("connection refused")

	result, err := f.svc.Ingest(context.Background(), "text", "")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, domain.IngestStatusFailed, result.Status)
	assert.Equal(t, err, result.Err)
	assert.False(t, result.Stored)
	assert.Equal(t, []string{"exists", "embed"}, f.log.list())

	count, _ := f.store.Count(context.Background())
	assert.Zero(t, count)
}

func TestIngestionService_Ingest_NilEmbedder(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	svc := NewIngestionService(domain.IngestSettings{}, hashing.FNV64a{}, nil, f.store, f.index)

	result, err := svc.Ingest(context.Background(), "text", "")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, domain.IngestStatusFailed, result.Status)
}

func TestIngestionService_Ingest_EmptyVector(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	f.embedder.vector = []float32{}

	_, err := f.svc.Ingest(context.Background(), "text", "")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Empty(t, f.index.indexed())
}

func TestIngestionService_Ingest_ExistsFailure(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	f.store.existsErr = errors.New("disk on fire")

	_, err := f.svc.Ingest(context.Background(), "text", "")

	assert.ErrorIs(t, err, domain.ErrStoreRead)
	assert.Zero(t, f.embedder.calls())
}

func TestIngestionService_Ingest_StoreWriteFailure(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	f.store.putErr = errors.New("read-only filesystem")

	result, err := f.svc.Ingest(context.Background(), "text", "")

	assert.ErrorIs(t, err, domain.ErrStoreWrite)
	assert.False(t, result.Stored)
	assert.Empty(t, f.index.indexed())
	assert.Equal(t, []string{"exists", "embed", "put"}, f.log.list())
}

func TestIngestionService_Ingest_IndexFailureKeepsDocument(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	f.index.indexErr = errors.New("cluster red")
	ctx := context.Background()

	result, err := f.svc.Ingest(ctx, "text", "")

	assert.ErrorIs(t, err, domain.ErrIndex)
	assert.Equal(t, domain.IngestStatusFailed, result.Status)
	assert.True(t, result.Stored)

	exists, err := f.store.Exists(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestIngestionService_Ingest_LostWriteRace(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	ctx := context.Background()
	id := hashing.FNV64a{}.ID("racy")
	require.NoError(t, f.store.DocumentStore.Put(ctx, domain.Document{ID: id, Text: "racy"}))
	f.store.hideExisting = true

	result, err := f.svc.Ingest(ctx, "racy", "")

	require.NoError(t, err)
	assert.Equal(t, domain.IngestStatusDuplicate, result.Status)
	assert.False(t, result.Stored)
	assert.Empty(t, f.index.indexed())
}

func TestIngestionService_Ingest_Concurrent(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]domain.IngestResult, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = f.svc.Ingest(ctx, "shared text", "")
		}(i)
	}
	wg.Wait()

	ingested := 0
	for _, r := range results {
		if r.Status == domain.IngestStatusIngested {
			ingested++
		} else {
			assert.Equal(t, domain.IngestStatusDuplicate, r.Status)
		}
	}
	assert.Equal(t, 1, ingested)
	assert.Len(t, f.index.indexed(), 1)
}

func TestIngestionService_IngestBatch(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)

	report := f.svc.IngestBatch(context.Background(), []domain.SourceDocument{
		{Text: "one", SourceLocator: "b/1"},
		{Text: "", SourceLocator: "b/2"},
		{Text: "one", SourceLocator: "b/3"},
		{Text: "two", SourceLocator: "b/4"},
	})

	require.Equal(t, 4, report.Total())
	assert.Equal(t, 2, report.Ingested())
	assert.Equal(t, 1, report.Empty())
	assert.Equal(t, 1, report.Duplicates())
	assert.Zero(t, report.Failed())
	assert.NoError(t, report.Err())
	assert.Equal(t, "b/3", report.Results[2].SourceLocator)
}

func TestIngestionService_IngestBatch_FailuresDoNotStopBatch(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	f.store.putErr = errors.New("quota exceeded")

	report := f.svc.IngestBatch(context.Background(), []domain.SourceDocument{
		{Text: "one", SourceLocator: "b/1"},
		{Text: "two", SourceLocator: "b/2"},
	})

	assert.Equal(t, 2, report.Failed())
	assert.Equal(t, 2, f.embedder.calls())
	err := report.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreWrite)
	assert.Contains(t, err.Error(), "b/2")
}

func TestIngestionService_IngestBatch_CancelledContext(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := f.svc.IngestBatch(ctx, []domain.SourceDocument{{Text: "one"}, {Text: "two"}})

	assert.Equal(t, 2, report.Failed())
	assert.ErrorIs(t, report.Err(), context.Canceled)
	assert.Zero(t, f.embedder.calls())
}

func TestIngestionService_IngestPrefix(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	ctx := context.Background()
	require.NoError(t, f.objects.Put(ctx, "docs/a.txt", []byte("alpha")))
	require.NoError(t, f.objects.Put(ctx, "docs/b.txt", []byte("beta")))
	require.NoError(t, f.objects.Put(ctx, "docs/empty.txt", nil))
	require.NoError(t, f.objects.Put(ctx, "other/c.txt", []byte("gamma")))

	report, err := f.svc.IngestPrefix(ctx, "docs/")

	require.NoError(t, err)
	assert.Equal(t, 3, report.Total())
	assert.Equal(t, 2, report.Ingested())
	assert.Equal(t, 1, report.Empty())
	assert.Equal(t, "documents/docs/a.txt", report.Results[0].SourceLocator)

	doc, err := f.store.Get(ctx, hashing.FNV64a{}.ID("beta"))
	require.NoError(t, err)
	assert.Equal(t, "documents/docs/b.txt", doc.SourceLocator)
}

func TestIngestionService_IngestPrefix_InvalidUTF8(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	ctx := context.Background()
	require.NoError(t, f.objects.Put(ctx, "bin", []byte{0xff, 0xfe, 0xfd}))

	report, err := f.svc.IngestPrefix(ctx, "")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed())
	assert.ErrorIs(t, report.Results[0].Err, domain.ErrInvalidInput)
}

func TestIngestionService_IngestPrefix_ObjectErrors(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	ctx := context.Background()

	f.objects.listErr = errors.New("access denied")
	_, err := f.svc.IngestPrefix(ctx, "")
	assert.ErrorIs(t, err, domain.ErrObjectStore)

	f.objects.listErr = nil
	require.NoError(t, f.objects.Put(ctx, "a", []byte("alpha")))
	f.objects.getErr = errors.New("timeout")
	report, err := f.svc.IngestPrefix(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed())
	assert.ErrorIs(t, report.Results[0].Err, domain.ErrObjectStore)
}

func TestIngestionService_IngestPrefix_NoObjectStore(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	f.svc.SetObjectStore(nil)

	_, err := f.svc.IngestPrefix(context.Background(), "")

	assert.ErrorIs(t, err, ErrObjectStoreNotConfigured)
}

func TestIngestionService_IngestEvents(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	ctx := context.Background()
	require.NoError(t, f.objects.Put(ctx, "new.txt", []byte("fresh content")))

	report := f.svc.IngestEvents(ctx, []domain.ObjectEvent{
		{Bucket: "documents", Key: "new.txt"},
		{Bucket: "elsewhere", Key: "new.txt"},
		{Bucket: "documents", Key: "missing.txt"},
	})

	require.Equal(t, 3, report.Total())
	assert.Equal(t, domain.IngestStatusIngested, report.Results[0].Status)
	assert.Equal(t, "documents/new.txt", report.Results[0].SourceLocator)
	assert.ErrorIs(t, report.Results[1].Err, domain.ErrInvalidInput)
	assert.ErrorIs(t, report.Results[2].Err, domain.ErrNotFound)
	assert.ErrorIs(t, report.Results[2].Err, domain.ErrObjectStore)
}

func TestIngestionService_IngestEvents_NoObjectStore(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	f.svc.SetObjectStore(nil)

	report := f.svc.IngestEvents(context.Background(), []domain.ObjectEvent{{Key: "a"}})

	assert.Equal(t, 1, report.Failed())
	assert.ErrorIs(t, report.Err(), ErrObjectStoreNotConfigured)
}

func TestIngestionService_Upload(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	ctx := context.Background()

	locator, err := f.svc.Upload(ctx, "uploaded text")

	require.NoError(t, err)
	key := hashing.FNV64a{}.ID("uploaded text") + ".txt"
	assert.Equal(t, "documents/"+key, locator)

	data, err := f.objects.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "uploaded text", string(data))

	// Uploading is storage only; ingestion follows from the event.
	assert.Zero(t, f.embedder.calls())
}

func TestIngestionService_Upload_ThenEvent(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	ctx := context.Background()

	locator, err := f.svc.Upload(ctx, "round trip")
	require.NoError(t, err)
	key := locator[len("documents/"):]

	report := f.svc.IngestEvents(ctx, []domain.ObjectEvent{{Bucket: "documents", Key: key}})

	require.Equal(t, 1, report.Ingested())
	assert.Equal(t, key, report.Results[0].DocumentID+".txt")
}

func TestIngestionService_Upload_Errors(t *testing.T) {
	f := newIngestFixture(domain.DuplicateSkip)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.objects.putErr = errors.New("bucket gone")
	_, err = f.svc.Upload(ctx, "text")
	assert.ErrorIs(t, err, domain.ErrObjectStore)

	f.svc.SetObjectStore(nil)
	_, err = f.svc.Upload(ctx, "text")
	assert.ErrorIs(t, err, ErrObjectStoreNotConfigured)
}
