package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/semsearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
)

// callLog records the order in which collaborators are invoked.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	vector []float32
	err    error
	log    *callLog

	mu    sync.Mutex
	texts []string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.log.add("embed")
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.vector != nil {
		return m.vector, nil
	}
	// Derive a distinct vector from the text so different documents rank apart.
	return []float32{float32(len(text)), 1}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return len(m.vector) }

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return m.err }

func (m *mockEmbeddingService) Close() error { return nil }

func (m *mockEmbeddingService) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits     []driven.VectorHit
	queryErr error
	indexErr error
	// bulkReject rejects entries whose id is listed.
	bulkReject map[string]bool
	log        *callLog

	mu      sync.Mutex
	entries []domain.IndexEntry
	k       int
}

func (m *mockVectorIndex) Index(_ context.Context, entry domain.IndexEntry) error {
	m.log.add("index")
	if m.indexErr != nil {
		return m.indexErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockVectorIndex) BulkIndex(_ context.Context, entries []domain.IndexEntry) (int, error) {
	if m.indexErr != nil {
		return 0, m.indexErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	accepted := 0
	for _, e := range entries {
		if m.bulkReject[e.DocumentID] {
			continue
		}
		m.entries = append(m.entries, e)
		accepted++
	}
	if accepted < len(entries) {
		return accepted, domain.ErrIndex
	}
	return accepted, nil
}

func (m *mockVectorIndex) Query(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	m.k = k
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.hits, nil
}

func (m *mockVectorIndex) Close() error { return nil }

func (m *mockVectorIndex) indexed() []domain.IndexEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.IndexEntry(nil), m.entries...)
}

// mockDocumentStore wraps the memory store with injectable failures.
type mockDocumentStore struct {
	*memory.DocumentStore
	existsErr error
	getErr    error
	putErr    error
	scanErr   error
	// hideExisting makes Exists report false, simulating a concurrent writer
	// that lands between Exists and PutIfAbsent.
	hideExisting bool
	log          *callLog
}

func newMockDocumentStore(log *callLog) *mockDocumentStore {
	return &mockDocumentStore{DocumentStore: memory.NewDocumentStore(), log: log}
}

func (m *mockDocumentStore) Exists(ctx context.Context, id string) (bool, error) {
	m.log.add("exists")
	if m.existsErr != nil {
		return false, m.existsErr
	}
	if m.hideExisting {
		return false, nil
	}
	return m.DocumentStore.Exists(ctx, id)
}

func (m *mockDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.DocumentStore.Get(ctx, id)
}

func (m *mockDocumentStore) Put(ctx context.Context, doc domain.Document) error {
	m.log.add("put")
	if m.putErr != nil {
		return m.putErr
	}
	return m.DocumentStore.Put(ctx, doc)
}

func (m *mockDocumentStore) PutIfAbsent(ctx context.Context, doc domain.Document) (bool, error) {
	m.log.add("put")
	if m.putErr != nil {
		return false, m.putErr
	}
	return m.DocumentStore.PutIfAbsent(ctx, doc)
}

func (m *mockDocumentStore) Scan(ctx context.Context, fn func(domain.Document) error) error {
	if m.scanErr != nil {
		return m.scanErr
	}
	return m.DocumentStore.Scan(ctx, fn)
}

// mockObjectStore wraps the memory object store with injectable failures.
type mockObjectStore struct {
	*memory.ObjectStore
	listErr error
	getErr  error
	putErr  error
}

func newMockObjectStore(bucket string) *mockObjectStore {
	return &mockObjectStore{ObjectStore: memory.NewObjectStore(bucket)}
}

func (m *mockObjectStore) List(ctx context.Context, prefix string) ([]driven.ObjectInfo, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.ObjectStore.List(ctx, prefix)
}

func (m *mockObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.ObjectStore.Get(ctx, key)
}

func (m *mockObjectStore) Put(ctx context.Context, key string, data []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	return m.ObjectStore.Put(ctx, key, data)
}
