package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// testDSNEnv names a disposable database with the pgvector extension available.
const testDSNEnv = "SEMSEARCH_TEST_POSTGRES_DSN"

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDSNEnv)
	}

	store, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	_, err = store.db.Exec(`TRUNCATE documents`)
	require.NoError(t, err)
	_, _ = store.db.Exec(`DROP TABLE IF EXISTS document_vectors`)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestStore_PutGetExists(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	doc := domain.Document{ID: "1", Text: "hello", Vector: []float32{1, 2}, SourceLocator: "b/k"}

	exists, err := store.Exists(ctx, "1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Put(ctx, doc))

	got, err := store.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, []float32{1, 2}, got.Vector)
	assert.Equal(t, "b/k", got.SourceLocator)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_PutIfAbsent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	inserted, err := store.PutIfAbsent(ctx, domain.Document{ID: "1", Text: "first"})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.PutIfAbsent(ctx, domain.Document{ID: "1", Text: "second"})
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestStore_ScanAndCount(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Put(ctx, domain.Document{ID: fmt.Sprint(i), Text: "t"}))
	}

	var ids []string
	require.NoError(t, store.Scan(ctx, func(d domain.Document) error {
		ids = append(ids, d.ID)
		return nil
	}))
	assert.Equal(t, []string{"0", "1", "2"}, ids)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestVectorIndex_Query(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	index, err := NewVectorIndex(ctx, store, 2)
	require.NoError(t, err)

	accepted, err := index.BulkIndex(ctx, []domain.IndexEntry{
		{DocumentID: "x", Vector: []float32{1, 0}},
		{DocumentID: "y", Vector: []float32{0, 1}},
		{DocumentID: "bad", Vector: []float32{1}},
	})
	assert.ErrorIs(t, err, domain.ErrIndex)
	assert.Equal(t, 2, accepted)

	hits, err := index.Query(ctx, []float32{1, 0.1}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "x", hits[0].DocumentID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestVectorEncoding(t *testing.T) {
	v := []float32{0.5, -2, 1e-3}
	assert.Equal(t, v, decodeVector(encodeVector(v)))
	assert.Nil(t, encodeVector(nil))
	assert.Nil(t, decodeVector(nil))
}

func TestFormatVector(t *testing.T) {
	assert.Equal(t, "[0.1,-2,3.5]", formatVector([]float32{0.1, -2, 3.5}))
	assert.Equal(t, "[]", formatVector(nil))
}

func TestVectorIndex_Check(t *testing.T) {
	index := &VectorIndex{dimensions: 2}

	assert.NoError(t, index.check(domain.IndexEntry{DocumentID: "a", Vector: []float32{1, 2}}))
	assert.ErrorIs(t, index.check(domain.IndexEntry{DocumentID: "a", Vector: []float32{1}}), domain.ErrIndex)
	assert.ErrorIs(t, index.check(domain.IndexEntry{Vector: []float32{1, 2}}), domain.ErrIndex)
}
