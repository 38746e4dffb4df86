package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

func TestVectorIndex_Query_OrdersByScore(t *testing.T) {
	index := NewVectorIndex(0)
	ctx := context.Background()

	require.NoError(t, index.Index(ctx, domain.IndexEntry{DocumentID: "x", Vector: []float32{1, 0}}))
	require.NoError(t, index.Index(ctx, domain.IndexEntry{DocumentID: "y", Vector: []float32{0, 1}}))
	require.NoError(t, index.Index(ctx, domain.IndexEntry{DocumentID: "xy", Vector: []float32{1, 1}}))

	hits, err := index.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "x", hits[0].DocumentID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, "xy", hits[1].DocumentID)
	assert.InDelta(t, 0.7071, hits[1].Score, 1e-3)
	assert.Equal(t, "y", hits[2].DocumentID)
	assert.InDelta(t, 0.0, hits[2].Score, 1e-6)
}

func TestVectorIndex_Query_LimitsToK(t *testing.T) {
	index := NewVectorIndex(2)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, index.Index(ctx, domain.IndexEntry{DocumentID: id, Vector: []float32{1, 1}}))
	}

	hits, err := index.Query(ctx, []float32{1, 1}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "a", hits[0].DocumentID)
}

func TestVectorIndex_Query_FewerThanK(t *testing.T) {
	index := NewVectorIndex(0)
	ctx := context.Background()
	require.NoError(t, index.Index(ctx, domain.IndexEntry{DocumentID: "a", Vector: []float32{1}}))

	hits, err := index.Query(ctx, []float32{1}, 3)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestVectorIndex_Query_Empty(t *testing.T) {
	hits, err := NewVectorIndex(0).Query(context.Background(), []float32{1}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestVectorIndex_Index_ReplacesSameID(t *testing.T) {
	index := NewVectorIndex(0)
	ctx := context.Background()

	require.NoError(t, index.Index(ctx, domain.IndexEntry{DocumentID: "a", Vector: []float32{1, 0}}))
	require.NoError(t, index.Index(ctx, domain.IndexEntry{DocumentID: "a", Vector: []float32{0, 1}}))

	assert.Equal(t, 1, index.Len())
	hits, err := index.Query(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestVectorIndex_DimensionMismatch(t *testing.T) {
	index := NewVectorIndex(2)
	ctx := context.Background()

	err := index.Index(ctx, domain.IndexEntry{DocumentID: "a", Vector: []float32{1, 2, 3}})
	assert.ErrorIs(t, err, domain.ErrIndex)

	_, err = index.Query(ctx, []float32{1}, 3)
	assert.ErrorIs(t, err, domain.ErrIndex)
}

func TestVectorIndex_RejectsIncompleteEntries(t *testing.T) {
	index := NewVectorIndex(0)

	err := index.Index(context.Background(), domain.IndexEntry{DocumentID: "a"})
	assert.ErrorIs(t, err, domain.ErrIndex)

	err = index.Index(context.Background(), domain.IndexEntry{Vector: []float32{1}})
	assert.ErrorIs(t, err, domain.ErrIndex)
}

func TestVectorIndex_BulkIndex_PartialFailure(t *testing.T) {
	index := NewVectorIndex(2)

	accepted, err := index.BulkIndex(context.Background(), []domain.IndexEntry{
		{DocumentID: "a", Vector: []float32{1, 0}},
		{DocumentID: "b", Vector: []float32{1}},
		{DocumentID: "c", Vector: []float32{0, 1}},
	})

	assert.ErrorIs(t, err, domain.ErrIndex)
	assert.Equal(t, 2, accepted)
	assert.Equal(t, 2, index.Len())
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1}, []float32{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}
