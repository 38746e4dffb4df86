package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

type countingEmbedder struct {
	calls  int
	closed bool
}

func (c *countingEmbedder) Embed(context.Context, string) ([]float32, error) {
	c.calls++
	return []float32{1}, nil
}

func (c *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int            { return 1 }
func (c *countingEmbedder) ModelName() string          { return "counting" }
func (c *countingEmbedder) Ping(context.Context) error { return nil }

func (c *countingEmbedder) Close() error {
	c.closed = true
	return nil
}

func TestWrap_Disabled(t *testing.T) {
	next := &countingEmbedder{}
	assert.Same(t, next, Wrap(next, Config{}))
}

func TestWrap_Enabled(t *testing.T) {
	next := &countingEmbedder{}
	wrapped := Wrap(next, Config{RequestsPerSecond: 10, Burst: 2})

	_, ok := wrapped.(*EmbeddingService)
	assert.True(t, ok)
	assert.Equal(t, 1, wrapped.Dimensions())
	assert.Equal(t, "counting", wrapped.ModelName())
	assert.NoError(t, wrapped.Ping(context.Background()))
	assert.NoError(t, wrapped.Close())
	assert.True(t, next.closed)
}

func TestEmbed_WithinBurst(t *testing.T) {
	next := &countingEmbedder{}
	svc := New(next, Config{RequestsPerSecond: 1, Burst: 3})

	for i := 0; i < 3; i++ {
		_, err := svc.Embed(context.Background(), "x")
		require.NoError(t, err)
	}
	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Equal(t, 4, next.calls)
}

func TestEmbed_CancelledWhileWaiting(t *testing.T) {
	next := &countingEmbedder{}
	svc := New(next, Config{RequestsPerSecond: 0.01, Burst: 0})

	_, err := svc.Embed(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Embed(ctx, "second")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, 1, next.calls)
}
