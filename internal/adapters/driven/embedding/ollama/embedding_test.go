package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewEmbeddingService(Config{BaseURL: server.URL + "/"})
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, 768, svc.Dimensions())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.NoError(t, svc.Close())
}

func TestNewEmbeddingService_KnownModelDimensions(t *testing.T) {
	assert.Equal(t, 384, NewEmbeddingService(Config{Model: "all-minilm"}).Dimensions())
	assert.Equal(t, 1024, NewEmbeddingService(Config{Model: "mxbai-embed-large"}).Dimensions())
	assert.Equal(t, 64, NewEmbeddingService(Config{Model: "custom", Dimensions: 64}).Dimensions())
	assert.Equal(t, 1024, NewEmbeddingService(Config{Model: "mxbai-embed-large:latest"}).Dimensions())
}

func TestNewEmbeddingService_UnknownModelReportsZero(t *testing.T) {
	assert.Zero(t, NewEmbeddingService(Config{Model: "bge-m3"}).Dimensions())
	assert.Zero(t, NewEmbeddingService(Config{Model: "bge-m3:567m"}).Dimensions())
}

func TestEmbed_Success(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req embedRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "hello", req.Prompt)
		_, _ = io.WriteString(w, `{"embedding":[1,0.5]}`)
	})

	vec, err := svc.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0.5}, vec)
}

func TestEmbed_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `model not found`},
		{"malformed", http.StatusOK, `{"embedding":`},
		{"empty", http.StatusOK, `{"embedding":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := svc.Embed(context.Background(), "x")

			assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		})
	}
}

func TestEmbedBatch(t *testing.T) {
	calls := 0
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = io.WriteString(w, `{"embedding":[1]}`)
	})

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})

	require.NoError(t, err)
	assert.Len(t, vecs, 3)
	assert.Equal(t, 3, calls)
}

func TestEmbedBatch_StopsOnError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "embed text 0")
}

func TestPing(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
		})
		assert.NoError(t, svc.Ping(context.Background()))
	})

	t.Run("down", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		assert.ErrorIs(t, svc.Ping(context.Background()), domain.ErrEmbeddingUnavailable)
	})
}
