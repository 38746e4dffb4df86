package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"reachable", http.StatusOK, nil},
		{"provider down", http.StatusBadGateway, domain.ErrEmbeddingUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/tags", r.URL.Path)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			err := NewConfigValidator().ValidateEmbedding(context.Background(), &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  server.URL,
			})

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConfigValidator_Unconfigured(t *testing.T) {
	err := NewConfigValidator().ValidateEmbedding(context.Background(), &domain.EmbeddingSettings{})

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
