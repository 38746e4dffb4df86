// Package ai builds the embedding service selected by settings.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/semsearch/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/semsearch/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/semsearch/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the provider client named in settings,
// wrapped in a rate limiter when RatePerSecond is set.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding provider not configured. Run 'semsearch settings set embedding.provider ollama' to fix",
			domain.ErrEmbeddingUnavailable)
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})
	case domain.AIProviderOpenAI:
		svc, err = openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})
	default:
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return ratelimit.Wrap(svc, ratelimit.Config{
		RequestsPerSecond: settings.RatePerSecond,
		Burst:             settings.Burst,
	}), nil
}

// CreateAndValidateEmbeddingService creates an embedding service and pings it.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("service unreachable (%w). Check embedding.base_url and the API key", err)
	}
	return svc, nil
}
