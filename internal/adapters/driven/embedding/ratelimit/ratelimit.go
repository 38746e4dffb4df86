// Package ratelimit wraps an EmbeddingService with a token bucket so bulk
// ingestion stays under the provider's request quota.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Config holds the token bucket parameters.
type Config struct {
	// RequestsPerSecond is the sustained rate.
	RequestsPerSecond float64

	// Burst is the maximum number of requests allowed at once. Values
	// below 1 are raised to 1.
	Burst int
}

// EmbeddingService delays calls to the wrapped service so they never
// exceed the configured rate. One request costs one token regardless of
// batch size.
type EmbeddingService struct {
	next    driven.EmbeddingService
	limiter *rate.Limiter
}

// Wrap returns next unchanged when RequestsPerSecond is not positive.
func Wrap(next driven.EmbeddingService, cfg Config) driven.EmbeddingService {
	if cfg.RequestsPerSecond <= 0 {
		return next
	}
	return New(next, cfg)
}

// New creates a rate-limited embedding service.
func New(next driven.EmbeddingService, cfg Config) *EmbeddingService {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &EmbeddingService{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
	}
}

func (s *EmbeddingService) wait(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// Embed waits for a token and delegates.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.next.Embed(ctx, text)
}

// EmbedBatch waits for a token and delegates.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.next.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.next.Dimensions()
}

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string {
	return s.next.ModelName()
}

// Ping is not rate limited.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error {
	return s.next.Close()
}
