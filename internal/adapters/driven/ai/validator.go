package ai

import (
	"context"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.EmbeddingValidator = (*ConfigValidator)(nil)

// ConfigValidator validates embedding configurations by pinging the provider.
type ConfigValidator struct{}

// NewConfigValidator creates a new embedding config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding creates the configured provider, pings it and closes it.
func (v *ConfigValidator) ValidateEmbedding(ctx context.Context, config *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(ctx, config)
	if err != nil {
		return err
	}
	return svc.Close()
}
