package driving

import (
	"context"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment
	// overrides applied.
	Get() (*domain.AppSettings, error)

	// Set validates and persists a single setting by its dotted key
	// (e.g., "embedding.provider").
	Set(key, value string) error

	// Keys returns every settable key in display order.
	Keys() []string

	// Validate checks that the current settings can build a pipeline.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig pings the configured embedding provider.
	ValidateEmbeddingConfig(ctx context.Context) error
}
