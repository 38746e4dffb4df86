package services

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
	"github.com/custodia-labs/semsearch/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDimensions = "embedding.dimensions"
	keyEmbedRate       = "embedding.rate_per_second"
	keyEmbedBurst      = "embedding.burst"
	keyStoreBackend    = "store.backend"
	keyStorePath       = "store.path"
	keyStoreDSN        = "store.dsn"
	keyIndexBackend    = "index.backend"
	keyIndexEndpoint   = "index.endpoint"
	keyIndexName       = "index.name"
	keyIndexUsername   = "index.username"
	keyIndexPassword   = "index.password"
	keyObjectsBackend  = "objects.backend"
	keyObjectsBucket   = "objects.bucket"
	keyObjectsRoot     = "objects.root"
	keyObjectsCreds    = "objects.credentials_file"
	keyObjectsToken    = "objects.access_token"
	keyIngestHash      = "ingest.hash"
	keyIngestDuplicate = "ingest.on_duplicate"
	keyQueryTopK       = "query.top_k"
	keyServerAddr      = "server.addr"
)

// Environment variables that override stored settings.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvEmbeddingAPIKey = "SEMSEARCH_EMBEDDING_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvStoreDSN        = "SEMSEARCH_STORE_DSN"
	EnvIndexPassword   = "SEMSEARCH_INDEX_PASSWORD"
	EnvObjectsToken    = "SEMSEARCH_OBJECTS_ACCESS_TOKEN"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
)

// settingDef describes one settable key.
type settingDef struct {
	key      string
	kind     settingKind
	validate func(string) bool
}

var settingDefs = []settingDef{
	{key: keyEmbedProvider, validate: func(v string) bool { return domain.AIProvider(v).IsValid() }},
	{key: keyEmbedModel},
	{key: keyEmbedBaseURL},
	{key: keyEmbedAPIKey},
	{key: keyEmbedDimensions, kind: kindInt},
	{key: keyEmbedRate, kind: kindFloat},
	{key: keyEmbedBurst, kind: kindInt},
	{key: keyStoreBackend, validate: func(v string) bool { return domain.StoreBackend(v).IsValid() }},
	{key: keyStorePath},
	{key: keyStoreDSN},
	{key: keyIndexBackend, validate: func(v string) bool { return domain.IndexBackend(v).IsValid() }},
	{key: keyIndexEndpoint},
	{key: keyIndexName},
	{key: keyIndexUsername},
	{key: keyIndexPassword},
	{key: keyObjectsBackend, validate: func(v string) bool { return domain.ObjectBackend(v).IsValid() }},
	{key: keyObjectsBucket},
	{key: keyObjectsRoot},
	{key: keyObjectsCreds},
	{key: keyObjectsToken},
	{key: keyIngestHash, validate: func(v string) bool { return domain.HashAlgorithm(v).IsValid() }},
	{key: keyIngestDuplicate, validate: func(v string) bool { return domain.DuplicatePolicy(v).IsValid() }},
	{key: keyQueryTopK, kind: kindInt},
	{key: keyServerAddr},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EmbeddingValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service. validator may be nil,
// in which case ValidateEmbeddingConfig only checks the stored values.
func NewSettingsService(configStore driven.ConfigStore, validator driven.EmbeddingValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
		getenv:      os.Getenv,
	}
}

// SetEnvLookup replaces the environment lookup. Used in tests.
func (s *SettingsService) SetEnvLookup(fn func(string) string) {
	s.getenv = fn
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:      domain.AIProvider(s.configStore.GetString(keyEmbedProvider)),
			Model:         s.configStore.GetString(keyEmbedModel),
			BaseURL:       s.configStore.GetString(keyEmbedBaseURL),
			APIKey:        s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:    s.configStore.GetInt(keyEmbedDimensions),
			RatePerSecond: s.configStore.GetFloat(keyEmbedRate),
			Burst:         s.configStore.GetInt(keyEmbedBurst),
		},
		Store: domain.StoreSettings{
			Backend: domain.StoreBackend(s.getString(keyStoreBackend, string(defaults.Store.Backend))),
			Path:    s.configStore.GetString(keyStorePath),
			DSN:     s.configStore.GetString(keyStoreDSN),
		},
		Index: domain.IndexSettings{
			Backend:  domain.IndexBackend(s.getString(keyIndexBackend, string(defaults.Index.Backend))),
			Endpoint: s.configStore.GetString(keyIndexEndpoint),
			Name:     s.getString(keyIndexName, defaults.Index.Name),
			Username: s.configStore.GetString(keyIndexUsername),
			Password: s.configStore.GetString(keyIndexPassword),
		},
		Objects: domain.ObjectStoreSettings{
			Backend:         domain.ObjectBackend(s.getString(keyObjectsBackend, string(defaults.Objects.Backend))),
			Bucket:          s.getString(keyObjectsBucket, defaults.Objects.Bucket),
			Root:            s.configStore.GetString(keyObjectsRoot),
			CredentialsFile: s.configStore.GetString(keyObjectsCreds),
			AccessToken:     s.configStore.GetString(keyObjectsToken),
		},
		Ingest: domain.IngestSettings{
			Hash:        domain.HashAlgorithm(s.getString(keyIngestHash, string(defaults.Ingest.Hash))),
			OnDuplicate: domain.DuplicatePolicy(s.getString(keyIngestDuplicate, string(defaults.Ingest.OnDuplicate))),
		},
		Query: domain.QuerySettings{
			TopK: s.getInt(keyQueryTopK, defaults.Query.TopK),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
	}

	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}

	s.applyEnv(settings)
	return settings, nil
}

// Set validates and persists a single setting.
func (s *SettingsService) Set(key, value string) error {
	def, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if def.validate != nil && !def.validate(value) {
		return fmt.Errorf("%w: %q is not a valid value for %s", domain.ErrInvalidInput, value, key)
	}

	var typed any
	switch def.kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		typed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		typed = f
	default:
		typed = value
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every settable key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingDefs))
	for i, def := range settingDefs {
		keys[i] = def.key
	}
	return keys
}

// Validate checks that the current settings can build a pipeline.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: set %s (and %s for openai)",
			domain.ErrEmbeddingUnavailable, keyEmbedProvider, keyEmbedAPIKey)
	}
	if !settings.Store.Backend.IsValid() {
		return fmt.Errorf("%w: store backend %q", domain.ErrUnsupportedType, settings.Store.Backend)
	}
	if settings.Store.Backend == domain.StoreBackendPostgres && settings.Store.DSN == "" {
		return fmt.Errorf("%w: postgres store requires %s", domain.ErrInvalidInput, keyStoreDSN)
	}
	switch settings.Index.Backend {
	case domain.IndexBackendMemory:
	case domain.IndexBackendOpenSearch:
		if settings.Index.Endpoint == "" {
			return fmt.Errorf("%w: opensearch index requires %s", domain.ErrInvalidInput, keyIndexEndpoint)
		}
	case domain.IndexBackendPgVector:
		if settings.Store.DSN == "" {
			return fmt.Errorf("%w: pgvector index requires %s", domain.ErrInvalidInput, keyStoreDSN)
		}
	default:
		return fmt.Errorf("%w: index backend %q", domain.ErrUnsupportedType, settings.Index.Backend)
	}
	if !settings.Objects.Backend.IsValid() {
		return fmt.Errorf("%w: object backend %q", domain.ErrUnsupportedType, settings.Objects.Backend)
	}
	if !settings.Ingest.Hash.IsValid() {
		return fmt.Errorf("%w: hash %q", domain.ErrUnsupportedType, settings.Ingest.Hash)
	}
	if !settings.Ingest.OnDuplicate.IsValid() {
		return fmt.Errorf("%w: duplicate policy %q", domain.ErrUnsupportedType, settings.Ingest.OnDuplicate)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by
// pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig(ctx context.Context) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider not configured", domain.ErrInvalidInput)
	}
	if s.validator == nil {
		return nil
	}
	return s.validator.ValidateEmbedding(ctx, &settings.Embedding)
}

// applyEnv overlays environment variables on stored settings.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if v := s.getenv(EnvEmbeddingAPIKey); v != "" {
		settings.Embedding.APIKey = v
	} else if v := s.getenv(EnvOpenAIAPIKey); v != "" && settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = v
	}
	if v := s.getenv(EnvStoreDSN); v != "" {
		settings.Store.DSN = v
	}
	if v := s.getenv(EnvIndexPassword); v != "" {
		settings.Index.Password = v
	}
	if v := s.getenv(EnvObjectsToken); v != "" {
		settings.Objects.AccessToken = v
	}
}

func lookupSetting(key string) (settingDef, bool) {
	for _, def := range settingDefs {
		if def.key == key {
			return def, true
		}
	}
	return settingDef{}, false
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}
