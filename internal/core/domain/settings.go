package domain

const unknownDescription = "Unknown"

// AIProvider identifies an embedding provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API or any compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local, no API key)"
	case AIProviderOpenAI:
		return "OpenAI (cloud, requires API key)"
	default:
		return unknownDescription
	}
}

// StoreBackend selects the DocumentStore implementation.
type StoreBackend string

// Available document store backends.
const (
	StoreBackendMemory   StoreBackend = "memory"
	StoreBackendSQLite   StoreBackend = "sqlite"
	StoreBackendPostgres StoreBackend = "postgres"
	StoreBackendBolt     StoreBackend = "bolt"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendMemory, StoreBackendSQLite, StoreBackendPostgres, StoreBackendBolt:
		return true
	default:
		return false
	}
}

// IsPersistent returns true if documents survive a process restart.
func (b StoreBackend) IsPersistent() bool {
	return b.IsValid() && b != StoreBackendMemory
}

// IndexBackend selects the VectorIndex implementation.
type IndexBackend string

// Available vector index backends.
const (
	IndexBackendMemory     IndexBackend = "memory"
	IndexBackendOpenSearch IndexBackend = "opensearch"
	IndexBackendPgVector   IndexBackend = "pgvector"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendMemory, IndexBackendOpenSearch, IndexBackendPgVector:
		return true
	default:
		return false
	}
}

// ObjectBackend selects the ObjectStore implementation.
type ObjectBackend string

// Available object store backends.
const (
	ObjectBackendFilesystem ObjectBackend = "filesystem"
	ObjectBackendGCS        ObjectBackend = "gcs"
)

// IsValid returns true if the backend is recognised.
func (b ObjectBackend) IsValid() bool {
	return b == ObjectBackendFilesystem || b == ObjectBackendGCS
}

// HashAlgorithm names the content-addressing function used for document ids.
type HashAlgorithm string

// Available hash algorithms.
const (
	// HashFNV64a is a fast non-cryptographic 64-bit hash. Ids are decimal.
	HashFNV64a HashAlgorithm = "fnv64a"

	// HashSHA256 is a cryptographic digest. Ids are lowercase hex.
	HashSHA256 HashAlgorithm = "sha256"
)

// IsValid returns true if the algorithm is recognised.
func (h HashAlgorithm) IsValid() bool {
	return h == HashFNV64a || h == HashSHA256
}

// DuplicatePolicy decides what ingestion does when a document id is already stored.
type DuplicatePolicy string

// Available duplicate policies.
const (
	// DuplicateSkip leaves the stored document untouched.
	DuplicateSkip DuplicatePolicy = "skip"

	// DuplicateOverwrite re-embeds, replaces and re-indexes the stored document.
	DuplicateOverwrite DuplicatePolicy = "overwrite"
)

// IsValid returns true if the policy is recognised.
func (p DuplicatePolicy) IsValid() bool {
	return p == DuplicateSkip || p == DuplicateOverwrite
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's default vector size.
	Dimensions int

	// RatePerSecond caps embedding calls. Zero disables limiting.
	RatePerSecond float64

	// Burst is the number of calls allowed above the sustained rate.
	Burst int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// StoreSettings holds document store configuration.
type StoreSettings struct {
	// Backend selects the implementation.
	Backend StoreBackend

	// Path is the data directory for file-backed stores.
	Path string

	// DSN is the connection string for postgres.
	DSN string
}

// IndexSettings holds vector index configuration.
type IndexSettings struct {
	// Backend selects the implementation.
	Backend IndexBackend

	// Endpoint is the OpenSearch base URL.
	Endpoint string

	// Name is the index name.
	Name string

	// Username and Password are OpenSearch basic-auth credentials.
	Username string
	Password string
}

// ObjectStoreSettings holds object storage configuration.
type ObjectStoreSettings struct {
	// Backend selects the implementation.
	Backend ObjectBackend

	// Bucket is the bucket name. For the filesystem backend it is the
	// directory name under Root.
	Bucket string

	// Root is the parent directory of filesystem buckets.
	Root string

	// CredentialsFile is a service account key for GCS.
	CredentialsFile string

	// AccessToken is a pre-issued OAuth2 token for GCS.
	AccessToken string
}

// IngestSettings holds ingestion policy.
type IngestSettings struct {
	// Hash is the content-addressing function.
	Hash HashAlgorithm

	// OnDuplicate is the policy for already stored ids.
	OnDuplicate DuplicatePolicy
}

// QuerySettings holds query defaults.
type QuerySettings struct {
	// TopK is the number of neighbours returned when the caller passes k <= 0.
	TopK int
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// AppSettings holds all application settings. It is built once at
// startup and passed to every component constructor.
type AppSettings struct {
	Embedding EmbeddingSettings
	Store     StoreSettings
	Index     IndexSettings
	Objects   ObjectStoreSettings
	Ingest    IngestSettings
	Query     QuerySettings
	Server    ServerSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The embedding provider is left unconfigured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{},
		Store: StoreSettings{
			Backend: StoreBackendSQLite,
		},
		Index: IndexSettings{
			Backend: IndexBackendMemory,
			Name:    "documents",
		},
		Objects: ObjectStoreSettings{
			Backend: ObjectBackendFilesystem,
			Bucket:  "documents",
		},
		Ingest: IngestSettings{
			Hash:        HashFNV64a,
			OnDuplicate: DuplicateSkip,
		},
		Query: QuerySettings{
			TopK: DefaultTopK,
		},
		Server: ServerSettings{
			Addr: ":8080",
		},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
