// Package app assembles the pipeline from AppSettings: it picks one
// adapter per driven port and hands them to the core services.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/semsearch/internal/adapters/driven/ai"
	"github.com/custodia-labs/semsearch/internal/adapters/driven/hashing"
	"github.com/custodia-labs/semsearch/internal/adapters/driven/objectstore/filesystem"
	"github.com/custodia-labs/semsearch/internal/adapters/driven/objectstore/gcs"
	"github.com/custodia-labs/semsearch/internal/adapters/driven/storage/bolt"
	"github.com/custodia-labs/semsearch/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/semsearch/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/semsearch/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/semsearch/internal/adapters/driven/vectorindex/opensearch"
	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
	"github.com/custodia-labs/semsearch/internal/core/services"
	"github.com/custodia-labs/semsearch/internal/logger"
)

// App holds the wired adapters and services. Close releases them.
type App struct {
	Settings domain.AppSettings

	Hasher   driven.ContentHasher
	Embedder driven.EmbeddingService
	Store    driven.DocumentStore
	Index    driven.VectorIndex
	Objects  driven.ObjectStore

	// Watcher is nil when the object backend cannot push notifications.
	Watcher driven.ObjectWatcher

	Ingestion   *services.IngestionService
	Query       *services.QueryService
	Documents   *services.DocumentService
	Maintenance *services.MaintenanceService

	closers []func() error
}

// Options carries values that are not part of AppSettings.
type Options struct {
	// HomeDir is the semsearch home (e.g. ~/.semsearch). File-backed
	// stores default to subdirectories of it.
	HomeDir string

	// Embedder replaces the provider built from settings. Used in tests.
	Embedder driven.EmbeddingService
}

// New builds every adapter named in settings. On error, anything already
// opened is closed.
func New(ctx context.Context, settings domain.AppSettings, opts Options) (a *App, err error) {
	a = &App{Settings: settings}
	defer func() {
		if err != nil {
			_ = a.Close()
			a = nil
		}
	}()

	if a.Hasher, err = hashing.New(settings.Ingest.Hash); err != nil {
		return nil, err
	}

	a.Embedder = opts.Embedder
	if a.Embedder == nil {
		if a.Embedder, err = ai.CreateEmbeddingService(&settings.Embedding); err != nil {
			return nil, err
		}
	}
	a.closers = append(a.closers, a.Embedder.Close)

	var pg *postgres.Store
	if a.Store, pg, err = openDocumentStore(ctx, settings.Store, opts.HomeDir); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.Store.Close)

	dimensions, err := indexDimensions(ctx, settings.Index.Backend, a.Embedder)
	if err != nil {
		return nil, err
	}
	if a.Index, err = openVectorIndex(ctx, settings, pg, dimensions, &a.closers); err != nil {
		return nil, err
	}

	if a.Objects, a.Watcher, err = openObjectStore(ctx, settings.Objects, opts.HomeDir); err != nil {
		return nil, err
	}

	a.Ingestion = services.NewIngestionService(settings.Ingest, a.Hasher, a.Embedder, a.Store, a.Index)
	a.Ingestion.SetObjectStore(a.Objects)
	a.Query = services.NewQueryService(settings.Query, a.Embedder, a.Index)
	a.Documents = services.NewDocumentService(a.Store)
	a.Maintenance = services.NewMaintenanceService(a.Store, a.Index)

	if settings.Index.Backend == domain.IndexBackendMemory && settings.Store.Backend.IsPersistent() {
		if err = a.warmIndex(ctx); err != nil {
			return nil, err
		}
	}

	logger.Debug("Wired store=%s index=%s objects=%s hash=%s model=%s",
		settings.Store.Backend, settings.Index.Backend, settings.Objects.Backend,
		a.Hasher.Name(), a.Embedder.ModelName())
	return a, nil
}

// warmIndex fills the in-process index from the persistent store so queries
// see documents ingested by earlier runs.
func (a *App) warmIndex(ctx context.Context) error {
	report, err := a.Maintenance.Reindex(ctx)
	if err != nil {
		return fmt.Errorf("warm memory index: %w", err)
	}
	if report.Scanned > 0 {
		logger.Info("Loaded %d of %d stored documents into the memory index", report.Indexed, report.Scanned)
	}
	return nil
}

// Close releases adapters in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func dataDir(configured, homeDir string) string {
	if configured != "" || homeDir == "" {
		return configured
	}
	return filepath.Join(homeDir, "data")
}

// openDocumentStore returns the postgres store separately so a pgvector
// index can share its pool.
func openDocumentStore(
	ctx context.Context,
	settings domain.StoreSettings,
	homeDir string,
) (driven.DocumentStore, *postgres.Store, error) {
	switch settings.Backend {
	case domain.StoreBackendMemory:
		return memory.NewDocumentStore(), nil, nil

	case domain.StoreBackendSQLite:
		store, err := sqlite.NewStore(dataDir(settings.Path, homeDir))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: sqlite: %w", domain.ErrStoreRead, err)
		}
		return store, nil, nil

	case domain.StoreBackendBolt:
		dir := dataDir(settings.Path, homeDir)
		if dir == "" {
			return nil, nil, fmt.Errorf("%w: bolt store needs store.path", domain.ErrInvalidInput)
		}
		store, err := bolt.NewStore(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: bolt: %w", domain.ErrStoreRead, err)
		}
		return store, nil, nil

	case domain.StoreBackendPostgres:
		store, err := postgres.Open(ctx, settings.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("%w: store backend %q", domain.ErrUnsupportedType, settings.Backend)
	}
}

// indexDimensions returns the vector size an index should be created with.
// Providers report 0 for models they do not know. The memory index adopts
// the first vector it sees, but OpenSearch and pgvector fix the size at
// creation, so for those one short text is embedded to measure it.
func indexDimensions(ctx context.Context, backend domain.IndexBackend, embedder driven.EmbeddingService) (int, error) {
	if dims := embedder.Dimensions(); dims > 0 || backend == domain.IndexBackendMemory {
		return dims, nil
	}
	vec, err := embedder.Embed(ctx, "semsearch")
	if err != nil {
		return 0, fmt.Errorf("measure embedding size of %s: %w", embedder.ModelName(), err)
	}
	logger.Debug("Model %s produces %d-dimensional vectors", embedder.ModelName(), len(vec))
	return len(vec), nil
}

func openVectorIndex(
	ctx context.Context,
	settings domain.AppSettings,
	pg *postgres.Store,
	dimensions int,
	closers *[]func() error,
) (driven.VectorIndex, error) {
	switch settings.Index.Backend {
	case domain.IndexBackendMemory:
		return memory.NewVectorIndex(dimensions), nil

	case domain.IndexBackendOpenSearch:
		index, err := opensearch.NewVectorIndex(opensearch.Config{
			Endpoint:   settings.Index.Endpoint,
			Index:      settings.Index.Name,
			Username:   settings.Index.Username,
			Password:   settings.Index.Password,
			Dimensions: dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrIndex, err)
		}
		if err := index.EnsureIndex(ctx); err != nil {
			return nil, err
		}
		*closers = append(*closers, index.Close)
		return index, nil

	case domain.IndexBackendPgVector:
		if pg == nil {
			// The document store lives elsewhere; vectors still need postgres.
			var err error
			if pg, err = postgres.Open(ctx, settings.Store.DSN); err != nil {
				return nil, err
			}
			*closers = append(*closers, pg.Close)
		}
		index, err := postgres.NewVectorIndex(ctx, pg, dimensions)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, index.Close)
		return index, nil

	default:
		return nil, fmt.Errorf("%w: index backend %q", domain.ErrUnsupportedType, settings.Index.Backend)
	}
}

func openObjectStore(
	ctx context.Context,
	settings domain.ObjectStoreSettings,
	homeDir string,
) (driven.ObjectStore, driven.ObjectWatcher, error) {
	switch settings.Backend {
	case domain.ObjectBackendFilesystem:
		root := settings.Root
		if root == "" && homeDir != "" {
			root = filepath.Join(homeDir, "objects")
		}
		if root != "" && settings.Bucket != "" {
			root = filepath.Join(root, settings.Bucket)
		}
		store, err := filesystem.NewStore(root, settings.Bucket)
		if err != nil {
			return nil, nil, err
		}
		return store, filesystem.NewWatcher(store, filesystem.DefaultSettle), nil

	case domain.ObjectBackendGCS:
		store, err := gcs.NewStore(ctx, gcs.Config{
			Bucket:          settings.Bucket,
			CredentialsFile: settings.CredentialsFile,
			AccessToken:     settings.AccessToken,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil

	default:
		return nil, nil, fmt.Errorf("%w: object backend %q", domain.ErrUnsupportedType, settings.Backend)
	}
}
