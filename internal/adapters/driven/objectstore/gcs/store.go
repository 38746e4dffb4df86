// Package gcs provides an ObjectStore backed by a Google Cloud Storage
// bucket through the JSON API.
package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// Config holds configuration for the GCS object store.
type Config struct {
	// Bucket is the bucket name (required).
	Bucket string

	// CredentialsFile is a service account JSON key. Takes precedence over AccessToken.
	CredentialsFile string

	// AccessToken is a bearer token, e.g. from `gcloud auth print-access-token`.
	AccessToken string

	// Endpoint overrides the API base URL. Used against emulators and in tests.
	Endpoint string

	// HTTPClient replaces the authenticated client. Used in tests.
	HTTPClient *http.Client
}

// Store reads and writes objects in one bucket.
type Store struct {
	svc    *storage.Service
	bucket string
}

// NewStore creates a GCS-backed store. Without explicit credentials it
// falls back to Application Default Credentials.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: gcs: bucket is required", domain.ErrInvalidInput)
	}

	svc, err := storage.NewService(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("%w: gcs: create service: %w", domain.ErrObjectStore, err)
	}
	return &Store{svc: svc, bucket: cfg.Bucket}, nil
}

func clientOptions(cfg Config) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case cfg.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.AccessToken != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
		opts = append(opts, option.WithTokenSource(ts))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	return opts
}

// Bucket returns the bucket name.
func (s *Store) Bucket() string {
	return s.bucket
}

// Locator returns "bucket/key".
func (s *Store) Locator(key string) string {
	return s.bucket + "/" + key
}

// List returns every object under prefix, following pagination.
func (s *Store) List(ctx context.Context, prefix string) ([]driven.ObjectInfo, error) {
	var infos []driven.ObjectInfo
	err := s.svc.Objects.List(s.bucket).Prefix(prefix).Pages(ctx, func(page *storage.Objects) error {
		for _, obj := range page.Items {
			infos = append(infos, driven.ObjectInfo{Key: obj.Name, Size: int64(obj.Size)})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(fmt.Sprintf("list %q", prefix), err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// Get downloads an object.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.svc.Objects.Get(s.bucket, key).Context(ctx).Download()
	if err != nil {
		return nil, wrapError("get "+key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: gcs: read %s: %w", domain.ErrObjectStore, key, err)
	}
	return data, nil
}

// Put uploads an object as text/plain.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("%w: empty object key", domain.ErrInvalidInput)
	}
	obj := &storage.Object{Name: key, ContentType: "text/plain; charset=utf-8"}
	_, err := s.svc.Objects.Insert(s.bucket, obj).
		Media(bytes.NewReader(data), googleapi.ContentType(obj.ContentType)).
		Context(ctx).
		Do()
	if err != nil {
		return wrapError("put "+key, err)
	}
	return nil
}

// wrapError maps a 404 to domain.ErrNotFound and everything else to
// domain.ErrObjectStore.
func wrapError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: gcs: %s: %w", domain.ErrNotFound, op, err)
	}
	return fmt.Errorf("%w: gcs: %s: %w", domain.ErrObjectStore, op, err)
}
