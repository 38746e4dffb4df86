package driven

import (
	"context"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// ObjectStore holds raw document objects in a single bucket.
// Adapters wrap their failures in domain.ErrObjectStore.
type ObjectStore interface {
	// List returns the keys of all objects under prefix, in lexical order.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Get returns the content of an object.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes an object, replacing any existing one.
	Put(ctx context.Context, key string, data []byte) error

	// Locator returns the source locator recorded for a key ("bucket/key").
	Locator(key string) string

	// Bucket returns the bucket name.
	Bucket() string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectWatcher delivers a notification for every object written to a bucket.
type ObjectWatcher interface {
	// Watch emits events until ctx is cancelled, then closes the channel.
	Watch(ctx context.Context) (<-chan domain.ObjectEvent, error)
}
