package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// ObjectStore keeps objects of a single bucket in a map.
type ObjectStore struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string][]byte
}

// NewObjectStore creates an empty bucket.
func NewObjectStore(bucket string) *ObjectStore {
	return &ObjectStore{
		bucket:  bucket,
		objects: make(map[string][]byte),
	}
}

// List returns objects under prefix in lexical key order.
func (s *ObjectStore) List(_ context.Context, prefix string) ([]driven.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var infos []driven.ObjectInfo
	for key, data := range s.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, driven.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// Get returns the content of an object.
func (s *ObjectStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, s.Locator(key))
	}
	return append([]byte(nil), data...), nil
}

// Put writes an object.
func (s *ObjectStore) Put(_ context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("%w: empty object key", domain.ErrObjectStore)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

// Locator returns "bucket/key".
func (s *ObjectStore) Locator(key string) string {
	return s.bucket + "/" + key
}

// Bucket returns the bucket name.
func (s *ObjectStore) Bucket() string {
	return s.bucket
}
