// Package filesystem provides an ObjectStore over a local directory, plus
// an fsnotify-based ObjectWatcher that turns file writes into ingestion
// events.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// tempPrefix marks in-flight writes. Hidden, so List and Watch ignore them.
const tempPrefix = ".semsearch-tmp-"

// Store maps a bucket onto a directory. Keys are slash-separated paths
// relative to the root.
type Store struct {
	root   string
	bucket string
}

// NewStore creates the root directory if needed.
func NewStore(root, bucket string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: filesystem object store needs a root directory", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve root: %w", domain.ErrObjectStore, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("%w: create root: %w", domain.ErrObjectStore, err)
	}
	if bucket == "" {
		bucket = filepath.Base(abs)
	}
	return &Store{root: abs, bucket: bucket}, nil
}

// Root returns the absolute root directory.
func (s *Store) Root() string {
	return s.root
}

// Bucket returns the bucket name.
func (s *Store) Bucket() string {
	return s.bucket
}

// Locator returns "bucket/key".
func (s *Store) Locator(key string) string {
	return s.bucket + "/" + key
}

// List walks the root and returns regular, non-hidden files whose key
// starts with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]driven.ObjectInfo, error) {
	var infos []driven.ObjectInfo
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != s.root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		key, err := s.keyFor(p)
		if err != nil || !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		infos = append(infos, driven.ObjectInfo{Key: key, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list %q: %w", domain.ErrObjectStore, prefix, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// Get reads an object.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, s.Locator(key))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrObjectStore, key, err)
	}
	return data, nil
}

// Put writes an object through a temp file and rename, so watchers never
// see a partial file.
func (s *Store) Put(_ context.Context, key string, data []byte) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create %s: %w", domain.ErrObjectStore, dir, err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrObjectStore, key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %w", domain.ErrObjectStore, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrObjectStore, key, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrObjectStore, key, err)
	}
	return nil
}

// pathFor resolves a key to a path inside the root, rejecting escapes.
func (s *Store) pathFor(key string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if key == "" || clean == "" || clean != key || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: invalid object key %q", domain.ErrInvalidInput, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// keyFor converts an absolute path under the root to its key.
func (s *Store) keyFor(p string) (string, error) {
	rel, err := filepath.Rel(s.root, p)
	if err != nil {
		return "", err
	}
	if rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside %s", p, s.root)
	}
	return filepath.ToSlash(rel), nil
}

// isHidden reports whether a file or directory name starts with a dot.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
