package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
	"github.com/custodia-labs/semsearch/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ObjectWatcher = (*Watcher)(nil)

// DefaultSettle is how long a file must stay quiet before it is reported.
const DefaultSettle = 250 * time.Millisecond

// Watcher reports files created or written under a Store's root.
// Bursts of writes to one file collapse into a single event.
type Watcher struct {
	store  *Store
	settle time.Duration
}

// NewWatcher creates a watcher for store. A zero settle uses DefaultSettle.
func NewWatcher(store *Store, settle time.Duration) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{store: store, settle: settle}
}

// Watch starts watching the root and every non-hidden subdirectory.
func (w *Watcher) Watch(ctx context.Context) (<-chan domain.ObjectEvent, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: create watcher: %w", domain.ErrObjectStore, err)
	}
	if _, err := w.addTree(fsw, w.store.root); err != nil {
		fsw.Close()
		return nil, err
	}

	events := make(chan domain.ObjectEvent)
	go w.loop(ctx, fsw, events)
	return events, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- domain.ObjectEvent) {
	defer close(out)
	defer fsw.Close()

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			for _, key := range w.handleFsEvent(fsw, ev) {
				pending[key] = time.Now()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)

		case now := <-ticker.C:
			for key, seen := range pending {
				if now.Sub(seen) < w.settle {
					continue
				}
				delete(pending, key)
				select {
				case out <- domain.ObjectEvent{Bucket: w.store.bucket, Key: key}:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleFsEvent maps a filesystem event to object keys. A new directory is
// added to the watch set and reports the files already inside it, since a
// tree moved into the bucket arrives as a single create.
func (w *Watcher) handleFsEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) []string {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return nil
	}
	if isHidden(filepath.Base(ev.Name)) {
		return nil
	}

	info, err := os.Stat(ev.Name)
	if err != nil {
		return nil
	}
	if info.IsDir() {
		if !ev.Has(fsnotify.Create) {
			return nil
		}
		keys, err := w.addTree(fsw, ev.Name)
		if err != nil {
			logger.Warn("Cannot watch %s: %v", ev.Name, err)
		}
		return keys
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	key, err := w.store.keyFor(ev.Name)
	if err != nil {
		return nil
	}
	return []string{key}
}

// addTree watches root and its non-hidden subdirectories and returns the
// keys of the regular files found along the way.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != w.store.root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return fsw.Add(p)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if key, err := w.store.keyFor(p); err == nil {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return keys, fmt.Errorf("%w: watch %s: %w", domain.ErrObjectStore, root, err)
	}
	return keys, nil
}
