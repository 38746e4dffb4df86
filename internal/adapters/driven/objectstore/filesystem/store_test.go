package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), "documents")
	require.NoError(t, err)
	return store
}

func TestNewStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "bucket-dir")

	store, err := NewStore(dir, "")

	require.NoError(t, err)
	assert.Equal(t, "bucket-dir", store.Bucket())
	assert.DirExists(t, dir)
	assert.True(t, filepath.IsAbs(store.Root()))
}

func TestNewStore_RequiresRoot(t *testing.T) {
	_, err := NewStore("", "b")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_PutGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "sub/dir/a.txt", []byte("alpha")))

	data, err := store.Get(ctx, "sub/dir/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))
	assert.FileExists(t, filepath.Join(store.Root(), "sub", "dir", "a.txt"))

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Join(store.Root(), "sub", "dir"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_Put_Overwrites(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a.txt", []byte("one")))
	require.NoError(t, store.Put(ctx, "a.txt", []byte("two")))

	data, err := store.Get(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestStore_Get_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Get(context.Background(), "missing.txt")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_InvalidKeys(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"", "../escape.txt", "a/../../b", "/etc/passwd", "./a", "a//b"} {
		t.Run(key, func(t *testing.T) {
			_, err := store.Get(ctx, key)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			err = store.Put(ctx, key, []byte("x"))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestStore_List(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "docs/b.txt", []byte("bb")))
	require.NoError(t, store.Put(ctx, "docs/a.txt", []byte("a")))
	require.NoError(t, store.Put(ctx, "other/c.txt", []byte("c")))
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "docs", ".hidden"), []byte("h"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(store.Root(), ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), ".git", "HEAD"), []byte("ref"), 0644))

	infos, err := store.List(ctx, "docs/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "docs/a.txt", infos[0].Key)
	assert.Equal(t, int64(1), infos[0].Size)
	assert.Equal(t, "docs/b.txt", infos[1].Key)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_Locator(t *testing.T) {
	store := setupTestStore(t)
	assert.Equal(t, "documents/x/y.txt", store.Locator("x/y.txt"))
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{".env", true},
		{tempPrefix + "123", true},
		{"file.txt", false},
		{".", false},
		{"..", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isHidden(tt.name))
		})
	}
}
