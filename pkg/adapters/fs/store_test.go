package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machsheltie/gardenplanner/pkg/core"
)

func TestStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewStore(Config{Root: root})

	t.Run("Missing File", func(t *testing.T) {
		_, err := store.Read(ctx, "data/crops.js")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrFileNotFound)

		var nf *core.FileNotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, filepath.Join(root, "data", "crops.js"), nf.Path)
	})

	t.Run("Round Trip", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0o755))
		require.NoError(t, store.Write(ctx, "data/crops.js", "const V=[];\r\n"))

		got, err := store.Read(ctx, "data/crops.js")
		require.NoError(t, err)
		assert.Equal(t, "const V=[];\r\n", got)
	})

	t.Run("Keeps Existing Permissions", func(t *testing.T) {
		path := filepath.Join(root, "private.js")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		require.NoError(t, os.Chmod(path, 0o600))

		require.NoError(t, store.Write(ctx, path, "y"))
		info, err := os.Stat(path)
		require.NoError(t, err)
		if info.Mode().Perm() != 0o600 {
			t.Logf("permissions not preserved on this platform: %v", info.Mode())
		}
	})

	t.Run("No Temp Files Left Behind", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Join(root, "data"))
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), TempFilePrefix), "leftover %s", e.Name())
		}
	})

	t.Run("Counts Operations", func(t *testing.T) {
		state := store.State().(StoreState)
		assert.Equal(t, root, state.Root)
		assert.GreaterOrEqual(t, state.Writes, 2)
		assert.NotNil(t, state.LastWrite)
		assert.Equal(t, "fs-store", store.ComponentType())
	})
}

func TestStore_ReadOnly(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "crops.js")
	require.NoError(t, os.WriteFile(path, []byte("before"), 0o644))

	store := NewStore(Config{Root: root, ReadOnly: true})
	err := store.Write(context.Background(), "crops.js", "after")
	assert.ErrorIs(t, err, core.ErrReadOnly)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "before", string(got))
}

func TestStore_Abs(t *testing.T) {
	root := t.TempDir()
	store := NewStore(Config{Root: root})

	abs, err := store.Abs("a/b.js")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "b.js"), abs)

	other := filepath.Join(t.TempDir(), "c.js")
	abs, err = store.Abs(other)
	require.NoError(t, err)
	assert.Equal(t, other, abs)
}

func TestStore_Resolve(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewStore(Config{Root: root})

	dir := filepath.Join(root, "varieties", "2026")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	older := filepath.Join(root, "varieties", "planting-calendar.html")
	newer := filepath.Join(dir, "planting-calendar (1).html")
	require.NoError(t, os.WriteFile(older, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("new"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	t.Run("Newest Match Wins", func(t *testing.T) {
		got, err := store.Resolve(ctx, "varieties/**/planting-calendar*.html")
		require.NoError(t, err)
		assert.Equal(t, newer, got)
	})

	t.Run("Literal Path Unchanged", func(t *testing.T) {
		got, err := store.Resolve(ctx, "varieties/planting-calendar.html")
		require.NoError(t, err)
		assert.Equal(t, "varieties/planting-calendar.html", got)
	})

	t.Run("No Match", func(t *testing.T) {
		_, err := store.Resolve(ctx, "varieties/**/*.csv")
		assert.ErrorIs(t, err, core.ErrFileNotFound)
	})
}

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Overwrites Existing File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "test.txt")
		require.NoError(t, os.WriteFile(filename, []byte("initial"), 0o644))

		require.NoError(t, writeFileAtomic(filename, []byte("overwritten"), 0o644))
		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "overwritten", string(got))
	})

	t.Run("Fails If Directory Missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing_folder", "test.txt")
		assert.Error(t, writeFileAtomic(filename, []byte("fail"), 0o644))
	})
}

func TestStore_Watch(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "cal.html")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	store := NewStore(Config{Root: root, Debounce: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := store.Watch(ctx, "cal.html")
	require.NoError(t, err)

	// unrelated files in the same directory are filtered out
	require.NoError(t, os.WriteFile(filepath.Join(root, "other.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))

	select {
	case e := <-events:
		assert.Equal(t, path, e.Path)
		assert.Contains(t, []core.EventType{core.EventModify, core.EventCreate}, e.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-events
		return !open
	}, 5*time.Second, 10*time.Millisecond)
}
