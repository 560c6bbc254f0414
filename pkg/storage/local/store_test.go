package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutOpenDelete(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "uploads", "productos"))
	require.NoError(t, err)

	n, err := store.Put(context.Background(), "1700000000000.png", strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	f, err := store.Open("1700000000000.png")
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, store.Delete("1700000000000.png"))
	_, err = store.Open("1700000000000.png")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete("1700000000000.png"), "deleting a missing blob is a no-op")
}

func TestPutRefusesExisting(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "a.jpg", strings.NewReader("old"))
	require.NoError(t, err)
	_, err = store.Put(context.Background(), "a.jpg", strings.NewReader("new"))
	assert.ErrorIs(t, err, ErrExists)

	path, err := store.Resolve("a.jpg")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestRejectsTraversal(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../etc/passwd", "a/b.png", `a\b.png`, "x..png"} {
		_, err := store.Resolve(name)
		assert.Truef(t, errors.Is(err, ErrInvalidName), "expected %q to be rejected", name)
	}
	_, err = store.Put(context.Background(), "../evil", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorIs(t, store.Delete("a/b"), ErrInvalidName)
}

func TestPutHonoursCancelledContext(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Put(ctx, "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
