package storage

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveUsesRandomNameAndKeepsExtension(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save([]byte("content"), "report.pdf")
	require.NoError(t, err)

	assert.Equal(t, ".pdf", filepath.Ext(path))
	assert.NotContains(t, filepath.Base(path), "report")
	assert.True(t, strings.HasPrefix(path, store.Root))

	data, err := store.Read(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)

	// Zwei Uploads desselben Namens kollidieren nicht.
	other, err := store.Save([]byte("content"), "report.pdf")
	require.NoError(t, err)
	assert.NotEqual(t, path, other)
}

func TestRemoveIsIdempotent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save([]byte("content"), "report.pdf")
	require.NoError(t, err)

	require.NoError(t, store.Remove(path))
	assert.False(t, store.Exists(path))

	// Eine bereits fehlende Datei ist kein Fehler.
	require.NoError(t, store.Remove(path))
	require.NoError(t, store.Remove(""))
}

func TestListReturnsStoredFiles(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Save([]byte("a"), "a.pdf")
	require.NoError(t, err)
	second, err := store.Save([]byte("b"), "b.pdf")
	require.NoError(t, err)

	files, err := store.List()
	require.NoError(t, err)
	require.Len(t, files, 2)

	paths := []string{files[0].Path, files[1].Path}
	assert.Contains(t, paths, first)
	assert.Contains(t, paths, second)
}
