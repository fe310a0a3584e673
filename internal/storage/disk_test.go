package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_SaveAndRemove(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	refPath, err := store.Save(context.Background(), "avales", "Aval Director.PDF", strings.NewReader("contenido"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(refPath, URLPrefix+"/avales/"))
	assert.True(t, strings.HasSuffix(refPath, ".pdf"), "extension should be kept and lowercased: %v", refPath)

	onDisk := filepath.Join(store.Root(), strings.TrimPrefix(refPath, URLPrefix+"/"))
	content, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "contenido", string(content))

	require.NoError(t, store.Remove(context.Background(), refPath))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
}

func TestDiskStore_SaveGeneratesUniqueNames(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Save(context.Background(), "actas", "acta.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := store.Save(context.Background(), "actas", "acta.pdf", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDiskStore_RemoveMissingIsNoError(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Remove(context.Background(), URLPrefix+"/avales/nonexistent.pdf"))
}

func TestDiskStore_RemoveRejectsEscapingPaths(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Remove(context.Background(), URLPrefix+"/../etc/passwd"))
	assert.Error(t, store.Remove(context.Background(), ""))
}
