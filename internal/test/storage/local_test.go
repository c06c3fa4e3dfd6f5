package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"virtual-tour-backend/internal/storage"
)

func TestLocal_SaveGeneratesUniqueNames(t *testing.T) {
	dir := t.TempDir()
	local, err := storage.NewLocal(dir)
	require.NoError(t, err)

	first, err := local.Save("kitchen.jpg", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := local.Save("kitchen.jpg", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Filename, second.Filename)
	assert.True(t, strings.HasSuffix(first.Filename, ".jpg"))
	assert.Equal(t, storage.URLPrefix+"/"+first.Filename, first.URL)
	assert.Equal(t, int64(3), first.Size)

	data, err := os.ReadFile(filepath.Join(dir, first.Filename))
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func TestLocal_RemoveDeletesStoredFile(t *testing.T) {
	dir := t.TempDir()
	local, err := storage.NewLocal(dir)
	require.NoError(t, err)

	sf, err := local.Save("hall.png", strings.NewReader("pixels"))
	require.NoError(t, err)

	require.NoError(t, local.Remove(sf.Filename))
	_, err = os.Stat(filepath.Join(dir, sf.Filename))
	assert.True(t, os.IsNotExist(err))
}

func TestNewLocal_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	local, err := storage.NewLocal(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, local.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
