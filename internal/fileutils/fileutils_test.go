package fileutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFilesWithExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt", "c.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0755))

	files, err := ListFilesWithExtensions(dir, ".pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.PDF"), filepath.Join(dir, "b.pdf")}, files)

	files, err = ListFilesWithExtensions(dir, ".yaml", ".txt")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = ListFilesWithExtensions(filepath.Join(dir, "missing"), ".pdf")
	assert.Error(t, err)
}

func TestWriteFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "deep", "file.xlsx")
	require.NoError(t, WriteFile(path, []byte("data"), 0644))
	assert.True(t, FileExists(path))
	assert.True(t, DirectoryExists(filepath.Dir(path)))
	assert.False(t, FileExists(filepath.Dir(path)))
}
