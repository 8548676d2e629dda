package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZIP(t *testing.T, members map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, content := range members {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func TestExtractSingle(t *testing.T) {
	zipPath := writeZIP(t, map[string]string{"contacts.csv": "name\nJane Smith\n"})
	dest := t.TempDir()

	extracted, err := ExtractSingle(zipPath, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "contacts.csv"), extracted)

	content, err := os.ReadFile(extracted)
	require.NoError(t, err)
	assert.Equal(t, "name\nJane Smith\n", string(content))
}

func TestExtractSingle_NestedMemberFlattened(t *testing.T) {
	zipPath := writeZIP(t, map[string]string{"export/2026/contacts.csv": "name\n"})
	dest := t.TempDir()

	extracted, err := ExtractSingle(zipPath, dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "contacts.csv"), extracted)
}

func TestExtractSingle_MultipleFiles(t *testing.T) {
	zipPath := writeZIP(t, map[string]string{"a.csv": "x", "b.csv": "y"})

	_, err := ExtractSingle(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one file")
}

func TestExtractSingle_EmptyArchive(t *testing.T) {
	zipPath := writeZIP(t, nil)

	_, err := ExtractSingle(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files")
}

func TestExtractSingle_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.zip")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := ExtractSingle(path, t.TempDir())
	require.Error(t, err)
}
