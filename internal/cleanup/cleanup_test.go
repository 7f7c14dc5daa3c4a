package cleanup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	dir := t.TempDir()
	receipts := filepath.Join(dir, "receipts")
	screenshots := filepath.Join(dir, "screenshots")
	archive := filepath.Join(dir, "receipts.zip")

	require.NoError(t, os.MkdirAll(receipts, 0777))
	require.NoError(t, os.MkdirAll(screenshots, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(receipts, "1.pdf"), []byte("%PDF"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(screenshots, "1.png"), []byte("png"), 0600))
	require.NoError(t, os.WriteFile(archive, []byte("zip"), 0600))

	require.NoError(t, Clean(receipts, screenshots))

	for _, path := range []string{receipts, screenshots} {
		_, err := os.Stat(path)
		require.True(t, os.IsNotExist(err), path)
	}
	_, err := os.Stat(archive)
	require.NoError(t, err)
}

func TestCleanIdempotent(t *testing.T) {
	dir := t.TempDir()
	receipts := filepath.Join(dir, "receipts")
	require.NoError(t, os.MkdirAll(receipts, 0777))

	require.NoError(t, Clean(receipts, filepath.Join(dir, "screenshots")))
	require.NoError(t, Clean(receipts, filepath.Join(dir, "screenshots")))
}
