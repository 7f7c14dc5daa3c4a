package archive

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFiles(t testing.TB, dir string, files map[string][]byte) {
	for name, contents := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(path, contents, 0600)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func randomBytes(t testing.TB, n int) []byte {
	buf := make([]byte, n)
	_, err := rand.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestFolderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	receipts := filepath.Join(dir, "receipts")
	dest := filepath.Join(dir, "receipts.zip")

	files := map[string][]byte{
		"1.pdf":        append([]byte("%PDF-1.3\n"), randomBytes(t, 4096)...),
		"2.pdf":        bytes.Repeat([]byte("%PDF-1.3 compressible "), 512),
		"nested/3.pdf": append([]byte("%PDF-1.3\n"), randomBytes(t, 128)...),
	}
	writeFiles(t, receipts, files)

	err := Folder(receipts, dest)
	require.NoError(t, err)

	entries, err := Entries(dest)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"1.pdf", "2.pdf", "nested/3.pdf"}, entries)

	extracted, err := Extract(dest)
	require.NoError(t, err)
	require.Equal(t, files, extracted)
}

func TestFolderEmpty(t *testing.T) {
	dir := t.TempDir()
	receipts := filepath.Join(dir, "receipts")
	require.NoError(t, os.Mkdir(receipts, 0777))
	dest := filepath.Join(dir, "receipts.zip")

	require.NoError(t, Folder(receipts, dest))

	entries, err := Entries(dest)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestFolderMissing(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "receipts.zip")

	require.NoError(t, Folder(filepath.Join(dir, "receipts"), dest))

	entries, err := Entries(dest)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestFolderOverwrites(t *testing.T) {
	dir := t.TempDir()
	receipts := filepath.Join(dir, "receipts")
	dest := filepath.Join(dir, "receipts.zip")
	writeFiles(t, receipts, map[string][]byte{"1.pdf": []byte("first")})
	require.NoError(t, Folder(receipts, dest))

	require.NoError(t, os.Remove(filepath.Join(receipts, "1.pdf")))
	writeFiles(t, receipts, map[string][]byte{"2.pdf": []byte("second")})
	require.NoError(t, Folder(receipts, dest))

	entries, err := Entries(dest)
	require.NoError(t, err)
	require.Equal(t, []string{"2.pdf"}, entries)
}

func TestFolderSkipsItself(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string][]byte{"1.pdf": []byte("receipt")})
	dest := filepath.Join(dir, "receipts.zip")

	require.NoError(t, Folder(dir, dest))

	entries, err := Entries(dest)
	require.NoError(t, err)
	require.Equal(t, []string{"1.pdf"}, entries)
}
