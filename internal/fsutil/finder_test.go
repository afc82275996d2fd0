package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func TestListFilesByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.tex", "a.tex", "notes.md")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.tex"), 0o755))

	names, err := ListFilesByExtension(dir, ".tex")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.tex", "b.tex"}, names, "sorted, files only")
}

func TestListFilesByExtension_MissingDir(t *testing.T) {
	_, err := ListFilesByExtension(filepath.Join(t.TempDir(), "nope"), ".tex")
	assert.Error(t, err)
}

func TestDiscoverDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "A.tex", "B.tex", "econtexRoot.tex", "econtexPath.tex")

	docs, err := DiscoverDocuments(dir, ".tex", []string{"econtexRoot.tex", "econtexPath.tex"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A.tex", "B.tex"}, docs)
}

func TestDiscoverDocuments_AllExcluded(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "econtexRoot.tex")

	docs, err := DiscoverDocuments(dir, ".tex", []string{"econtexRoot.tex"})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "build", "out.pdf")
	dst := filepath.Join(dir, "canonical", "out.pdf")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte("%PDF"), 0o644))

	require.NoError(t, MoveFile(src, dst))

	assert.False(t, Exists(src), "no stale artifact in the build directory")
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.pdf")
	dst := filepath.Join(dir, "deep", "b.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF"), 0o644))

	require.NoError(t, CopyFile(src, dst))

	assert.True(t, Exists(src))
	assert.True(t, Exists(dst))
}
