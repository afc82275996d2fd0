package hash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes_Deterministic(t *testing.T) {
	assert.Equal(t, Bytes([]byte("scipy==1.11")), Bytes([]byte("scipy==1.11")))
	assert.NotEqual(t, Bytes([]byte("scipy==1.11")), Bytes([]byte("scipy==1.12")))
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requirements.txt")
	require.NoError(t, os.WriteFile(path, []byte("numpy\n"), 0o644))

	got, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, Bytes([]byte("numpy\n")), got)
}

func TestFile_Missing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestFileOrEmpty(t *testing.T) {
	t.Run("missing file hashes as empty", func(t *testing.T) {
		got, err := FileOrEmpty(filepath.Join(t.TempDir(), "absent.aux"))
		require.NoError(t, err)
		assert.Equal(t, Bytes(nil), got)
	})

	t.Run("existing file hashes its content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.aux")
		require.NoError(t, os.WriteFile(path, []byte(`\citation{carroll}`), 0o644))

		got, err := FileOrEmpty(path)
		require.NoError(t, err)
		assert.Equal(t, Bytes([]byte(`\citation{carroll}`)), got)
		assert.NotEqual(t, Bytes(nil), got)
	})
}
