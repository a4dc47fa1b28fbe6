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

func TestLocalAttachmentStorage(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "facturas")

	storage, err := NewLocalAttachmentStorage(dir, "/uploads/facturas/")
	require.NoError(t, err)
	assert.DirExists(t, dir)

	t.Run("put writes the file", func(t *testing.T) {
		err := storage.Put(ctx, "factura-1.pdf", "application/pdf", strings.NewReader("%PDF-1.4"), 8)
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, "factura-1.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(data))
	})

	t.Run("size mismatch leaves nothing behind", func(t *testing.T) {
		err := storage.Put(ctx, "factura-2.pdf", "application/pdf", strings.NewReader("short"), 100)
		require.Error(t, err)
		assert.NoFileExists(t, filepath.Join(dir, "factura-2.pdf"))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), ".upload-"), "temp file left: %s", e.Name())
		}
	})

	t.Run("url uses the public prefix", func(t *testing.T) {
		assert.Equal(t, "/uploads/facturas/factura-1.pdf", storage.URL("factura-1.pdf"))
	})

	t.Run("delete removes the file and tolerates missing ones", func(t *testing.T) {
		require.NoError(t, storage.Delete(ctx, "factura-1.pdf"))
		assert.NoFileExists(t, filepath.Join(dir, "factura-1.pdf"))
		require.NoError(t, storage.Delete(ctx, "factura-1.pdf"))
	})

	t.Run("rejects keys outside the directory", func(t *testing.T) {
		for _, key := range []string{"", "../secret.pdf", "sub/dir.pdf", ".hidden"} {
			err := storage.Put(ctx, key, "application/pdf", strings.NewReader("x"), 1)
			assert.Error(t, err, key)
			assert.Error(t, storage.Delete(ctx, key), key)
		}
	})
}

func TestNewLocalAttachmentStorage_RequiresDir(t *testing.T) {
	_, err := NewLocalAttachmentStorage("", "/uploads")
	assert.Error(t, err)
}
