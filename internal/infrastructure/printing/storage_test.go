package printing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileSystemStorage(t *testing.T) {
	base := filepath.Join(t.TempDir(), "pdfs")

	s, err := NewFileSystemStorage(&FileSystemStorageConfig{BasePath: base})
	require.NoError(t, err)
	assert.DirExists(t, base)
	assert.True(t, filepath.IsAbs(s.basePath))
}

func TestFileSystemStorage_Store(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewFileSystemStorage(&FileSystemStorageConfig{BasePath: base})
	require.NoError(t, err)

	id := uuid.New()
	created := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("writes under kind/year/month", func(t *testing.T) {
		result, err := s.Store(ctx, &StoreRequest{
			Kind:       "ordenes-trabajo",
			DocumentID: id,
			CreatedAt:  created,
			PDFData:    []byte("%PDF-1.4 first"),
		})

		require.NoError(t, err)
		assert.Equal(t, "ordenes-trabajo/2024/03/"+id.String()+".pdf", result.Path)
		assert.Equal(t, int64(14), result.Size)

		data, err := os.ReadFile(filepath.Join(base, "ordenes-trabajo", "2024", "03", id.String()+".pdf"))
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 first", string(data))
	})

	t.Run("re-rendering overwrites the file", func(t *testing.T) {
		result, err := s.Store(ctx, &StoreRequest{
			Kind:       "ordenes-trabajo",
			DocumentID: id,
			CreatedAt:  created,
			PDFData:    []byte("%PDF-1.4 second"),
		})
		require.NoError(t, err)

		data, err := os.ReadFile(result.FullPath)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 second", string(data))

		entries, err := os.ReadDir(filepath.Dir(result.FullPath))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("rejects invalid requests", func(t *testing.T) {
		cases := []*StoreRequest{
			nil,
			{Kind: "", DocumentID: id, PDFData: []byte("x")},
			{Kind: "../etc", DocumentID: id, PDFData: []byte("x")},
			{Kind: "a/b", DocumentID: id, PDFData: []byte("x")},
			{Kind: "facturas", DocumentID: uuid.Nil, PDFData: []byte("x")},
			{Kind: "facturas", DocumentID: id},
		}
		for _, req := range cases {
			_, err := s.Store(ctx, req)
			var renderErr *RenderError
			require.ErrorAs(t, err, &renderErr)
			assert.Equal(t, ErrCodeStorageFailed, renderErr.Code)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.Store(cancelled, &StoreRequest{Kind: "facturas", DocumentID: id, PDFData: []byte("x")})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFileSystemStorage_Prune(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewFileSystemStorage(&FileSystemStorageConfig{BasePath: base})
	require.NoError(t, err)

	oldDoc, err := s.Store(ctx, &StoreRequest{
		Kind:       "facturas",
		DocumentID: uuid.New(),
		CreatedAt:  time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC),
		PDFData:    []byte("%PDF-old"),
	})
	require.NoError(t, err)
	fresh, err := s.Store(ctx, &StoreRequest{
		Kind:       "ordenes",
		DocumentID: uuid.New(),
		PDFData:    []byte("%PDF-new"),
	})
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldDoc.FullPath, past, past))

	removed, err := s.Prune(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, oldDoc.FullPath)
	assert.NoDirExists(t, filepath.Join(base, "facturas"))
	assert.FileExists(t, fresh.FullPath)
	assert.DirExists(t, base)
}

func TestFileSystemStorage_PruneCancelled(t *testing.T) {
	s, err := NewFileSystemStorage(&FileSystemStorageConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Prune(ctx, time.Now())
	assert.Error(t, err)
}

func TestContainsDotDot(t *testing.T) {
	assert.True(t, containsDotDot("../x"))
	assert.True(t, containsDotDot("a/../b"))
	assert.False(t, containsDotDot("facturas"))
	assert.False(t, containsDotDot("a..b"))
}
