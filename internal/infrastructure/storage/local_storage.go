package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	purchasingapp "github.com/gestion-compras/backend/internal/application/purchasing"
)

// Ensure LocalAttachmentStorage implements AttachmentStorage
var _ purchasingapp.AttachmentStorage = (*LocalAttachmentStorage)(nil)

// LocalAttachmentStorage writes attachments into a directory that the HTTP
// server exposes under publicURL.
type LocalAttachmentStorage struct {
	dir       string
	publicURL string
}

// NewLocalAttachmentStorage creates the directory if needed
func NewLocalAttachmentStorage(dir, publicURL string) (*LocalAttachmentStorage, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalAttachmentStorage{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Dir returns the storage directory
func (s *LocalAttachmentStorage) Dir() string {
	return s.dir
}

// Put writes body to a temporary file and renames it into place, so readers
// never see a partial attachment.
func (s *LocalAttachmentStorage) Put(ctx context.Context, key, _ string, body io.Reader, size int64) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, io.LimitReader(body, size+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write attachment: %w", err)
	}
	if written != size {
		return fmt.Errorf("attachment size mismatch: expected %d bytes, got %d", size, written)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to store attachment: %w", err)
	}
	return nil
}

// Delete removes the file. A missing file is not an error.
func (s *LocalAttachmentStorage) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}

// URL returns the public path of the file
func (s *LocalAttachmentStorage) URL(key string) string {
	return s.publicURL + "/" + key
}

// path rejects keys that would escape the storage directory
func (s *LocalAttachmentStorage) path(key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	if key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key), nil
}
