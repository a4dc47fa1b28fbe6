package printing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PDFStorage keeps generated PDF files
type PDFStorage interface {
	// Store saves a PDF file, replacing an earlier rendering of the same document
	Store(ctx context.Context, req *StoreRequest) (*StoreResult, error)
}

// StoreRequest contains the parameters for storing a PDF
type StoreRequest struct {
	// Kind is the document kind, used as the first directory level
	Kind       string
	DocumentID uuid.UUID
	// CreatedAt of the document selects the year/month directories
	CreatedAt time.Time
	PDFData   []byte
}

// StoreResult contains the result of storing a PDF
type StoreResult struct {
	// Path is relative to the storage base directory
	Path string
	// FullPath is the file location on disk
	FullPath string
	Size     int64
}

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the root directory for PDF storage
	// Default: uploads/pdfs
	BasePath string
	Logger   *zap.Logger
}

// FileSystemStorage stores PDFs on the local file system
type FileSystemStorage struct {
	basePath string
	logger   *zap.Logger
}

// NewFileSystemStorage creates a new file system based PDF storage
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}
	basePath := config.BasePath
	if basePath == "" {
		basePath = "uploads/pdfs"
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", basePath), err)
	}

	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to resolve base path", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileSystemStorage{
		basePath: absBase,
		logger:   logger,
	}, nil
}

// Store saves a PDF file to the file system
// Path structure: {base}/{kind}/{year}/{month}/{document_id}.pdf
func (s *FileSystemStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	if req == nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "store request is nil", nil)
	}
	if req.Kind == "" || containsDotDot(req.Kind) || strings.ContainsAny(req.Kind, `/\`) {
		return nil, NewRenderError(ErrCodeStorageFailed, "invalid document kind", nil)
	}
	if req.DocumentID == uuid.Nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "document ID is required", nil)
	}
	if len(req.PDFData) == 0 {
		return nil, NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}

	created := req.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	relativePath := filepath.Join(
		req.Kind,
		fmt.Sprintf("%04d", created.Year()),
		fmt.Sprintf("%02d", created.Month()),
		req.DocumentID.String()+".pdf",
	)
	fullPath := filepath.Join(s.basePath, relativePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create directory", err)
	}

	// write then rename so a concurrent download never sees half a file
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".render-*.pdf")
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create temp file", err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(req.PDFData)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}

	s.logger.Info("PDF stored",
		zap.String("path", fullPath),
		zap.Int("size", len(req.PDFData)))

	return &StoreResult{
		Path:     filepath.ToSlash(relativePath),
		FullPath: fullPath,
		Size:     int64(len(req.PDFData)),
	}, nil
}

// Prune removes stored PDFs last written before cutoff and returns how many were removed.
// Directories left empty are removed as well, the base directory is kept.
func (s *FileSystemStorage) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	var dirs []string
	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.basePath {
				dirs = append(dirs, path)
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".pdf") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, NewRenderError(ErrCodeStorageFailed, "failed to prune PDF files", err)
	}

	// deepest first so parents empty out after their children
	for i := len(dirs) - 1; i >= 0; i-- {
		if entries, err := os.ReadDir(dirs[i]); err == nil && len(entries) == 0 {
			_ = os.Remove(dirs[i])
		}
	}

	if removed > 0 {
		s.logger.Info("Old PDFs pruned",
			zap.Int("removed", removed),
			zap.Time("cutoff", cutoff))
	}
	return removed, nil
}

// containsDotDot checks if a path contains ".." components
func containsDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

// Ensure FileSystemStorage implements PDFStorage
var _ PDFStorage = (*FileSystemStorage)(nil)
