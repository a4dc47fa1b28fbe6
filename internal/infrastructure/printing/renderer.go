// Package printing turns HTML documents into PDF files with headless Chrome
// and keeps the generated files on disk.
package printing

import (
	"bytes"
	"context"
	"time"
)

// PaperSize names a supported sheet format
type PaperSize string

const (
	PaperSizeLetter PaperSize = "LETTER"
	PaperSizeA4     PaperSize = "A4"
)

// IsValid reports whether the paper size is supported
func (p PaperSize) IsValid() bool {
	return p == PaperSizeLetter || p == PaperSizeA4
}

// Dimensions returns width and height in millimeters
func (p PaperSize) Dimensions() (width, height float64) {
	switch p {
	case PaperSizeA4:
		return 210, 297
	default:
		return 215.9, 279.4
	}
}

// Margins in millimeters
type Margins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// DefaultMargins returns the margins used for purchasing documents
func DefaultMargins() Margins {
	return Margins{Top: 12, Right: 10, Bottom: 12, Left: 10}
}

// RenderRequest is one HTML document to print
type RenderRequest struct {
	HTML      string
	PaperSize PaperSize
	Margins   Margins
	// Title is set on fragments that carry no <head>
	Title string
	// FooterHTML is printed on every page (optional)
	FooterHTML string
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer defines the interface for rendering HTML to PDF
type PDFRenderer interface {
	// Render converts HTML content to a PDF document
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during PDF generation
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeTemplateFailed   = "TEMPLATE_FAILED"
	ErrCodeStorageFailed    = "STORAGE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// estimatePageCount counts page objects in the PDF
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page")) - bytes.Count(pdfData, []byte("/Type /Pages"))
	if count <= 0 {
		return 1
	}
	return count
}
