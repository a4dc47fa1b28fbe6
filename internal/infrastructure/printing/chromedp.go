package printing

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	// Chrome overlaps the footer with content below this bottom margin
	minFooterMarginMM = 10
	mmPerInch         = 25.4
)

// ChromeConfig configures the headless Chrome used to print documents
type ChromeConfig struct {
	Timeout time.Duration
	// RemoteURL points at a running Chrome DevTools endpoint. When empty a
	// local headless Chrome is launched.
	RemoteURL string
	// NoSandbox is needed when Chrome runs as root inside a container
	NoSandbox bool
	Logger    *zap.Logger
}

// ChromedpRenderer prints HTML documents to PDF through the DevTools protocol.
// One browser allocator is shared; each render opens its own tab.
type ChromedpRenderer struct {
	timeout     time.Duration
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates the renderer. Chrome itself starts lazily on
// the first render.
func NewChromedpRenderer(cfg *ChromeConfig) (*ChromedpRenderer, error) {
	if cfg == nil {
		cfg = &ChromeConfig{}
	}
	r := &ChromedpRenderer{timeout: cfg.Timeout, logger: cfg.Logger}
	if r.timeout <= 0 {
		r.timeout = defaultChromeTimeout
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}

	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r, nil
}

// Render prints req to PDF
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if req == nil || strings.TrimSpace(req.HTML) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	if !req.PaperSize.IsValid() {
		return nil, NewRenderError(ErrCodeInvalidPaperSize, "invalid paper size: "+string(req.PaperSize), nil)
	}

	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tab, closeTab := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer closeTab()
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	document := wrapDocument(req)
	params := pdfParams(req)

	var pdf []byte
	err := chromedp.Run(tab,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, document).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) (err error) {
			pdf, _, err = params.Do(ctx)
			return err
		}),
	)
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, NewRenderError(ErrCodeRenderTimeout,
			fmt.Sprintf("PDF rendering timed out after %v", r.timeout), err)
	case errors.Is(ctx.Err(), context.Canceled):
		return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
	case err != nil:
		r.logger.Error("Chrome failed to print document", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	case len(pdf) == 0:
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	result := &RenderResult{
		PDFData:        pdf,
		PageCount:      estimatePageCount(pdf),
		RenderDuration: time.Since(started),
	}
	r.logger.Info("Document printed",
		zap.String("title", req.Title),
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration))
	return result, nil
}

// pdfParams maps the paper size and margins to Chrome's print settings,
// which are expressed in inches.
func pdfParams(req *RenderRequest) *page.PrintToPDFParams {
	width, height := req.PaperSize.Dimensions()
	bottom := req.Margins.Bottom

	params := page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(inches(width)).
		WithPaperHeight(inches(height)).
		WithMarginTop(inches(float64(req.Margins.Top))).
		WithMarginRight(inches(float64(req.Margins.Right))).
		WithMarginLeft(inches(float64(req.Margins.Left)))

	if req.FooterHTML != "" {
		bottom = max(bottom, minFooterMarginMM)
		// an empty header template makes Chrome print the date and title
		params = params.
			WithDisplayHeaderFooter(true).
			WithHeaderTemplate("<span></span>").
			WithFooterTemplate(req.FooterHTML)
	}
	return params.WithMarginBottom(inches(float64(bottom)))
}

// wrapDocument turns an HTML fragment into a full UTF-8 page. Complete
// documents are returned unchanged.
func wrapDocument(req *RenderRequest) string {
	lower := strings.ToLower(req.HTML)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return req.HTML
	}
	return fmt.Sprintf(`<!DOCTYPE html><html><head><meta charset="UTF-8"><title>%s</title></head><body>%s</body></html>`,
		html.EscapeString(req.Title), req.HTML)
}

// Close shuts down the browser allocator
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

func inches(mm float64) float64 {
	return mm / mmPerInch
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
