package scheduler

import (
	"context"
	"time"

	"github.com/gestion-compras/backend/internal/domain/inventory"
	"go.uber.org/zap"
)

const (
	TaskPrunePDFs     = "prune-pdfs"
	TaskLowStockSweep = "low-stock-sweep"
)

// PDFPruner removes stored PDFs older than a cutoff
type PDFPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// PrunePDFsTask deletes generated PDFs past their retention. They are
// rendered again on the next print request.
type PrunePDFsTask struct {
	pruner    PDFPruner
	retention time.Duration
	now       func() time.Time
}

// NewPrunePDFsTask creates the PDF retention task
func NewPrunePDFsTask(pruner PDFPruner, retention time.Duration) *PrunePDFsTask {
	return &PrunePDFsTask{pruner: pruner, retention: retention, now: time.Now}
}

func (t *PrunePDFsTask) Name() string { return TaskPrunePDFs }

func (t *PrunePDFsTask) Run(ctx context.Context) error {
	_, err := t.pruner.Prune(ctx, t.now().Add(-t.retention))
	return err
}

// LowStockSweepTask logs the active catalog items at or below their minimum
type LowStockSweepTask struct {
	catalog inventory.CatalogItemRepository
	logger  *zap.Logger
}

// NewLowStockSweepTask creates the low stock sweep
func NewLowStockSweepTask(catalog inventory.CatalogItemRepository, logger *zap.Logger) *LowStockSweepTask {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockSweepTask{catalog: catalog, logger: logger}
}

func (t *LowStockSweepTask) Name() string { return TaskLowStockSweep }

func (t *LowStockSweepTask) Run(ctx context.Context) error {
	items, err := t.catalog.FindLowStock(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	codes := make([]string, 0, len(items))
	for _, item := range items {
		codes = append(codes, item.Codigo)
	}
	t.logger.Warn("Catalog items at or below minimum stock",
		zap.Int("count", len(items)),
		zap.Strings("codigos", codes),
	)
	return nil
}
