package intake

import (
	"context"
	"fmt"

	"github.com/gestion-compras/backend/internal/domain/inventory"
	"github.com/gestion-compras/backend/internal/domain/purchasing"
	"github.com/gestion-compras/backend/internal/infrastructure/config"
	"github.com/gestion-compras/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockDecrementer removes a quantity from a catalog item's on-hand stock.
// Implementations never clamp: the result may go negative.
type StockDecrementer interface {
	Decrement(ctx context.Context, itemID uuid.UUID, qty int) error
	Mode() string
}

// AtomicDecrementer subtracts server-side in a single statement, so
// concurrent intakes touching the same item never lose an update.
type AtomicDecrementer struct {
	store inventory.StockStore
}

// NewAtomicDecrementer creates the default decrement strategy
func NewAtomicDecrementer(store inventory.StockStore) *AtomicDecrementer {
	return &AtomicDecrementer{store: store}
}

// Decrement implements StockDecrementer
func (d *AtomicDecrementer) Decrement(ctx context.Context, itemID uuid.UUID, qty int) error {
	return d.store.Decrement(ctx, itemID, qty)
}

// Mode implements StockDecrementer
func (d *AtomicDecrementer) Mode() string { return config.DecrementModeAtomic }

// ReadWriteDecrementer reads the current quantity and writes back
// current-qty. Two overlapping calls on the same item can lose one of the
// updates; it exists to reproduce the legacy behaviour.
type ReadWriteDecrementer struct {
	store inventory.StockStore
}

// NewReadWriteDecrementer creates the legacy decrement strategy
func NewReadWriteDecrementer(store inventory.StockStore) *ReadWriteDecrementer {
	return &ReadWriteDecrementer{store: store}
}

// Decrement implements StockDecrementer
func (d *ReadWriteDecrementer) Decrement(ctx context.Context, itemID uuid.UUID, qty int) error {
	current, err := d.store.OnHand(ctx, itemID)
	if err != nil {
		return fmt.Errorf("read stock: %w", err)
	}
	if err := d.store.SetOnHand(ctx, itemID, current-qty); err != nil {
		return fmt.Errorf("write stock: %w", err)
	}
	return nil
}

// Mode implements StockDecrementer
func (d *ReadWriteDecrementer) Mode() string { return config.DecrementModeReadWrite }

// NewStockDecrementer selects a strategy by its configured mode name
func NewStockDecrementer(mode string, store inventory.StockStore) (StockDecrementer, error) {
	switch mode {
	case "", config.DecrementModeAtomic:
		return NewAtomicDecrementer(store), nil
	case config.DecrementModeReadWrite:
		return NewReadWriteDecrementer(store), nil
	default:
		return nil, fmt.Errorf("unknown decrement mode %q", mode)
	}
}

// DecrementFailure describes one line whose stock could not be adjusted
type DecrementFailure struct {
	InventarioID uuid.UUID
	Cantidad     int
	Err          error
}

// DecrementReport summarises one run of the decrement loop. It feeds logs
// and metrics only; callers never turn it into a request failure.
type DecrementReport struct {
	Applied  int
	Skipped  int
	Failed   int
	Failures []DecrementFailure
}

// DecrementLoop walks the lines of a freshly created document and
// decrements the stock of every catalog item they reference, in order.
type DecrementLoop struct {
	decrementer StockDecrementer
	movements   inventory.StockMovementRepository
	logger      *zap.Logger
}

// NewDecrementLoop creates a decrement loop. movements may be nil to disable
// the stock movement log.
func NewDecrementLoop(decrementer StockDecrementer, movements inventory.StockMovementRepository, logger *zap.Logger) *DecrementLoop {
	return &DecrementLoop{
		decrementer: decrementer,
		movements:   movements,
		logger:      logger,
	}
}

// Mode returns the name of the active decrement strategy
func (l *DecrementLoop) Mode() string {
	return l.decrementer.Mode()
}

// Run decrements stock for every line that references a catalog item with a
// positive quantity. A failing line is logged and the loop moves on.
func (l *DecrementLoop) Run(ctx context.Context, kind purchasing.Kind, documentID uuid.UUID, lines []purchasing.LineItem) DecrementReport {
	log := logger.Enrich(ctx, l.logger).With(
		zap.String("document_kind", string(kind)),
		zap.String("document_id", documentID.String()),
		zap.String("decrement_mode", l.decrementer.Mode()),
	)

	var report DecrementReport
	for _, line := range lines {
		if !line.ReferencesCatalog() || line.Cantidad <= 0 {
			report.Skipped++
			continue
		}
		itemID := *line.InventarioID

		if err := l.decrementer.Decrement(ctx, itemID, line.Cantidad); err != nil {
			report.Failed++
			report.Failures = append(report.Failures, DecrementFailure{
				InventarioID: itemID,
				Cantidad:     line.Cantidad,
				Err:          err,
			})
			log.Warn("Stock decrement failed",
				zap.String("inventario_id", itemID.String()),
				zap.Int("cantidad", line.Cantidad),
				zap.Error(err))
			continue
		}
		report.Applied++
		log.Debug("Stock decremented",
			zap.String("inventario_id", itemID.String()),
			zap.Int("cantidad", line.Cantidad))

		l.recordMovement(ctx, log, kind, documentID, itemID, line.Cantidad)
	}

	return report
}

func (l *DecrementLoop) recordMovement(ctx context.Context, log *zap.Logger, kind purchasing.Kind, documentID, itemID uuid.UUID, qty int) {
	if l.movements == nil {
		return
	}
	movement := inventory.NewStockMovement(itemID, inventory.MovementDocumentIntake, -qty).
		WithReference(string(kind), documentID)
	if err := l.movements.Append(ctx, movement); err != nil {
		log.Warn("Failed to record stock movement",
			zap.String("inventario_id", itemID.String()),
			zap.Error(err))
	}
}
