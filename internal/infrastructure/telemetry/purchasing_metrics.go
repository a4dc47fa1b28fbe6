package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/gestion-compras/backend/internal/domain/inventory"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when metrics are built without a meter
var ErrMeterNil = errors.New("meter cannot be nil")

// LowStockSource lists catalog items at or below their minimum stock
type LowStockSource interface {
	FindLowStock(ctx context.Context) ([]inventory.CatalogItem, error)
}

// PurchasingMetrics records document intake, stock decrements, response
// cache lookups and the number of low-stock catalog items.
type PurchasingMetrics struct {
	documentsCreated *Counter
	documentLines    *Histogram
	stockDecrements  *Counter
	cacheLookups     *Counter
	logger           *zap.Logger
}

// NewPurchasingMetrics creates the instruments. When lowStock is non-nil the
// low-stock gauge queries it on every collection.
func NewPurchasingMetrics(meter metric.Meter, lowStock LowStockSource, logger *zap.Logger) (*PurchasingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &PurchasingMetrics{logger: logger}

	var err error
	if m.documentsCreated, err = NewCounter(meter,
		"gc_documents_created_total",
		"Documents created through intake, by kind",
		"{document}"); err != nil {
		return nil, err
	}
	if m.documentLines, err = NewHistogram(meter, HistogramOpts{
		Name:        "gc_document_lines",
		Description: "Lines kept per created document",
		Unit:        "{line}",
		Boundaries:  LineCountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.stockDecrements, err = NewCounter(meter,
		"gc_stock_decrements_total",
		"Stock decrements attempted at intake, by kind, mode and outcome",
		"{decrement}"); err != nil {
		return nil, err
	}
	if m.cacheLookups, err = NewCounter(meter,
		"gc_cache_lookups_total",
		"Response cache lookups, by resource and result",
		"{lookup}"); err != nil {
		return nil, err
	}

	if lowStock != nil {
		_, err = meter.Int64ObservableGauge("gc_inventory_low_stock_items",
			metric.WithDescription("Active catalog items at or below their minimum stock"),
			metric.WithUnit("{item}"),
			metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
				items, err := lowStock.FindLowStock(ctx)
				if err != nil {
					m.logger.Warn("Failed to collect low stock count", zap.Error(err))
					return nil
				}
				o.Observe(int64(len(items)))
				return nil
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create low stock gauge: %w", err)
		}
	}

	return m, nil
}

// RecordDocumentCreated counts a created document and its line count
func (m *PurchasingMetrics) RecordDocumentCreated(ctx context.Context, kind string, lines int) {
	m.documentsCreated.Inc(ctx, AttrDocumentKind.String(kind))
	m.documentLines.Record(ctx, float64(lines), AttrDocumentKind.String(kind))
}

// RecordStockDecrements counts the outcome of one decrement loop
func (m *PurchasingMetrics) RecordStockDecrements(ctx context.Context, kind, mode string, applied, skipped, failed int) {
	for outcome, n := range map[string]int{"applied": applied, "skipped": skipped, "failed": failed} {
		if n == 0 {
			continue
		}
		m.stockDecrements.Add(ctx, int64(n),
			AttrDocumentKind.String(kind),
			AttrDecrementMode.String(mode),
			AttrOutcome.String(outcome))
	}
}

// RecordCacheLookup counts one response cache lookup
func (m *PurchasingMetrics) RecordCacheLookup(ctx context.Context, resource string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Inc(ctx, AttrResource.String(resource), AttrCacheResult.String(result))
}
