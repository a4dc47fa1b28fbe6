package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormConfig controls database instrumentation
type GormConfig struct {
	Tracing            bool
	DBName             string
	SlowQueryThreshold time.Duration // default 200ms
}

// DBMetrics counts and times queries and observes the connection pool
type DBMetrics struct {
	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	slowQuery      time.Duration
}

// InstrumentGorm registers otelgorm spans when tracing is on and query
// metrics when meter is non-nil. Query variables never reach span attributes.
func InstrumentGorm(db *gorm.DB, cfg GormConfig, meter metric.Meter, logger *zap.Logger) (*DBMetrics, error) {
	if cfg.Tracing {
		plugin := otelgorm.NewPlugin(
			otelgorm.WithDBName(cfg.DBName),
			otelgorm.WithoutQueryVariables(),
		)
		if err := db.Use(plugin); err != nil {
			return nil, err
		}
		logger.Info("Database tracing enabled", zap.String("db_name", cfg.DBName))
	}
	if meter == nil {
		return nil, nil
	}

	m, err := NewDBMetrics(meter, cfg.SlowQueryThreshold)
	if err != nil {
		return nil, err
	}
	if err := m.registerCallbacks(db); err != nil {
		return nil, err
	}
	if err := m.observePool(db, meter); err != nil {
		return nil, err
	}
	logger.Info("Database metrics enabled", zap.Duration("slow_query_threshold", m.slowQuery))
	return m, nil
}

// NewDBMetrics creates the query instruments
func NewDBMetrics(meter metric.Meter, slowQuery time.Duration) (*DBMetrics, error) {
	if slowQuery <= 0 {
		slowQuery = 200 * time.Millisecond
	}
	m := &DBMetrics{slowQuery: slowQuery}

	var err error
	if m.queryTotal, err = NewCounter(meter, "db_query_total", "Database queries by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total", "Database queries slower than the threshold, by table", "{query}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordQuery records one finished statement
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, d time.Duration) {
	operation = strings.ToUpper(operation)
	if operation == "" {
		operation = "OTHER"
	}
	m.queryTotal.Inc(ctx, AttrDBOperation.String(operation))
	m.queryDuration.RecordDuration(ctx, d, AttrDBOperation.String(operation))
	if d > m.slowQuery {
		if table == "" {
			table = "unknown"
		}
		m.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

type startKey struct{}

// callbackRegistrar is satisfied by the callbacks gorm returns from Before and After
type callbackRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

func (m *DBMetrics) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		name      string
		operation string
		before    callbackRegistrar
		after     callbackRegistrar
	}{
		{"create", "INSERT", cb.Create().Before("gorm:create"), cb.Create().After("gorm:create")},
		{"query", "SELECT", cb.Query().Before("gorm:query"), cb.Query().After("gorm:query")},
		{"update", "UPDATE", cb.Update().Before("gorm:update"), cb.Update().After("gorm:update")},
		{"delete", "DELETE", cb.Delete().Before("gorm:delete"), cb.Delete().After("gorm:delete")},
		{"row", "", cb.Row().Before("gorm:row"), cb.Row().After("gorm:row")},
		{"raw", "", cb.Raw().Before("gorm:raw"), cb.Raw().After("gorm:raw")},
	}

	start := func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		tx.Statement.Context = context.WithValue(ctx, startKey{}, time.Now())
	}

	for _, h := range hooks {
		operation := h.operation
		finish := func(tx *gorm.DB) {
			ctx := tx.Statement.Context
			if ctx == nil {
				return
			}
			began, ok := ctx.Value(startKey{}).(time.Time)
			if !ok {
				return
			}
			op := operation
			if op == "" {
				op = sqlOperation(tx.Statement.SQL.String())
			}
			m.RecordQuery(ctx, op, tx.Statement.Table, time.Since(began))
		}
		if err := h.before.Register("db_metrics:before_"+h.name, start); err != nil {
			return err
		}
		if err := h.after.Register("db_metrics:after_"+h.name, finish); err != nil {
			return err
		}
	}
	return nil
}

// observePool reports connection pool usage on every collection
func (m *DBMetrics) observePool(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	_, err = meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			stats := sqlDB.Stats()
			o.Observe(int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
			o.Observe(int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
			o.Observe(int64(stats.MaxOpenConnections), metric.WithAttributes(AttrDBState.String("max")))
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create pool gauge: %w", err)
	}
	return nil
}

func sqlOperation(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, op) {
			return op
		}
	}
	return "OTHER"
}
