// Package testutil provides shared helpers for package and integration tests:
// database handles (sqlmock and on-disk SQLite), seed fixtures and HTTP helpers.
package testutil

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gestion-compras/backend/internal/domain/identity"
	"github.com/gestion-compras/backend/internal/domain/inventory"
	"github.com/gestion-compras/backend/internal/domain/partner"
	"github.com/gestion-compras/backend/internal/domain/purchasing"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB wraps a postgres-dialect GORM handle backed by sqlmock
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a mock database that is closed when the test ends
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// NewSQLiteDB opens a file-backed SQLite database in the test's temp dir with
// every table migrated. A single connection serializes statements the way
// row locks would on PostgreSQL.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "gestion.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&inventory.CatalogItem{},
		&inventory.StockMovement{},
		&partner.Supplier{},
		&identity.User{},
		&purchasing.Order{},
		&purchasing.Invoice{},
		&purchasing.WorkOrder{},
	))
	for _, kind := range []purchasing.Kind{purchasing.KindOrder, purchasing.KindInvoice, purchasing.KindWorkOrder} {
		require.NoError(t, db.Exec(fmt.Sprintf(sqliteLinesDDL, kind.LinesTable(), headerTable(kind))).Error)
	}

	return db
}

// sqliteLinesDDL mirrors the line tables of the migrations, foreign keys included
const sqliteLinesDDL = `CREATE TABLE %s (
	id              TEXT PRIMARY KEY,
	documento_id    TEXT NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
	cantidad        INTEGER NOT NULL,
	descripcion     TEXT NOT NULL,
	inventario_id   TEXT REFERENCES inventario (id) ON DELETE SET NULL,
	precio_unitario DECIMAL(12, 2) NOT NULL DEFAULT 0,
	importe         DECIMAL(12, 2) NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL
)`

func headerTable(kind purchasing.Kind) string {
	switch kind {
	case purchasing.KindOrder:
		return purchasing.Order{}.TableName()
	case purchasing.KindInvoice:
		return purchasing.Invoice{}.TableName()
	default:
		return purchasing.WorkOrder{}.TableName()
	}
}

// WaitForCondition polls condition until it holds or the timeout expires
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return condition()
}
