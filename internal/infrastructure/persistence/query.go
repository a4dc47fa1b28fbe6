package persistence

import (
	"fmt"
	"strings"

	"github.com/gestion-compras/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Maximum page size accepted from callers
const maxPageSize = 500

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks the sort field against a whitelist and falls back
// to defaultField when it is not allowed.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// Allowed sort fields per table
var (
	CatalogSortFields = map[string]bool{
		"created_at":      true,
		"updated_at":      true,
		"codigo":          true,
		"nombre":          true,
		"categoria":       true,
		"stock_actual":    true,
		"precio_unitario": true,
	}

	SupplierSortFields = map[string]bool{
		"created_at":    true,
		"updated_at":    true,
		"nombre_social": true,
		"rfc":           true,
	}

	DocumentSortFields = map[string]bool{
		"created_at": true,
		"updated_at": true,
		"estado":     true,
		"total":      true,
	}
)

// applyOrder applies a whitelisted ORDER BY clause. defaultDir is used when
// the caller did not ask for a direction.
func applyOrder(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField, defaultDir string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := filter.OrderDir
	if dir == "" {
		dir = defaultDir
	}
	return query.Order(fmt.Sprintf("%s %s", field, ValidateSortOrder(dir)))
}

// applyPagination applies LIMIT/OFFSET when a page size was requested.
// A zero page size lists everything.
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.PageSize <= 0 {
		return query
	}
	size := min(filter.PageSize, maxPageSize)
	page := max(filter.Page, 1)
	return query.Limit(size).Offset((page - 1) * size)
}

// applySearch adds a case-insensitive substring match over the given columns.
// LOWER(..) LIKE keeps the query portable between PostgreSQL and SQLite.
func applySearch(query *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + strings.ToLower(search) + "%"
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		clauses[i] = fmt.Sprintf("LOWER(%s) LIKE ?", col)
		args[i] = pattern
	}
	return query.Where(strings.Join(clauses, " OR "), args...)
}
