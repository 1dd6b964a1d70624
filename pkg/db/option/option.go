package option

import (
	"github.com/spendindex/spendindex/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before execution.
type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type queryFn func(*gorm.DB) *gorm.DB

func (f queryFn) Apply(stmt *gorm.DB) *gorm.DB { return f(stmt) }

func WithLimit(n int) QueryOption {
	return queryFn(func(stmt *gorm.DB) *gorm.DB {
		return stmt.Limit(n)
	})
}

func WithOrder(expr string) QueryOption {
	return queryFn(func(stmt *gorm.DB) *gorm.DB {
		return stmt.Order(expr)
	})
}

// ApplyPagination applies cursor pagination: rows past the cursor ID,
// over-fetched by one so the caller can detect a next page.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return queryFn(func(stmt *gorm.DB) *gorm.DB {
		if page.PageToken != "" {
			if cursor, err := pagination.DecodeCursor(page.PageToken); err == nil && cursor.ID != "" {
				stmt = stmt.Where("id < ?", cursor.ID)
			}
		}
		return stmt.Limit(page.Limit() + 1)
	})
}
