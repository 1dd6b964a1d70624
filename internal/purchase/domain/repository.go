package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// ListFiltered fetches purchases joined with product/category/store
	// names, applying every non-nil filter field. This is the single read
	// the analytics engine depends on; it must be safe for concurrent use.
	ListFiltered(ctx context.Context, db *gorm.DB, filter Filter) ([]FilteredRow, error)

	DateBounds(ctx context.Context, db *gorm.DB) (DateBounds, error)
	UsageCounts(ctx context.Context, db *gorm.DB) (UsageCounts, error)
}
