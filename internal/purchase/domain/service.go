package domain

import (
	"context"
	"errors"
	"time"

	"github.com/spendindex/spendindex/pkg/db/pagination"
)

type CreateRequest struct {
	ProductID        int64      `json:"product_id"`
	StoreID          *int64     `json:"store_id"`
	Quantity         float64    `json:"quantity"`
	TotalPrice       float64    `json:"total_price"`
	PurchaseDate     *time.Time `json:"purchase_date"`
	Comment          *string    `json:"comment"`
	IsPromo          bool       `json:"is_promo"`
	PromoType        *string    `json:"promo_type"`
	RegularUnitPrice *float64   `json:"regular_unit_price"`
}

type UpdateRequest struct {
	ProductID        *int64     `json:"product_id"`
	StoreID          *int64     `json:"store_id"`
	Quantity         *float64   `json:"quantity"`
	TotalPrice       *float64   `json:"total_price"`
	PurchaseDate     *time.Time `json:"purchase_date"`
	Comment          *string    `json:"comment"`
	IsPromo          *bool      `json:"is_promo"`
	PromoType        *string    `json:"promo_type"`
	RegularUnitPrice *float64   `json:"regular_unit_price"`
}

type ListRequest struct {
	pagination.Pagination
	Filter
}

type ListResponse struct {
	pagination.PageInfo
	Purchases []Purchase `json:"purchases"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Purchase, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Purchase, error)
	Get(ctx context.Context, id int64) (*Purchase, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Delete(ctx context.Context, id int64) error

	DateBounds(ctx context.Context) (DateBounds, error)
	UsageCounts(ctx context.Context) (UsageCounts, error)
}

var (
	ErrInvalidProduct      = errors.New("invalid_product")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidTotalPrice   = errors.New("invalid_total_price")
	ErrInvalidRegularPrice = errors.New("invalid_regular_price")
	ErrDateInFuture        = errors.New("date_in_future")
	ErrInvalidDateRange    = errors.New("invalid_date_range")
	ErrNotFound            = errors.New("not_found")
)
