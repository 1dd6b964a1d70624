package domain

import (
	"context"
	"errors"
)

type CreateRequest struct {
	Name       string `json:"name"`
	CategoryID *int64 `json:"category_id"`
	UnitID     int64  `json:"unit_id"`
}

type UpdateRequest struct {
	Name       *string `json:"name"`
	CategoryID *int64  `json:"category_id"`
	UnitID     *int64  `json:"unit_id"`
}

type Service interface {
	List(ctx context.Context) ([]Response, error)
	Get(ctx context.Context, id int64) (*Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id int64) error
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidUnit     = errors.New("invalid_unit")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrNotFound        = errors.New("not_found")
	ErrProductInUse    = errors.New("product_in_use")
)
