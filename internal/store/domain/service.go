package domain

import (
	"context"
	"errors"
)

type CreateRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type UpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type Service interface {
	List(ctx context.Context) ([]Store, error)
	Get(ctx context.Context, id int64) (*Store, error)
	Create(ctx context.Context, req CreateRequest) (*Store, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Store, error)
	Delete(ctx context.Context, id int64) error
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrNameTaken   = errors.New("name_taken")
	ErrNotFound    = errors.New("not_found")
	ErrStoreInUse  = errors.New("store_in_use")
)
