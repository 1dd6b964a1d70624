package domain

import (
	"context"
	"errors"
)

type CreateRequest struct {
	MeasureType string `json:"measure_type"`
	Unit        string `json:"unit"`
}

type UpdateRequest struct {
	MeasureType *string `json:"measure_type"`
	Unit        *string `json:"unit"`
}

type Service interface {
	List(ctx context.Context) ([]Unit, error)
	Get(ctx context.Context, id int64) (*Unit, error)
	Create(ctx context.Context, req CreateRequest) (*Unit, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Unit, error)
	Delete(ctx context.Context, id int64) error
}

var (
	ErrInvalidMeasureType = errors.New("invalid_measure_type")
	ErrInvalidUnit        = errors.New("invalid_unit")
	ErrNotFound           = errors.New("not_found")
	ErrUnitInUse          = errors.New("unit_in_use")
)
