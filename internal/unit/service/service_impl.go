package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	productdomain "github.com/spendindex/spendindex/internal/product/domain"
	"github.com/spendindex/spendindex/internal/unit/domain"
	"github.com/spendindex/spendindex/pkg/db/option"
	"github.com/spendindex/spendindex/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  repository.Repository[domain.Unit]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("unit.service"),
		genID: p.GenID,
		repo:  repository.ProvideStore[domain.Unit](p.DB),
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Unit, error) {
	items, err := s.repo.Find(ctx, &domain.Unit{}, option.WithOrder("measure_type asc, unit asc"))
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Unit, 0, len(items))
	for _, item := range items {
		resp = append(resp, *item)
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Unit, error) {
	unit, err := s.repo.FindOne(ctx, &domain.Unit{ID: id})
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, domain.ErrNotFound
	}
	return unit, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Unit, error) {
	measureType := strings.TrimSpace(req.MeasureType)
	if measureType == "" {
		return nil, domain.ErrInvalidMeasureType
	}
	unitName := strings.TrimSpace(req.Unit)
	if unitName == "" {
		return nil, domain.ErrInvalidUnit
	}

	now := time.Now().UTC()
	unit := &domain.Unit{
		ID:          s.genID.Generate().Int64(),
		MeasureType: measureType,
		Unit:        unitName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *Service) Update(ctx context.Context, id int64, req domain.UpdateRequest) (*domain.Unit, error) {
	unit, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if req.MeasureType != nil {
		measureType := strings.TrimSpace(*req.MeasureType)
		if measureType == "" {
			return nil, domain.ErrInvalidMeasureType
		}
		updates["measure_type"] = measureType
	}
	if req.Unit != nil {
		unitName := strings.TrimSpace(*req.Unit)
		if unitName == "" {
			return nil, domain.ErrInvalidUnit
		}
		updates["unit"] = unitName
	}

	if err := s.repo.Update(ctx, strconv.FormatInt(unit.ID, 10), updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	unit, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var refs int64
	if err := s.db.WithContext(ctx).
		Model(&productdomain.Product{}).
		Where("unit_id = ?", unit.ID).
		Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return domain.ErrUnitInUse
	}

	return s.repo.Delete(ctx, strconv.FormatInt(unit.ID, 10))
}
