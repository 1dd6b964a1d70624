package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	categorydomain "github.com/spendindex/spendindex/internal/category/domain"
	"github.com/spendindex/spendindex/internal/product/domain"
	purchasedomain "github.com/spendindex/spendindex/internal/purchase/domain"
	unitdomain "github.com/spendindex/spendindex/internal/unit/domain"
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

	repo         repository.Repository[domain.Product]
	unitRepo     repository.Repository[unitdomain.Unit]
	categoryRepo repository.Repository[categorydomain.Category]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		genID: p.GenID,

		repo:         repository.ProvideStore[domain.Product](p.DB),
		unitRepo:     repository.ProvideStore[unitdomain.Unit](p.DB),
		categoryRepo: repository.ProvideStore[categorydomain.Category](p.DB),
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.Find(ctx, &domain.Product{}, option.WithOrder("name asc"))
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Response, 0, len(items))
	for _, item := range items {
		enriched, err := s.toResponse(ctx, item)
		if err != nil {
			return nil, err
		}
		resp = append(resp, *enriched)
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Response, error) {
	product, err := s.repo.FindOne(ctx, &domain.Product{ID: id})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return s.toResponse(ctx, product)
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	if err := s.ensureUnit(ctx, req.UnitID); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:         s.genID.Generate().Int64(),
		Name:       name,
		CategoryID: req.CategoryID,
		UnitID:     req.UnitID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, product)
}

func (s *Service) Update(ctx context.Context, id int64, req domain.UpdateRequest) (*domain.Response, error) {
	product, err := s.repo.FindOne(ctx, &domain.Product{ID: id})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		updates["name"] = name
	}
	if req.UnitID != nil {
		if err := s.ensureUnit(ctx, *req.UnitID); err != nil {
			return nil, err
		}
		updates["unit_id"] = *req.UnitID
	}
	if req.CategoryID != nil {
		if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *req.CategoryID
	}

	if err := s.repo.Update(ctx, strconv.FormatInt(product.ID, 10), updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	product, err := s.repo.FindOne(ctx, &domain.Product{ID: id})
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}

	var refs int64
	if err := s.db.WithContext(ctx).
		Model(&purchasedomain.Purchase{}).
		Where("product_id = ?", product.ID).
		Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return domain.ErrProductInUse
	}

	return s.repo.Delete(ctx, strconv.FormatInt(product.ID, 10))
}

func (s *Service) ensureUnit(ctx context.Context, unitID int64) error {
	if unitID == 0 {
		return domain.ErrInvalidUnit
	}
	unit, err := s.unitRepo.FindOne(ctx, &unitdomain.Unit{ID: unitID})
	if err != nil {
		return err
	}
	if unit == nil {
		return domain.ErrInvalidUnit
	}
	return nil
}

func (s *Service) ensureCategory(ctx context.Context, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	category, err := s.categoryRepo.FindOne(ctx, &categorydomain.Category{ID: *categoryID})
	if err != nil {
		return err
	}
	if category == nil {
		return domain.ErrInvalidCategory
	}
	return nil
}

func (s *Service) toResponse(ctx context.Context, product *domain.Product) (*domain.Response, error) {
	resp := &domain.Response{
		ID:         product.ID,
		Name:       product.Name,
		CategoryID: product.CategoryID,
		UnitID:     product.UnitID,
	}

	unit, err := s.unitRepo.FindOne(ctx, &unitdomain.Unit{ID: product.UnitID})
	if err != nil {
		return nil, err
	}
	if unit != nil {
		resp.Unit = unit.Unit
		resp.MeasureType = unit.MeasureType
	}

	if product.CategoryID != nil {
		category, err := s.categoryRepo.FindOne(ctx, &categorydomain.Category{ID: *product.CategoryID})
		if err != nil {
			return nil, err
		}
		if category != nil {
			resp.Category = &category.Name
		}
	}

	return resp, nil
}
