package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/spendindex/spendindex/internal/category/domain"
	productdomain "github.com/spendindex/spendindex/internal/product/domain"
	"github.com/spendindex/spendindex/pkg/db"
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
	repo  repository.Repository[domain.Category]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("category.service"),
		genID: p.GenID,
		repo:  repository.ProvideStore[domain.Category](p.DB),
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	items, err := s.repo.Find(ctx, &domain.Category{}, option.WithOrder("name asc"))
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Category, 0, len(items))
	for _, item := range items {
		resp = append(resp, *item)
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.repo.FindOne(ctx, &domain.Category{ID: id})
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}
	return category, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:          s.genID.Generate().Int64(),
		Name:        name,
		Description: trimPtr(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameTaken
		}
		return nil, err
	}
	return category, nil
}

func (s *Service) Update(ctx context.Context, id int64, req domain.UpdateRequest) (*domain.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = trimPtr(req.Description)
	}

	if err := s.repo.Update(ctx, strconv.FormatInt(category.ID, 10), updates); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameTaken
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	category, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var refs int64
	if err := s.db.WithContext(ctx).
		Model(&productdomain.Product{}).
		Where("category_id = ?", category.ID).
		Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return domain.ErrCategoryInUse
	}

	return s.repo.Delete(ctx, strconv.FormatInt(category.ID, 10))
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
