package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	purchasedomain "github.com/spendindex/spendindex/internal/purchase/domain"
	"github.com/spendindex/spendindex/internal/store/domain"
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
	repo  repository.Repository[domain.Store]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("store.service"),
		genID: p.GenID,
		repo:  repository.ProvideStore[domain.Store](p.DB),
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Store, error) {
	items, err := s.repo.Find(ctx, &domain.Store{}, option.WithOrder("name asc"))
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Store, 0, len(items))
	for _, item := range items {
		resp = append(resp, *item)
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Store, error) {
	store, err := s.repo.FindOne(ctx, &domain.Store{ID: id})
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrNotFound
	}
	return store, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Store, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	store := &domain.Store{
		ID:          s.genID.Generate().Int64(),
		Name:        name,
		Description: trimPtr(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, store); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameTaken
		}
		return nil, err
	}
	return store, nil
}

func (s *Service) Update(ctx context.Context, id int64, req domain.UpdateRequest) (*domain.Store, error) {
	store, err := s.Get(ctx, id)
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

	if err := s.repo.Update(ctx, strconv.FormatInt(store.ID, 10), updates); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrNameTaken
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	store, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var refs int64
	if err := s.db.WithContext(ctx).
		Model(&purchasedomain.Purchase{}).
		Where("store_id = ?", store.ID).
		Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return domain.ErrStoreInUse
	}

	return s.repo.Delete(ctx, strconv.FormatInt(store.ID, 10))
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
