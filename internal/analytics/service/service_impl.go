package service

import (
	"context"
	"time"

	"github.com/spendindex/spendindex/internal/analytics/domain"
	purchasedomain "github.com/spendindex/spendindex/internal/purchase/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Purchases purchasedomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	purchases purchasedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("analytics.service"),
		purchases: p.Purchases,
	}
}

func (s *Service) BasketIndex(ctx context.Context, req domain.BasketIndexRequest) (*domain.BasketIndexResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.fetch(ctx, purchasedomain.Filter{
		FromDate:   req.FromDate,
		ToDate:     req.ToDate,
		StoreID:    req.StoreID,
		ProductID:  req.ProductID,
		ProductIDs: req.ProductIDs,
		CategoryID: req.CategoryID,
	}, req.PromoMode)
	if err != nil {
		return nil, err
	}

	var base *time.Time
	if req.BasePeriod != nil {
		b := periodStart(req.GroupBy, *req.BasePeriod)
		base = &b
	}
	dataset := prepare(rows, req.PromoMode, req.PriceMode, req.GroupBy)
	return computeBasketIndex(dataset, base), nil
}

func (s *Service) ProductIndex(ctx context.Context, req domain.ProductIndexRequest) (*domain.ProductIndexResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.fetch(ctx, purchasedomain.Filter{
		FromDate:  req.FromDate,
		ToDate:    req.ToDate,
		ProductID: &req.ProductID,
	}, req.PromoMode)
	if err != nil {
		return nil, err
	}
	dataset := prepare(rows, req.PromoMode, req.PriceMode, req.GroupBy)
	return computeProductIndex(dataset), nil
}

func (s *Service) Contributions(ctx context.Context, req domain.ContributionsRequest) (*domain.ContributionsResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.fetch(ctx, purchasedomain.Filter{
		FromDate:   req.FromDate,
		ToDate:     req.ToDate,
		StoreID:    req.StoreID,
		ProductID:  req.ProductID,
		ProductIDs: req.ProductIDs,
		CategoryID: req.CategoryID,
	}, req.PromoMode)
	if err != nil {
		return nil, err
	}
	dataset := prepare(rows, req.PromoMode, req.PriceMode, req.GroupBy)
	return computeContributions(dataset, req.By, req.Top), nil
}

func (s *Service) StoreComparison(ctx context.Context, req domain.StoreComparisonRequest) (*domain.StoreComparisonResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.fetch(ctx, purchasedomain.Filter{
		FromDate:  req.FromDate,
		ToDate:    req.ToDate,
		ProductID: &req.ProductID,
	}, req.PromoMode)
	if err != nil {
		return nil, err
	}
	// The comparator ignores periods; day bucketing keeps the rows as-is.
	dataset := prepare(rows, req.PromoMode, req.PriceMode, domain.GroupByDay)
	return computeStoreComparison(dataset), nil
}

// fetch pulls one snapshot of matching rows. Promo pushdown narrows the
// query when only promo rows can qualify; prepare re-applies the filter
// in memory either way.
func (s *Service) fetch(ctx context.Context, filter purchasedomain.Filter, promoMode domain.PromoMode) ([]purchasedomain.FilteredRow, error) {
	if promoMode == domain.PromoModeOnly {
		isPromo := true
		filter.IsPromo = &isPromo
	}
	rows, err := s.purchases.ListFiltered(ctx, s.db, filter)
	if err != nil {
		s.log.Error("failed to fetch purchases", zap.Error(err))
		return nil, err
	}
	return rows, nil
}
