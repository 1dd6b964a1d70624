package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	productdomain "github.com/spendindex/spendindex/internal/product/domain"
	"github.com/spendindex/spendindex/internal/purchase/domain"
	"github.com/spendindex/spendindex/pkg/db/option"
	"github.com/spendindex/spendindex/pkg/db/pagination"
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
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository

	store       repository.Repository[domain.Purchase]
	productRepo repository.Repository[productdomain.Product]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("purchase.service"),
		genID: p.GenID,
		repo:  p.Repo,

		store:       repository.ProvideStore[domain.Purchase](p.DB),
		productRepo: repository.ProvideStore[productdomain.Product](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Purchase, error) {
	if req.Quantity <= 0 || !isFinite(req.Quantity) {
		return nil, domain.ErrInvalidQuantity
	}
	if req.TotalPrice <= 0 || !isFinite(req.TotalPrice) {
		return nil, domain.ErrInvalidTotalPrice
	}

	regularUnitPrice := req.RegularUnitPrice
	if regularUnitPrice != nil && (*regularUnitPrice <= 0 || !isFinite(*regularUnitPrice)) {
		return nil, domain.ErrInvalidRegularPrice
	}

	product, err := s.productRepo.FindOne(ctx, &productdomain.Product{ID: req.ProductID})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrInvalidProduct
	}

	now := time.Now().UTC()
	purchaseDate := dateOnly(now)
	if req.PurchaseDate != nil {
		purchaseDate = dateOnly(*req.PurchaseDate)
		if purchaseDate.After(dateOnly(now)) {
			return nil, domain.ErrDateInFuture
		}
	}

	promoType := trimPtr(req.PromoType)

	// A promo type or a regular price implies a promo purchase; a non-promo
	// purchase must not carry either.
	isPromo := req.IsPromo || promoType != nil || regularUnitPrice != nil
	if !isPromo {
		promoType = nil
		regularUnitPrice = nil
	}

	purchase := &domain.Purchase{
		ID:               s.genID.Generate().Int64(),
		ProductID:        req.ProductID,
		StoreID:          req.StoreID,
		PurchaseDate:     purchaseDate,
		Quantity:         req.Quantity,
		TotalPrice:       req.TotalPrice,
		UnitPrice:        moneyDiv(req.TotalPrice, req.Quantity),
		IsPromo:          isPromo,
		PromoType:        promoType,
		RegularUnitPrice: regularUnitPrice,
		Comment:          trimPtr(req.Comment),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.Create(ctx, purchase); err != nil {
		return nil, err
	}
	return purchase, nil
}

func (s *Service) Update(ctx context.Context, id int64, req domain.UpdateRequest) (*domain.Purchase, error) {
	purchase, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Quantity != nil {
		if *req.Quantity <= 0 || !isFinite(*req.Quantity) {
			return nil, domain.ErrInvalidQuantity
		}
		purchase.Quantity = *req.Quantity
	}
	if req.TotalPrice != nil {
		if *req.TotalPrice <= 0 || !isFinite(*req.TotalPrice) {
			return nil, domain.ErrInvalidTotalPrice
		}
		purchase.TotalPrice = *req.TotalPrice
	}
	if req.PurchaseDate != nil {
		purchaseDate := dateOnly(*req.PurchaseDate)
		if purchaseDate.After(dateOnly(time.Now().UTC())) {
			return nil, domain.ErrDateInFuture
		}
		purchase.PurchaseDate = purchaseDate
	}
	if req.ProductID != nil {
		product, err := s.productRepo.FindOne(ctx, &productdomain.Product{ID: *req.ProductID})
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrInvalidProduct
		}
		purchase.ProductID = *req.ProductID
	}
	if req.StoreID != nil {
		purchase.StoreID = req.StoreID
	}
	if req.Comment != nil {
		purchase.Comment = trimPtr(req.Comment)
	}

	if req.IsPromo != nil {
		purchase.IsPromo = *req.IsPromo
		if !purchase.IsPromo {
			purchase.PromoType = nil
			purchase.RegularUnitPrice = nil
		}
	}
	if promoType := trimPtr(req.PromoType); promoType != nil {
		purchase.PromoType = promoType
		purchase.IsPromo = true
	}
	if req.RegularUnitPrice != nil {
		if *req.RegularUnitPrice <= 0 || !isFinite(*req.RegularUnitPrice) {
			return nil, domain.ErrInvalidRegularPrice
		}
		purchase.RegularUnitPrice = req.RegularUnitPrice
		purchase.IsPromo = true
	}

	purchase.UnitPrice = moneyDiv(purchase.TotalPrice, purchase.Quantity)
	purchase.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(purchase).Error; err != nil {
		return nil, err
	}
	return purchase, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Purchase, error) {
	purchase, err := s.store.FindOne(ctx, &domain.Purchase{ID: id})
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, domain.ErrNotFound
	}
	return purchase, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	if req.FromDate != nil && req.ToDate != nil && req.ToDate.Before(*req.FromDate) {
		return nil, domain.ErrInvalidDateRange
	}

	stmt := s.db.WithContext(ctx).Model(&domain.Purchase{})
	if req.FromDate != nil {
		stmt = stmt.Where("purchase_date >= ?", dateOnly(*req.FromDate))
	}
	if req.ToDate != nil {
		stmt = stmt.Where("purchase_date <= ?", dateOnly(*req.ToDate))
	}
	if req.StoreID != nil {
		stmt = stmt.Where("store_id = ?", *req.StoreID)
	}
	if req.ProductID != nil {
		stmt = stmt.Where("product_id = ?", *req.ProductID)
	}
	if req.IsPromo != nil {
		stmt = stmt.Where("is_promo = ?", *req.IsPromo)
	}
	stmt = option.ApplyPagination(req.Pagination).Apply(stmt)

	var purchases []*domain.Purchase
	if err := stmt.Order("purchase_date desc, id desc").Find(&purchases).Error; err != nil {
		return nil, err
	}

	page, info := pagination.BuildCursorPageInfo(purchases, req.Pagination.Limit(), func(p *domain.Purchase) string {
		return strconv.FormatInt(p.ID, 10)
	})

	resp := &domain.ListResponse{PageInfo: *info}
	resp.Purchases = make([]domain.Purchase, 0, len(page))
	for _, p := range page {
		resp.Purchases = append(resp.Purchases, *p)
	}
	return resp, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	purchase, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, strconv.FormatInt(purchase.ID, 10))
}

func (s *Service) DateBounds(ctx context.Context) (domain.DateBounds, error) {
	return s.repo.DateBounds(ctx, s.db)
}

func (s *Service) UsageCounts(ctx context.Context) (domain.UsageCounts, error) {
	return s.repo.UsageCounts(ctx, s.db)
}

// moneyDiv derives a unit price from total and quantity, rounded half-up
// to cents.
func moneyDiv(total, qty float64) float64 {
	return math.Round(total/qty*100) / 100
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
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
