package repository

import (
	"context"
	"time"

	"github.com/spendindex/spendindex/internal/purchase/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListFiltered(ctx context.Context, db *gorm.DB, filter domain.Filter) ([]domain.FilteredRow, error) {
	stmt := db.WithContext(ctx).
		Table("purchases AS p").
		Select(`p.id, p.purchase_date, p.product_id, pr.name AS product,
			pr.category_id, c.name AS category,
			p.store_id, s.name AS store,
			p.quantity, p.total_price, p.unit_price, p.regular_unit_price, p.is_promo`).
		Joins("JOIN products pr ON pr.id = p.product_id").
		Joins("LEFT JOIN categories c ON c.id = pr.category_id").
		Joins("LEFT JOIN stores s ON s.id = p.store_id")

	if filter.FromDate != nil {
		stmt = stmt.Where("p.purchase_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		stmt = stmt.Where("p.purchase_date <= ?", *filter.ToDate)
	}
	if filter.StoreID != nil {
		stmt = stmt.Where("p.store_id = ?", *filter.StoreID)
	}
	if filter.ProductID != nil {
		stmt = stmt.Where("p.product_id = ?", *filter.ProductID)
	}
	if len(filter.ProductIDs) > 0 {
		stmt = stmt.Where("p.product_id IN ?", filter.ProductIDs)
	}
	if filter.CategoryID != nil {
		stmt = stmt.Where("pr.category_id = ?", *filter.CategoryID)
	}
	if filter.IsPromo != nil {
		stmt = stmt.Where("p.is_promo = ?", *filter.IsPromo)
	}

	var rows []domain.FilteredRow
	err := stmt.
		Order("p.purchase_date asc, p.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) DateBounds(ctx context.Context, db *gorm.DB) (domain.DateBounds, error) {
	var row struct {
		MinDate *time.Time
		MaxDate *time.Time
	}
	err := db.WithContext(ctx).
		Raw(`SELECT MIN(purchase_date) AS min_date, MAX(purchase_date) AS max_date FROM purchases`).
		Scan(&row).Error
	if err != nil {
		return domain.DateBounds{}, err
	}
	return domain.DateBounds{MinDate: row.MinDate, MaxDate: row.MaxDate}, nil
}

func (r *repo) UsageCounts(ctx context.Context, db *gorm.DB) (domain.UsageCounts, error) {
	counts := domain.UsageCounts{
		Products:   map[int64]int64{},
		Stores:     map[int64]int64{},
		Categories: map[int64]int64{},
	}

	type pair struct {
		ID    int64
		Count int64
	}

	var products []pair
	err := db.WithContext(ctx).
		Raw(`SELECT product_id AS id, COUNT(id) AS count FROM purchases GROUP BY product_id`).
		Scan(&products).Error
	if err != nil {
		return counts, err
	}
	for _, p := range products {
		counts.Products[p.ID] = p.Count
	}

	var stores []pair
	err = db.WithContext(ctx).
		Raw(`SELECT store_id AS id, COUNT(id) AS count FROM purchases
		     WHERE store_id IS NOT NULL GROUP BY store_id`).
		Scan(&stores).Error
	if err != nil {
		return counts, err
	}
	for _, s := range stores {
		counts.Stores[s.ID] = s.Count
	}

	var categories []pair
	err = db.WithContext(ctx).
		Raw(`SELECT pr.category_id AS id, COUNT(p.id) AS count
		     FROM purchases p
		     JOIN products pr ON pr.id = p.product_id
		     WHERE pr.category_id IS NOT NULL
		     GROUP BY pr.category_id`).
		Scan(&categories).Error
	if err != nil {
		return counts, err
	}
	for _, c := range categories {
		counts.Categories[c.ID] = c.Count
	}

	return counts, nil
}
