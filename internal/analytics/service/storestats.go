package service

import (
	"sort"
	"time"

	"github.com/spendindex/spendindex/internal/analytics/domain"
)

// computeStoreComparison ranks the stores a product was bought at by
// average unit price, cheapest first. Rows without a store carry no
// price signal for any store and are dropped before grouping.
func computeStoreComparison(rows []preparedRow) *domain.StoreComparisonResult {
	result := &domain.StoreComparisonResult{Points: []domain.StoreComparisonPoint{}}
	if len(rows) == 0 {
		return result
	}

	type storeAgg struct {
		storeID   *int64
		store     *string
		qty       float64
		spend     float64
		purchases int
		minPrice  float64
		maxPrice  float64
		lastDate  time.Time
	}
	byStore := make(map[int64]*storeAgg)
	for _, row := range rows {
		if row.storeID == nil {
			continue
		}
		agg, ok := byStore[*row.storeID]
		if !ok {
			agg = &storeAgg{
				storeID:  row.storeID,
				store:    row.store,
				minPrice: row.unitPrice,
				maxPrice: row.unitPrice,
				lastDate: row.date,
			}
			byStore[*row.storeID] = agg
		}
		agg.qty += row.qty
		agg.spend += row.spend
		agg.purchases++
		if row.unitPrice < agg.minPrice {
			agg.minPrice = row.unitPrice
		}
		if row.unitPrice > agg.maxPrice {
			agg.maxPrice = row.unitPrice
		}
		if row.date.After(agg.lastDate) {
			agg.lastDate = row.date
		}
	}

	for _, agg := range byStore {
		if !isPositive(agg.qty) || !isPositive(agg.spend) {
			continue
		}
		result.Points = append(result.Points, domain.StoreComparisonPoint{
			StoreID:      agg.storeID,
			Store:        agg.store,
			AvgUnitPrice: agg.spend / agg.qty,
			MinUnitPrice: agg.minPrice,
			MaxUnitPrice: agg.maxPrice,
			Qty:          agg.qty,
			Purchases:    agg.purchases,
			LastDate:     domain.NewPeriod(agg.lastDate),
		})
	}

	sort.Slice(result.Points, func(i, j int) bool {
		if result.Points[i].AvgUnitPrice != result.Points[j].AvgUnitPrice {
			return result.Points[i].AvgUnitPrice < result.Points[j].AvgUnitPrice
		}
		return storeLabel(result.Points[i]) < storeLabel(result.Points[j])
	})

	result.KPI.Stores = len(result.Points)
	if len(result.Points) > 0 {
		best := result.Points[0]
		result.KPI.BestStoreID = best.StoreID
		price := best.AvgUnitPrice
		result.KPI.BestAvgUnitPrice = &price
	}
	return result
}

func storeLabel(p domain.StoreComparisonPoint) string {
	if p.Store != nil {
		return *p.Store
	}
	return ""
}
