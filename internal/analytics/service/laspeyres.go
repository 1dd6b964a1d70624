package service

import (
	"time"

	"github.com/spendindex/spendindex/internal/analytics/domain"
)

// basketItem carries the fixed base-period weight of one product.
type basketItem struct {
	basePrice  float64
	baseWeight float64
}

// computeBasketIndex derives a Laspeyres index: base-period spend fixes
// each product's weight, later periods reprice the same basket. A period
// where no basket product was bought is omitted entirely; emitting it as
// zero would read as a price collapse.
func computeBasketIndex(rows []preparedRow, basePeriod *time.Time) *domain.BasketIndexResult {
	result := &domain.BasketIndexResult{Points: []domain.BasketIndexPoint{}}
	if len(rows) == 0 {
		return result
	}

	byPeriod := make(map[time.Time]map[int64]*periodAggregate)
	for _, row := range rows {
		products, ok := byPeriod[row.period]
		if !ok {
			products = make(map[int64]*periodAggregate)
			byPeriod[row.period] = products
		}
		agg, ok := products[row.productID]
		if !ok {
			agg = &periodAggregate{}
			products[row.productID] = agg
		}
		agg.qty += row.qty
		agg.spend += row.spend
	}

	periods := sortedPeriods(byPeriod)

	base := periods[0]
	if basePeriod != nil {
		base = *basePeriod
	}

	basket := make(map[int64]basketItem)
	var totalBaseWeight float64
	for productID, agg := range byPeriod[base] {
		if !isPositive(agg.qty) || !isPositive(agg.spend) {
			continue
		}
		basket[productID] = basketItem{
			basePrice:  agg.spend / agg.qty,
			baseWeight: agg.spend,
		}
		totalBaseWeight += agg.spend
	}
	if len(basket) == 0 {
		return result
	}

	for _, period := range periods {
		var (
			sumWeighted float64
			sumWeight   float64
			items       int
		)
		for productID, agg := range byPeriod[period] {
			item, ok := basket[productID]
			if !ok {
				continue
			}
			if !isPositive(agg.qty) || !isPositive(agg.spend) {
				continue
			}
			price := agg.spend / agg.qty
			ratio := price / item.basePrice
			sumWeighted += item.baseWeight * ratio
			sumWeight += item.baseWeight
			items++
		}
		if items == 0 {
			continue
		}
		result.Points = append(result.Points, domain.BasketIndexPoint{
			Period:   domain.NewPeriod(period),
			Index:    100 * sumWeighted / sumWeight,
			Coverage: sumWeight / totalBaseWeight,
			Items:    items,
		})
	}
	if len(result.Points) == 0 {
		return result
	}

	last := result.Points[len(result.Points)-1]
	basePoint := domain.NewPeriod(base)
	result.KPI = domain.BasketIndexKPI{
		BasePeriod:      &basePoint,
		LastPeriod:      &last.Period,
		Periods:         len(result.Points),
		ItemsInBase:     len(basket),
		TotalBaseWeight: totalBaseWeight,
		CoverageLast:    last.Coverage,
		IndexLast:       last.Index,
		InflationTotal:  last.Index - 100,
	}
	return result
}
