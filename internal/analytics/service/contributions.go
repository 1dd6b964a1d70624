package service

import (
	"sort"
	"time"

	"github.com/spendindex/spendindex/internal/analytics/domain"
)

// unknownCategory labels products without a category in category-level
// decompositions.
const unknownCategory = "UNKNOWN"

// computeContributions explains the index drift between the earliest and
// latest observed periods as ranked per-product (or per-category) point
// contributions. share_w sums to 1 over the full matched basket; a
// truncated top-N sums to less.
func computeContributions(rows []preparedRow, by domain.ContributionBy, top int) *domain.ContributionsResult {
	result := &domain.ContributionsResult{
		Points: []domain.ContributionPoint{},
		KPI:    domain.ContributionsKPI{By: by},
	}
	if len(rows) == 0 {
		return result
	}

	byPeriod := make(map[time.Time]map[int64]*periodAggregate)
	type productInfo struct {
		name     string
		category *string
	}
	products := make(map[int64]productInfo)
	for _, row := range rows {
		aggs, ok := byPeriod[row.period]
		if !ok {
			aggs = make(map[int64]*periodAggregate)
			byPeriod[row.period] = aggs
		}
		agg, ok := aggs[row.productID]
		if !ok {
			agg = &periodAggregate{}
			aggs[row.productID] = agg
		}
		agg.qty += row.qty
		agg.spend += row.spend
		products[row.productID] = productInfo{name: row.product, category: row.category}
	}

	periods := sortedPeriods(byPeriod)
	base := periods[0]
	target := periods[len(periods)-1]

	// The compared periods are known as soon as any row survived, even
	// when nothing matches between them.
	basePoint := domain.NewPeriod(base)
	targetPoint := domain.NewPeriod(target)
	result.KPI.BasePeriod = &basePoint
	result.KPI.TargetPeriod = &targetPoint

	basket := make(map[int64]basketItem)
	for productID, agg := range byPeriod[base] {
		if !isPositive(agg.qty) || !isPositive(agg.spend) {
			continue
		}
		basket[productID] = basketItem{
			basePrice:  agg.spend / agg.qty,
			baseWeight: agg.spend,
		}
	}
	if len(basket) == 0 {
		return result
	}

	type matched struct {
		productID int64
		ratio     float64
		weight    float64
	}
	var (
		joined []matched
		sumW   float64
	)
	for productID, agg := range byPeriod[target] {
		item, ok := basket[productID]
		if !ok {
			continue
		}
		if !isPositive(agg.qty) || !isPositive(agg.spend) {
			continue
		}
		price := agg.spend / agg.qty
		joined = append(joined, matched{
			productID: productID,
			ratio:     price / item.basePrice,
			weight:    item.baseWeight,
		})
		sumW += item.baseWeight
	}
	if len(joined) == 0 || !isPositive(sumW) {
		return result
	}

	result.KPI.CoveredWeight = sumW

	switch by {
	case domain.ContributionByCategory:
		type categoryAgg struct {
			shareW       float64
			contribution float64
			items        int
		}
		byCategory := make(map[string]*categoryAgg)
		for _, m := range joined {
			name := unknownCategory
			if info := products[m.productID]; info.category != nil {
				name = *info.category
			}
			agg, ok := byCategory[name]
			if !ok {
				agg = &categoryAgg{}
				byCategory[name] = agg
			}
			share := m.weight / sumW
			agg.shareW += share
			agg.contribution += share * (m.ratio - 1) * 100
			agg.items++
		}
		for name, agg := range byCategory {
			category := name
			result.Points = append(result.Points, domain.ContributionPoint{
				Category:     &category,
				ShareW:       agg.shareW,
				Contribution: agg.contribution,
				Items:        agg.items,
			})
		}
		sort.Slice(result.Points, func(i, j int) bool {
			if result.Points[i].Contribution != result.Points[j].Contribution {
				return result.Points[i].Contribution > result.Points[j].Contribution
			}
			return *result.Points[i].Category < *result.Points[j].Category
		})
	default:
		for _, m := range joined {
			info := products[m.productID]
			productID := m.productID
			name := info.name
			ratio := m.ratio
			share := m.weight / sumW
			result.Points = append(result.Points, domain.ContributionPoint{
				ProductID:    &productID,
				Product:      &name,
				Ratio:        &ratio,
				ShareW:       share,
				Contribution: share * (ratio - 1) * 100,
			})
		}
		sort.Slice(result.Points, func(i, j int) bool {
			if result.Points[i].Contribution != result.Points[j].Contribution {
				return result.Points[i].Contribution > result.Points[j].Contribution
			}
			return *result.Points[i].ProductID < *result.Points[j].ProductID
		})
	}

	if top > 0 && len(result.Points) > top {
		result.Points = result.Points[:top]
	}
	return result
}
