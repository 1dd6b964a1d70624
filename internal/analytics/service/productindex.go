package service

import (
	"time"

	"github.com/spendindex/spendindex/internal/analytics/domain"
)

// computeProductIndex derives an unweighted average-price index for a
// single product series, normalized to 100 at its first observed period.
func computeProductIndex(rows []preparedRow) *domain.ProductIndexResult {
	result := &domain.ProductIndexResult{Points: []domain.ProductIndexPoint{}}
	if len(rows) == 0 {
		return result
	}

	byPeriod := make(map[time.Time]*periodAggregate)
	for _, row := range rows {
		agg, ok := byPeriod[row.period]
		if !ok {
			agg = &periodAggregate{}
			byPeriod[row.period] = agg
		}
		agg.qty += row.qty
		agg.spend += row.spend
		agg.n++
	}

	type periodPrice struct {
		period time.Time
		avg    float64
		n      int
	}
	prices := make([]periodPrice, 0, len(byPeriod))
	for _, period := range sortedPeriods(byPeriod) {
		agg := byPeriod[period]
		if !isPositive(agg.qty) || !isPositive(agg.spend) {
			continue
		}
		prices = append(prices, periodPrice{period: period, avg: agg.spend / agg.qty, n: agg.n})
	}
	if len(prices) == 0 {
		return result
	}

	basePrice := prices[0].avg
	if !isPositive(basePrice) {
		return result
	}

	for _, p := range prices {
		index := p.avg / basePrice * 100
		result.Points = append(result.Points, domain.ProductIndexPoint{
			Period:               domain.NewPeriod(p.period),
			AvgUnitPrice:         p.avg,
			Index100:             index,
			InflationPctFromBase: index - 100,
			N:                    p.n,
		})
	}

	last := prices[len(prices)-1]
	kpi := &domain.ProductIndexKPI{
		BasePeriod:     domain.NewPeriod(prices[0].period),
		LastPeriod:     domain.NewPeriod(last.period),
		BasePrice:      basePrice,
		LastPrice:      last.avg,
		IndexLast:      last.avg / basePrice * 100,
		InflationTotal: last.avg/basePrice*100 - 100,
	}
	// Change between the last two present periods, not calendar-adjacent
	// ones.
	if len(prices) >= 2 {
		prev := prices[len(prices)-2]
		if isPositive(prev.avg) {
			change := (last.avg/prev.avg - 1) * 100
			kpi.ChangeVsPrevPeriodPct = &change
		}
	}
	result.KPI = kpi
	return result
}
