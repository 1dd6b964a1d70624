package service

import (
	"math"
	"sort"
	"time"

	"github.com/spendindex/spendindex/internal/analytics/domain"
	purchasedomain "github.com/spendindex/spendindex/internal/purchase/domain"
)

// preparedRow is one purchase after promo filtering, price-mode
// resolution and sanity checks. Everything downstream aggregates over
// these; raw rows never reach the calculators.
type preparedRow struct {
	productID  int64
	product    string
	categoryID *int64
	category   *string
	storeID    *int64
	store      *string
	date       time.Time
	period     time.Time
	qty        float64
	unitPrice  float64
	spend      float64
}

// prepare filters and normalizes fetched rows into the dataset every
// calculator consumes. Rows failing any step are dropped, never
// reported. The promo filter is applied here even when the repository
// already pre-filtered, so pushdown stays an optimization.
func prepare(rows []purchasedomain.FilteredRow, promoMode domain.PromoMode, priceMode domain.PriceMode, groupBy domain.GroupBy) []preparedRow {
	prepared := make([]preparedRow, 0, len(rows))
	for _, row := range rows {
		switch promoMode {
		case domain.PromoModeExclude:
			if row.IsPromo {
				continue
			}
		case domain.PromoModeOnly:
			if !row.IsPromo {
				continue
			}
		}

		if !isPositive(row.Quantity) {
			continue
		}

		unitPrice := row.UnitPrice
		if priceMode == domain.PriceModeRegular && row.RegularUnitPrice != nil {
			unitPrice = *row.RegularUnitPrice
		}
		if !isPositive(unitPrice) {
			continue
		}

		spend := unitPrice * row.Quantity
		if !isPositive(spend) {
			continue
		}

		prepared = append(prepared, preparedRow{
			productID:  row.ProductID,
			product:    row.Product,
			categoryID: row.CategoryID,
			category:   row.Category,
			storeID:    row.StoreID,
			store:      row.Store,
			date:       row.PurchaseDate,
			period:     periodStart(groupBy, row.PurchaseDate),
			qty:        row.Quantity,
			unitPrice:  unitPrice,
			spend:      spend,
		})
	}
	return prepared
}

// periodStart maps a date to the start of its aggregation bucket, in UTC
// with no time component.
func periodStart(groupBy domain.GroupBy, t time.Time) time.Time {
	t = t.UTC()
	switch groupBy {
	case domain.GroupByWeek:
		// Monday of the ISO week containing t.
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
	case domain.GroupByMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case domain.GroupByYear:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// periodAggregate is a per-bucket qty/spend accumulator.
type periodAggregate struct {
	qty   float64
	spend float64
	n     int
}

func sortedPeriods[V any](byPeriod map[time.Time]V) []time.Time {
	periods := make([]time.Time, 0, len(byPeriod))
	for period := range byPeriod {
		periods = append(periods, period)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	return periods
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
