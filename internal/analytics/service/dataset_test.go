package service

import (
	"math"
	"testing"
	"time"

	"github.com/spendindex/spendindex/internal/analytics/domain"
	purchasedomain "github.com/spendindex/spendindex/internal/purchase/domain"
	"github.com/stretchr/testify/assert"
)

func TestPeriodStart(t *testing.T) {
	// Wednesday 2025-06-18.
	wednesday := time.Date(2025, time.June, 18, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		groupBy domain.GroupBy
		in      time.Time
		want    time.Time
	}{
		{"day strips time", domain.GroupByDay, wednesday, time.Date(2025, time.June, 18, 0, 0, 0, 0, time.UTC)},
		{"week is monday", domain.GroupByWeek, wednesday, time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC)},
		{"week of a monday", domain.GroupByWeek, time.Date(2025, time.June, 16, 8, 0, 0, 0, time.UTC), time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC)},
		{"week of a sunday", domain.GroupByWeek, time.Date(2025, time.June, 22, 8, 0, 0, 0, time.UTC), time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC)},
		{"week across year boundary", domain.GroupByWeek, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC)},
		{"month first day", domain.GroupByMonth, wednesday, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)},
		{"year january first", domain.GroupByYear, wednesday, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, periodStart(tt.groupBy, tt.in))
		})
	}
}

func TestPrepare_DropsInvalidRows(t *testing.T) {
	day := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	rows := []purchasedomain.FilteredRow{
		{ProductID: 1, PurchaseDate: day, Quantity: 2, UnitPrice: 10},
		{ProductID: 2, PurchaseDate: day, Quantity: 0, UnitPrice: 10},
		{ProductID: 3, PurchaseDate: day, Quantity: -1, UnitPrice: 10},
		{ProductID: 4, PurchaseDate: day, Quantity: 1, UnitPrice: 0},
		{ProductID: 5, PurchaseDate: day, Quantity: 1, UnitPrice: -4},
		{ProductID: 6, PurchaseDate: day, Quantity: math.NaN(), UnitPrice: 10},
		{ProductID: 7, PurchaseDate: day, Quantity: 1, UnitPrice: math.Inf(1)},
	}

	prepared := prepare(rows, domain.PromoModeInclude, domain.PriceModePaid, domain.GroupByDay)
	assert.Len(t, prepared, 1)
	assert.Equal(t, int64(1), prepared[0].productID)
	assert.InDelta(t, 20, prepared[0].spend, 1e-9)
}

func TestPrepare_PromoFilterIdempotent(t *testing.T) {
	day := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	// Repository pushdown already narrowed to promo rows; re-applying the
	// filter must not change the outcome.
	rows := []purchasedomain.FilteredRow{
		{ProductID: 1, PurchaseDate: day, Quantity: 1, UnitPrice: 10, IsPromo: true},
		{ProductID: 2, PurchaseDate: day, Quantity: 1, UnitPrice: 10, IsPromo: true},
	}

	prepared := prepare(rows, domain.PromoModeOnly, domain.PriceModePaid, domain.GroupByDay)
	assert.Len(t, prepared, 2)
}

func TestPrepare_RegularPriceMode(t *testing.T) {
	day := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	regular := 12.0
	rows := []purchasedomain.FilteredRow{
		{ProductID: 1, PurchaseDate: day, Quantity: 1, UnitPrice: 9, RegularUnitPrice: &regular},
		{ProductID: 2, PurchaseDate: day, Quantity: 1, UnitPrice: 9},
	}

	prepared := prepare(rows, domain.PromoModeInclude, domain.PriceModeRegular, domain.GroupByDay)
	assert.Len(t, prepared, 2)
	assert.InDelta(t, 12, prepared[0].unitPrice, 1e-9)
	assert.InDelta(t, 9, prepared[1].unitPrice, 1e-9)
}
