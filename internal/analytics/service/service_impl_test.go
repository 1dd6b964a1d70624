package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/spendindex/spendindex/internal/analytics/domain"
	categorydomain "github.com/spendindex/spendindex/internal/category/domain"
	productdomain "github.com/spendindex/spendindex/internal/product/domain"
	purchasedomain "github.com/spendindex/spendindex/internal/purchase/domain"
	purchaserepo "github.com/spendindex/spendindex/internal/purchase/repository"
	storedomain "github.com/spendindex/spendindex/internal/store/domain"
	unitdomain "github.com/spendindex/spendindex/internal/unit/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*gorm.DB, domain.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&unitdomain.Unit{},
		&categorydomain.Category{},
		&storedomain.Store{},
		&productdomain.Product{},
		&purchasedomain.Purchase{},
	))

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		Purchases: purchaserepo.Provide(),
	})
	return db, svc
}

func seedUnit(t *testing.T, db *gorm.DB, id int64) {
	t.Helper()
	require.NoError(t, db.Create(&unitdomain.Unit{
		ID: id, MeasureType: "weight", Unit: "kg",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}).Error)
}

func seedCategory(t *testing.T, db *gorm.DB, id int64, name string) {
	t.Helper()
	require.NoError(t, db.Create(&categorydomain.Category{
		ID: id, Name: name,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}).Error)
}

func seedStore(t *testing.T, db *gorm.DB, id int64, name string) {
	t.Helper()
	require.NoError(t, db.Create(&storedomain.Store{
		ID: id, Name: name,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}).Error)
}

func seedProduct(t *testing.T, db *gorm.DB, id int64, name string, categoryID *int64) {
	t.Helper()
	require.NoError(t, db.Create(&productdomain.Product{
		ID: id, Name: name, CategoryID: categoryID, UnitID: 1,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}).Error)
}

type seedPurchaseOpts struct {
	storeID          *int64
	isPromo          bool
	promoType        *string
	regularUnitPrice *float64
}

var purchaseSeq int64

func seedPurchase(t *testing.T, db *gorm.DB, productID int64, date time.Time, qty, total float64, opts seedPurchaseOpts) {
	t.Helper()
	purchaseSeq++
	require.NoError(t, db.Create(&purchasedomain.Purchase{
		ID:               purchaseSeq,
		ProductID:        productID,
		StoreID:          opts.storeID,
		PurchaseDate:     date,
		Quantity:         qty,
		TotalPrice:       total,
		UnitPrice:        total / qty,
		IsPromo:          opts.isPromo,
		PromoType:        opts.promoType,
		RegularUnitPrice: opts.regularUnitPrice,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}).Error)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func defaultQuery() domain.Query {
	return domain.Query{
		GroupBy:   domain.GroupByMonth,
		PriceMode: domain.PriceModePaid,
		PromoMode: domain.PromoModeInclude,
	}
}

func TestProductIndex_MonthlyInflation(t *testing.T) {
	db, svc := setupService(t)
	seedUnit(t, db, 1)
	seedProduct(t, db, 10, "Milk", nil)
	seedPurchase(t, db, 10, date(2025, time.January, 5), 2, 100, seedPurchaseOpts{})
	seedPurchase(t, db, 10, date(2025, time.February, 10), 2, 120, seedPurchaseOpts{})
	seedPurchase(t, db, 10, date(2025, time.March, 20), 2, 150, seedPurchaseOpts{})

	resp, err := svc.ProductIndex(context.Background(), domain.ProductIndexRequest{
		ProductID: 10,
		GroupBy:   domain.GroupByMonth,
		PriceMode: domain.PriceModePaid,
		PromoMode: domain.PromoModeInclude,
	})
	require.NoError(t, err)
	require.Len(t, resp.Points, 3)

	assert.Equal(t, "2025-01-01", resp.Points[0].Period.String())
	assert.Equal(t, "2025-02-01", resp.Points[1].Period.String())
	assert.Equal(t, "2025-03-01", resp.Points[2].Period.String())

	assert.InDelta(t, 50, resp.Points[0].AvgUnitPrice, 1e-9)
	assert.InDelta(t, 60, resp.Points[1].AvgUnitPrice, 1e-9)
	assert.InDelta(t, 75, resp.Points[2].AvgUnitPrice, 1e-9)

	assert.InDelta(t, 100, resp.Points[0].Index100, 1e-9)
	assert.InDelta(t, 120, resp.Points[1].Index100, 1e-9)
	assert.InDelta(t, 150, resp.Points[2].Index100, 1e-9)

	require.NotNil(t, resp.KPI)
	assert.InDelta(t, 50, resp.KPI.InflationTotal, 1e-9)
	require.NotNil(t, resp.KPI.ChangeVsPrevPeriodPct)
	assert.InDelta(t, 25, *resp.KPI.ChangeVsPrevPeriodPct, 1e-9)
}

func TestContributions_SingleProductMatchesProductIndex(t *testing.T) {
	db, svc := setupService(t)
	seedUnit(t, db, 1)
	seedProduct(t, db, 10, "Milk", nil)
	seedPurchase(t, db, 10, date(2025, time.January, 5), 2, 100, seedPurchaseOpts{})
	seedPurchase(t, db, 10, date(2025, time.February, 10), 2, 120, seedPurchaseOpts{})
	seedPurchase(t, db, 10, date(2025, time.March, 20), 2, 150, seedPurchaseOpts{})

	resp, err := svc.Contributions(context.Background(), domain.ContributionsRequest{
		Query: defaultQuery(),
		By:    domain.ContributionByProduct,
		Top:   10,
	})
	require.NoError(t, err)
	require.Len(t, resp.Points, 1)

	point := resp.Points[0]
	require.NotNil(t, point.Ratio)
	assert.InDelta(t, 1.5, *point.Ratio, 1e-9)
	assert.InDelta(t, 1.0, point.ShareW, 1e-9)
	assert.InDelta(t, 50.0, point.Contribution, 1e-9)

	require.NotNil(t, resp.KPI.BasePeriod)
	require.NotNil(t, resp.KPI.TargetPeriod)
	assert.Equal(t, "2025-01-01", resp.KPI.BasePeriod.String())
	assert.Equal(t, "2025-03-01", resp.KPI.TargetPeriod.String())
	assert.InDelta(t, 100, resp.KPI.CoveredWeight, 1e-9)
}

func TestContributions_ShareWeightsSumToOne(t *testing.T) {
	db, svc := setupService(t)
	seedUnit(t, db, 1)
	catFood := int64(1)
	seedCategory(t, db, catFood, "Food")
	seedProduct(t, db, 10, "Milk", &catFood)
	seedProduct(t, db, 11, "Bread", &catFood)
	seedProduct(t, db, 12, "Soap", nil)

	for _, productID := range []int64{10, 11, 12} {
		seedPurchase(t, db, productID, date(2025, time.January, 5), 1, float64(10*productID), seedPurchaseOpts{})
		seedPurchase(t, db, productID, date(2025, time.March, 5), 1, float64(12*productID), seedPurchaseOpts{})
	}

	resp, err := svc.Contributions(context.Background(), domain.ContributionsRequest{
		Query: defaultQuery(),
		By:    domain.ContributionByProduct,
	})
	require.NoError(t, err)
	require.Len(t, resp.Points, 3)

	var sum float64
	for _, point := range resp.Points {
		sum += point.ShareW
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestContributions_ByCategoryUnknownSentinel(t *testing.T) {
	db, svc := setupService(t)
	seedUnit(t, db, 1)
	catFood := int64(1)
	seedCategory(t, db, catFood, "Food")
	seedProduct(t, db, 10, "Milk", &catFood)
	seedProduct(t, db, 11, "Bread", &catFood)
	seedProduct(t, db, 12, "Soap", nil)

	for _, productID := range []int64{10, 11, 12} {
		seedPurchase(t, db, productID, date(2025, time.January, 5), 1, 10, seedPurchaseOpts{})
		seedPurchase(t, db, productID, date(2025, time.March, 5), 1, 15, seedPurchaseOpts{})
	}

	resp, err := svc.Contributions(context.Background(), domain.ContributionsRequest{
		Query: defaultQuery(),
		By:    domain.ContributionByCategory,
	})
	require.NoError(t, err)
	require.Len(t, resp.Points, 2)

	byName := map[string]domain.ContributionPoint{}
	for _, point := range resp.Points {
		require.NotNil(t, point.Category)
		byName[*point.Category] = point
	}
	food, ok := byName["Food"]
	require.True(t, ok)
	assert.Equal(t, 2, food.Items)

	unknown, ok := byName["UNKNOWN"]
	require.True(t, ok)
	assert.Equal(t, 1, unknown.Items)

	var sum float64
	for _, point := range resp.Points {
		sum += point.ShareW
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestBasketIndex_CoverageAndOmittedPeriods(t *testing.T) {
	db, svc := setupService(t)
	seedUnit(t, db, 1)
	seedProduct(t, db, 10, "Milk", nil)
	seedProduct(t, db, 11, "Bread", nil)

	// January basket: milk 60, bread 40. February reprices milk only.
	// March has no basket product at all and must be absent, not zero.
	seedPurchase(t, db, 10, date(2025, time.January, 5), 2, 60, seedPurchaseOpts{})
	seedPurchase(t, db, 11, date(2025, time.January, 6), 4, 40, seedPurchaseOpts{})
	seedPurchase(t, db, 10, date(2025, time.February, 5), 2, 66, seedPurchaseOpts{})

	seedProduct(t, db, 12, "Soap", nil)
	seedPurchase(t, db, 12, date(2025, time.March, 5), 1, 10, seedPurchaseOpts{})

	resp, err := svc.BasketIndex(context.Background(), domain.BasketIndexRequest{Query: defaultQuery()})
	require.NoError(t, err)
	require.Len(t, resp.Points, 2)

	basePoint := resp.Points[0]
	assert.Equal(t, "2025-01-01", basePoint.Period.String())
	assert.InDelta(t, 100, basePoint.Index, 1e-9)
	assert.InDelta(t, 1.0, basePoint.Coverage, 1e-9)
	assert.Equal(t, 2, basePoint.Items)

	febPoint := resp.Points[1]
	assert.Equal(t, "2025-02-01", febPoint.Period.String())
	assert.InDelta(t, 110, febPoint.Index, 1e-9)
	assert.InDelta(t, 0.6, febPoint.Coverage, 1e-9)
	assert.Equal(t, 1, febPoint.Items)

	assert.Equal(t, 2, resp.KPI.ItemsInBase)
	assert.InDelta(t, 100, resp.KPI.TotalBaseWeight, 1e-9)
	assert.InDelta(t, 10, resp.KPI.InflationTotal, 1e-9)

	for i := 1; i < len(resp.Points); i++ {
		assert.True(t, resp.Points[i-1].Period.Before(resp.Points[i].Period.Time))
		assert.GreaterOrEqual(t, resp.Points[i].Coverage, 0.0)
		assert.LessOrEqual(t, resp.Points[i].Coverage, 1.0)
	}
}

func TestBasketIndex_EmptyData(t *testing.T) {
	_, svc := setupService(t)

	resp, err := svc.BasketIndex(context.Background(), domain.BasketIndexRequest{Query: defaultQuery()})
	require.NoError(t, err)
	assert.Empty(t, resp.Points)
	assert.Zero(t, resp.KPI.Periods)
	assert.Nil(t, resp.KPI.BasePeriod)
}

func TestProductIndex_EmptyData(t *testing.T) {
	db, svc := setupService(t)
	seedUnit(t, db, 1)
	seedProduct(t, db, 10, "Milk", nil)

	resp, err := svc.ProductIndex(context.Background(), domain.ProductIndexRequest{
		ProductID: 10,
		GroupBy:   domain.GroupByMonth,
		PriceMode: domain.PriceModePaid,
		PromoMode: domain.PromoModeInclude,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Points)
	assert.Nil(t, resp.KPI)
}

func TestPromoModes(t *testing.T) {
	db, svc := setupService(t)
	seedUnit(t, db, 1)
	seedProduct(t, db, 10, "Milk", nil)

	seedPurchase(t, db, 10, date(2025, time.January, 5), 1, 50, seedPurchaseOpts{})
	seedPurchase(t, db, 10, date(2025, time.February, 5), 1, 40, seedPurchaseOpts{isPromo: true})
	seedPurchase(t, db, 10, date(2025, time.March, 5), 1, 55, seedPurchaseOpts{})

	exclude, err := svc.ProductIndex(context.Background(), domain.ProductIndexRequest{
		ProductID: 10,
		GroupBy:   domain.GroupByMonth,
		PriceMode: domain.PriceModePaid,
		PromoMode: domain.PromoModeExclude,
	})
	require.NoError(t, err)
	require.Len(t, exclude.Points, 2)
	assert.Equal(t, "2025-01-01", exclude.Points[0].Period.String())
	assert.Equal(t, "2025-03-01", exclude.Points[1].Period.String())

	only, err := svc.ProductIndex(context.Background(), domain.ProductIndexRequest{
		ProductID: 10,
		GroupBy:   domain.GroupByMonth,
		PriceMode: domain.PriceModePaid,
		PromoMode: domain.PromoModeOnly,
	})
	require.NoError(t, err)
	require.Len(t, only.Points, 1)
	assert.Equal(t, "2025-02-01", only.Points[0].Period.String())
	assert.InDelta(t, 40, only.Points[0].AvgUnitPrice, 1e-9)
}

func TestPriceModeRegularFallsBackToPaid(t *testing.T) {
	db, svc := setupService(t)
	seedUnit(t, db, 1)
	seedProduct(t, db, 10, "Milk", nil)

	regular := 60.0
	seedPurchase(t, db, 10, date(2025, time.January, 5), 1, 45, seedPurchaseOpts{isPromo: true, regularUnitPrice: &regular})
	seedPurchase(t, db, 10, date(2025, time.February, 5), 1, 50, seedPurchaseOpts{})

	resp, err := svc.ProductIndex(context.Background(), domain.ProductIndexRequest{
		ProductID: 10,
		GroupBy:   domain.GroupByMonth,
		PriceMode: domain.PriceModeRegular,
		PromoMode: domain.PromoModeInclude,
	})
	require.NoError(t, err)
	require.Len(t, resp.Points, 2)
	assert.InDelta(t, 60, resp.Points[0].AvgUnitPrice, 1e-9)
	// No regular price recorded, falls back to the paid price.
	assert.InDelta(t, 50, resp.Points[1].AvgUnitPrice, 1e-9)
}

func TestStoreComparison_RanksCheapestFirst(t *testing.T) {
	db, svc := setupService(t)
	seedUnit(t, db, 1)
	seedProduct(t, db, 10, "Milk", nil)
	seedStore(t, db, 1, "Corner Shop")
	seedStore(t, db, 2, "Hypermarket")

	corner, hyper := int64(1), int64(2)
	seedPurchase(t, db, 10, date(2025, time.January, 5), 1, 55, seedPurchaseOpts{storeID: &corner})
	seedPurchase(t, db, 10, date(2025, time.January, 12), 1, 65, seedPurchaseOpts{storeID: &corner})
	seedPurchase(t, db, 10, date(2025, time.February, 5), 2, 100, seedPurchaseOpts{storeID: &hyper})

	resp, err := svc.StoreComparison(context.Background(), domain.StoreComparisonRequest{
		ProductID: 10,
		PriceMode: domain.PriceModePaid,
		PromoMode: domain.PromoModeInclude,
	})
	require.NoError(t, err)
	require.Len(t, resp.Points, 2)

	best := resp.Points[0]
	require.NotNil(t, best.StoreID)
	assert.Equal(t, hyper, *best.StoreID)
	assert.InDelta(t, 50, best.AvgUnitPrice, 1e-9)
	assert.Equal(t, 1, best.Purchases)

	second := resp.Points[1]
	require.NotNil(t, second.StoreID)
	assert.Equal(t, corner, *second.StoreID)
	assert.InDelta(t, 60, second.AvgUnitPrice, 1e-9)
	assert.InDelta(t, 55, second.MinUnitPrice, 1e-9)
	assert.InDelta(t, 65, second.MaxUnitPrice, 1e-9)
	assert.Equal(t, 2, second.Purchases)
	assert.Equal(t, "2025-01-12", second.LastDate.String())

	assert.Equal(t, 2, resp.KPI.Stores)
	require.NotNil(t, resp.KPI.BestStoreID)
	assert.Equal(t, hyper, *resp.KPI.BestStoreID)
	require.NotNil(t, resp.KPI.BestAvgUnitPrice)
	assert.InDelta(t, 50, *resp.KPI.BestAvgUnitPrice, 1e-9)
}

func TestStoreComparison_SkipsPurchasesWithoutStore(t *testing.T) {
	db, svc := setupService(t)
	seedUnit(t, db, 1)
	seedProduct(t, db, 10, "Milk", nil)
	seedStore(t, db, 1, "Corner Shop")

	corner := int64(1)
	seedPurchase(t, db, 10, date(2025, time.January, 5), 1, 60, seedPurchaseOpts{storeID: &corner})
	// Cheaper, but not attributable to any store.
	seedPurchase(t, db, 10, date(2025, time.January, 12), 1, 40, seedPurchaseOpts{})

	resp, err := svc.StoreComparison(context.Background(), domain.StoreComparisonRequest{
		ProductID: 10,
		PriceMode: domain.PriceModePaid,
		PromoMode: domain.PromoModeInclude,
	})
	require.NoError(t, err)
	require.Len(t, resp.Points, 1)
	require.NotNil(t, resp.Points[0].StoreID)
	assert.Equal(t, corner, *resp.Points[0].StoreID)
	assert.InDelta(t, 60, resp.Points[0].AvgUnitPrice, 1e-9)

	assert.Equal(t, 1, resp.KPI.Stores)
	require.NotNil(t, resp.KPI.BestStoreID)
	assert.Equal(t, corner, *resp.KPI.BestStoreID)

	// Only store-less purchases leave nothing to compare.
	onlyStoreless, err := svc.StoreComparison(context.Background(), domain.StoreComparisonRequest{
		ProductID: 10,
		FromDate:  timePtr(date(2025, time.January, 10)),
		PriceMode: domain.PriceModePaid,
		PromoMode: domain.PromoModeInclude,
	})
	require.NoError(t, err)
	assert.Empty(t, onlyStoreless.Points)
	assert.Zero(t, onlyStoreless.KPI.Stores)
	assert.Nil(t, onlyStoreless.KPI.BestStoreID)
	assert.Nil(t, onlyStoreless.KPI.BestAvgUnitPrice)
}

func TestContributions_DisjointPeriodsStillReportPeriods(t *testing.T) {
	db, svc := setupService(t)
	seedUnit(t, db, 1)
	seedProduct(t, db, 10, "Milk", nil)
	seedProduct(t, db, 11, "Bread", nil)

	// No product appears in both periods, so nothing joins.
	seedPurchase(t, db, 10, date(2025, time.January, 5), 1, 50, seedPurchaseOpts{})
	seedPurchase(t, db, 11, date(2025, time.February, 5), 1, 30, seedPurchaseOpts{})

	resp, err := svc.Contributions(context.Background(), domain.ContributionsRequest{
		Query: defaultQuery(),
		By:    domain.ContributionByProduct,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Points)

	require.NotNil(t, resp.KPI.BasePeriod)
	require.NotNil(t, resp.KPI.TargetPeriod)
	assert.Equal(t, "2025-01-01", resp.KPI.BasePeriod.String())
	assert.Equal(t, "2025-02-01", resp.KPI.TargetPeriod.String())
	assert.Zero(t, resp.KPI.CoveredWeight)
}

func TestValidationErrors(t *testing.T) {
	_, svc := setupService(t)
	ctx := context.Background()

	_, err := svc.BasketIndex(ctx, domain.BasketIndexRequest{Query: domain.Query{
		GroupBy:   "quarter",
		PriceMode: domain.PriceModePaid,
		PromoMode: domain.PromoModeInclude,
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidGroupBy)

	_, err = svc.BasketIndex(ctx, domain.BasketIndexRequest{Query: domain.Query{
		GroupBy:   domain.GroupByMonth,
		PriceMode: "discounted",
		PromoMode: domain.PromoModeInclude,
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidPriceMode)

	_, err = svc.Contributions(ctx, domain.ContributionsRequest{
		Query: defaultQuery(),
		By:    "store",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidContributionBy)

	_, err = svc.ProductIndex(ctx, domain.ProductIndexRequest{
		ProductID: 10,
		GroupBy:   domain.GroupByMonth,
		PriceMode: domain.PriceModePaid,
		PromoMode: "none",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPromoMode)
}

func TestBasketIndex_Idempotent(t *testing.T) {
	db, svc := setupService(t)
	seedUnit(t, db, 1)
	seedProduct(t, db, 10, "Milk", nil)
	seedProduct(t, db, 11, "Bread", nil)
	seedPurchase(t, db, 10, date(2025, time.January, 5), 2, 60, seedPurchaseOpts{})
	seedPurchase(t, db, 11, date(2025, time.January, 6), 4, 40, seedPurchaseOpts{})
	seedPurchase(t, db, 10, date(2025, time.February, 5), 2, 66, seedPurchaseOpts{})
	seedPurchase(t, db, 11, date(2025, time.February, 6), 4, 42, seedPurchaseOpts{})

	req := domain.BasketIndexRequest{Query: defaultQuery()}
	first, err := svc.BasketIndex(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.BasketIndex(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBasketIndex_ExplicitBasePeriod(t *testing.T) {
	db, svc := setupService(t)
	seedUnit(t, db, 1)
	seedProduct(t, db, 10, "Milk", nil)
	seedPurchase(t, db, 10, date(2025, time.January, 5), 1, 50, seedPurchaseOpts{})
	seedPurchase(t, db, 10, date(2025, time.February, 5), 1, 60, seedPurchaseOpts{})

	base := date(2025, time.February, 15)
	resp, err := svc.BasketIndex(context.Background(), domain.BasketIndexRequest{
		Query:      defaultQuery(),
		BasePeriod: &base,
	})
	require.NoError(t, err)
	require.Len(t, resp.Points, 2)

	// February anchors the index, January sits below 100.
	assert.InDelta(t, 100*50.0/60.0, resp.Points[0].Index, 1e-9)
	assert.InDelta(t, 100, resp.Points[1].Index, 1e-9)
	require.NotNil(t, resp.KPI.BasePeriod)
	assert.Equal(t, "2025-02-01", resp.KPI.BasePeriod.String())
}
