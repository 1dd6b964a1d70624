package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	productdomain "github.com/spendindex/spendindex/internal/product/domain"
	"github.com/spendindex/spendindex/internal/purchase/domain"
	"github.com/spendindex/spendindex/internal/purchase/repository"
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

	require.NoError(t, db.AutoMigrate(&productdomain.Product{}, &domain.Purchase{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return db, svc
}

func seedProduct(t *testing.T, db *gorm.DB, id int64) {
	t.Helper()
	require.NoError(t, db.Create(&productdomain.Product{
		ID: id, Name: "Milk", UnitID: 1,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}).Error)
}

func TestCreate_DerivesRoundedUnitPrice(t *testing.T) {
	db, svc := setupService(t)
	seedProduct(t, db, 10)

	purchase, err := svc.Create(context.Background(), domain.CreateRequest{
		ProductID:  10,
		Quantity:   3,
		TotalPrice: 10,
	})
	require.NoError(t, err)
	assert.InDelta(t, 3.33, purchase.UnitPrice, 1e-9)
	assert.False(t, purchase.IsPromo)
	assert.Nil(t, purchase.PromoType)
	assert.Nil(t, purchase.RegularUnitPrice)

	// Defaults to today when no date is supplied.
	now := time.Now().UTC()
	assert.Equal(t, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), purchase.PurchaseDate)
}

func TestCreate_Validation(t *testing.T) {
	db, svc := setupService(t)
	seedProduct(t, db, 10)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{ProductID: 10, Quantity: 0, TotalPrice: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.Create(ctx, domain.CreateRequest{ProductID: 10, Quantity: 1, TotalPrice: -5})
	assert.ErrorIs(t, err, domain.ErrInvalidTotalPrice)

	negative := -1.0
	_, err = svc.Create(ctx, domain.CreateRequest{ProductID: 10, Quantity: 1, TotalPrice: 5, RegularUnitPrice: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidRegularPrice)

	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	_, err = svc.Create(ctx, domain.CreateRequest{ProductID: 10, Quantity: 1, TotalPrice: 5, PurchaseDate: &tomorrow})
	assert.ErrorIs(t, err, domain.ErrDateInFuture)

	_, err = svc.Create(ctx, domain.CreateRequest{ProductID: 99, Quantity: 1, TotalPrice: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)
}

func TestCreate_PromoNormalization(t *testing.T) {
	db, svc := setupService(t)
	seedProduct(t, db, 10)
	ctx := context.Background()

	// A promo type forces the promo flag even when it was not set.
	promoType := "discount"
	withType, err := svc.Create(ctx, domain.CreateRequest{
		ProductID: 10, Quantity: 1, TotalPrice: 5,
		PromoType: &promoType,
	})
	require.NoError(t, err)
	assert.True(t, withType.IsPromo)

	regular := 7.5
	withRegular, err := svc.Create(ctx, domain.CreateRequest{
		ProductID: 10, Quantity: 1, TotalPrice: 5,
		RegularUnitPrice: &regular,
	})
	require.NoError(t, err)
	assert.True(t, withRegular.IsPromo)
	require.NotNil(t, withRegular.RegularUnitPrice)
	assert.InDelta(t, 7.5, *withRegular.RegularUnitPrice, 1e-9)
}

func TestUpdate_ClearsPromoFields(t *testing.T) {
	db, svc := setupService(t)
	seedProduct(t, db, 10)
	ctx := context.Background()

	promoType := "discount"
	regular := 7.5
	created, err := svc.Create(ctx, domain.CreateRequest{
		ProductID: 10, Quantity: 1, TotalPrice: 5,
		PromoType: &promoType, RegularUnitPrice: &regular,
	})
	require.NoError(t, err)
	require.True(t, created.IsPromo)

	noPromo := false
	updated, err := svc.Update(ctx, created.ID, domain.UpdateRequest{IsPromo: &noPromo})
	require.NoError(t, err)
	assert.False(t, updated.IsPromo)
	assert.Nil(t, updated.PromoType)
	assert.Nil(t, updated.RegularUnitPrice)
}

func TestUpdate_RecomputesUnitPrice(t *testing.T) {
	db, svc := setupService(t)
	seedProduct(t, db, 10)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{ProductID: 10, Quantity: 2, TotalPrice: 10})
	require.NoError(t, err)
	assert.InDelta(t, 5, created.UnitPrice, 1e-9)

	qty := 4.0
	updated, err := svc.Update(ctx, created.ID, domain.UpdateRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, updated.UnitPrice, 1e-9)
}

func TestList_RejectsInvertedDateRange(t *testing.T) {
	_, svc := setupService(t)

	from := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.List(context.Background(), domain.ListRequest{
		Filter: domain.Filter{FromDate: &from, ToDate: &to},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestDelete_RemovesPurchase(t *testing.T) {
	db, svc := setupService(t)
	seedProduct(t, db, 10)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.CreateRequest{ProductID: 10, Quantity: 1, TotalPrice: 5})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
