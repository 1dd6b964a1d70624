package server

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	analyticsservice "github.com/spendindex/spendindex/internal/analytics/service"
	categorydomain "github.com/spendindex/spendindex/internal/category/domain"
	categoryservice "github.com/spendindex/spendindex/internal/category/service"
	"github.com/spendindex/spendindex/internal/config"
	productdomain "github.com/spendindex/spendindex/internal/product/domain"
	productservice "github.com/spendindex/spendindex/internal/product/service"
	purchasedomain "github.com/spendindex/spendindex/internal/purchase/domain"
	purchaserepo "github.com/spendindex/spendindex/internal/purchase/repository"
	purchaseservice "github.com/spendindex/spendindex/internal/purchase/service"
	storedomain "github.com/spendindex/spendindex/internal/store/domain"
	storeservice "github.com/spendindex/spendindex/internal/store/service"
	unitdomain "github.com/spendindex/spendindex/internal/unit/domain"
	unitservice "github.com/spendindex/spendindex/internal/unit/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) (*gorm.DB, *Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	repo := purchaserepo.Provide()

	holder, err := config.NewAnalyticsConfigHolder()
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin:          engine,
		Cfg:          config.Config{Environment: "test"},
		AnalyticsCfg: holder,
		AnalyticsSvc: analyticsservice.New(analyticsservice.Params{DB: db, Log: log, Purchases: repo}),
		PurchaseSvc:  purchaseservice.New(purchaseservice.Params{DB: db, Log: log, GenID: node, Repo: repo}),
		ProductSvc:   productservice.New(productservice.Params{DB: db, Log: log, GenID: node}),
		StoreSvc:     storeservice.New(storeservice.Params{DB: db, Log: log, GenID: node}),
		CategorySvc:  categoryservice.New(categoryservice.Params{DB: db, Log: log, GenID: node}),
		UnitSvc:      unitservice.New(unitservice.Params{DB: db, Log: log, GenID: node}),
	})
	return db, srv, engine
}
