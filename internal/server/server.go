package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spendindex/spendindex/internal/analytics"
	analyticsdomain "github.com/spendindex/spendindex/internal/analytics/domain"
	"github.com/spendindex/spendindex/internal/category"
	categorydomain "github.com/spendindex/spendindex/internal/category/domain"
	"github.com/spendindex/spendindex/internal/config"
	"github.com/spendindex/spendindex/internal/observability"
	obsmiddleware "github.com/spendindex/spendindex/internal/observability/logger"
	obsmetrics "github.com/spendindex/spendindex/internal/observability/metrics"
	"github.com/spendindex/spendindex/internal/product"
	productdomain "github.com/spendindex/spendindex/internal/product/domain"
	"github.com/spendindex/spendindex/internal/purchase"
	purchasedomain "github.com/spendindex/spendindex/internal/purchase/domain"
	"github.com/spendindex/spendindex/internal/store"
	storedomain "github.com/spendindex/spendindex/internal/store/domain"
	"github.com/spendindex/spendindex/internal/unit"
	unitdomain "github.com/spendindex/spendindex/internal/unit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	observability.Module,
	fx.Provide(registerGin),
	unit.Module,
	category.Module,
	store.Module,
	product.Module,
	purchase.Module,
	analytics.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	analyticsCfg *config.AnalyticsConfigHolder
	metrics      *obsmetrics.HTTPMetrics

	analyticsSvc analyticsdomain.Service
	purchaseSvc  purchasedomain.Service
	productSvc   productdomain.Service
	storeSvc     storedomain.Service
	categorySvc  categorydomain.Service
	unitSvc      unitdomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	AnalyticsCfg *config.AnalyticsConfigHolder
	Metrics      *obsmetrics.HTTPMetrics `optional:"true"`

	AnalyticsSvc analyticsdomain.Service
	PurchaseSvc  purchasedomain.Service
	ProductSvc   productdomain.Service
	StoreSvc     storedomain.Service
	CategorySvc  categorydomain.Service
	UnitSvc      unitdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		analyticsCfg: p.AnalyticsCfg,
		metrics:      p.Metrics,
		analyticsSvc: p.AnalyticsSvc,
		purchaseSvc:  p.PurchaseSvc,
		productSvc:   p.ProductSvc,
		storeSvc:     p.StoreSvc,
		categorySvc:  p.CategorySvc,
		unitSvc:      p.UnitSvc,
	}
	svc.registerRoutes()
	return svc
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api/v1")

	analyticsGroup := api.Group("/analytics")
	analyticsGroup.GET("/basket-index", s.BasketIndex)
	analyticsGroup.GET("/product-index", s.ProductIndex)
	analyticsGroup.GET("/contributions", s.Contributions)
	analyticsGroup.GET("/store-comparison", s.StoreComparison)
	analyticsGroup.GET("/counts", s.UsageCounts)

	purchases := api.Group("/purchases")
	purchases.POST("", s.CreatePurchase)
	purchases.GET("", s.ListPurchases)
	purchases.GET("/:id", s.GetPurchase)
	purchases.PATCH("/:id", s.UpdatePurchase)
	purchases.DELETE("/:id", s.DeletePurchase)

	products := api.Group("/products")
	products.POST("", s.CreateProduct)
	products.GET("", s.ListProducts)
	products.GET("/:id", s.GetProduct)
	products.PATCH("/:id", s.UpdateProduct)
	products.DELETE("/:id", s.DeleteProduct)

	stores := api.Group("/stores")
	stores.POST("", s.CreateStore)
	stores.GET("", s.ListStores)
	stores.GET("/:id", s.GetStore)
	stores.PATCH("/:id", s.UpdateStore)
	stores.DELETE("/:id", s.DeleteStore)

	categories := api.Group("/categories")
	categories.POST("", s.CreateCategory)
	categories.GET("", s.ListCategories)
	categories.GET("/:id", s.GetCategory)
	categories.PATCH("/:id", s.UpdateCategory)
	categories.DELETE("/:id", s.DeleteCategory)

	units := api.Group("/units")
	units.POST("", s.CreateUnit)
	units.GET("", s.ListUnits)
	units.GET("/:id", s.GetUnit)
	units.PATCH("/:id", s.UpdateUnit)
	units.DELETE("/:id", s.DeleteUnit)
}
