package migration

import (
	categorydomain "github.com/spendindex/spendindex/internal/category/domain"
	"github.com/spendindex/spendindex/internal/config"
	productdomain "github.com/spendindex/spendindex/internal/product/domain"
	purchasedomain "github.com/spendindex/spendindex/internal/purchase/domain"
	storedomain "github.com/spendindex/spendindex/internal/store/domain"
	unitdomain "github.com/spendindex/spendindex/internal/unit/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if !cfg.RunMigrations {
			return nil
		}

		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// sqlite and mysql setups auto-migrate from the models instead.
		return conn.AutoMigrate(
			&unitdomain.Unit{},
			&categorydomain.Category{},
			&storedomain.Store{},
			&productdomain.Product{},
			&purchasedomain.Purchase{},
		)
	}),
)
