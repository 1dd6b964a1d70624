package purchase

import (
	"github.com/spendindex/spendindex/internal/purchase/repository"
	"github.com/spendindex/spendindex/internal/purchase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("purchase.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
