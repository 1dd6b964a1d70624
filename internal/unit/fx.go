package unit

import (
	"github.com/spendindex/spendindex/internal/unit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("unit.service",
	fx.Provide(service.New),
)
