package observability

import (
	"github.com/spendindex/spendindex/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(metrics.NewHTTPMetrics),
)
