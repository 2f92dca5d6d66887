package booster

import (
	"github.com/tonbox-app/tonbox/internal/booster/service"
	"go.uber.org/fx"
)

var Module = fx.Module("booster.service",
	fx.Provide(service.NewService),
)
