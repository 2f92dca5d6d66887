package achievement

import (
	"github.com/tonbox-app/tonbox/internal/achievement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("achievement.service",
	fx.Provide(service.NewService),
)
