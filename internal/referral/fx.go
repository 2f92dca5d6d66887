package referral

import (
	"github.com/tonbox-app/tonbox/internal/referral/service"
	"go.uber.org/fx"
)

var Module = fx.Module("referral.service",
	fx.Provide(service.NewService),
)
