package nft

import (
	"github.com/tonbox-app/tonbox/internal/nft/service"
	"go.uber.org/fx"
)

var Module = fx.Module("nft.service",
	fx.Provide(service.NewService),
)
