package payment

import (
	"context"

	"github.com/tonbox-app/tonbox/internal/config"
	paymentdomain "github.com/tonbox-app/tonbox/internal/providers/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NoopProcessor confirms every charge. Development and tests only.
type NoopProcessor struct{}

func (NoopProcessor) Charge(ctx context.Context, req paymentdomain.Request) error {
	_ = ctx
	_ = req
	return nil
}

func newProcessor(cfg config.Config, log *zap.Logger) paymentdomain.Processor {
	if cfg.Payment.Provider == "toncenter" {
		return NewToncenterProcessor(cfg.Payment, log)
	}
	return NoopProcessor{}
}

var Module = fx.Module("payment.provider",
	fx.Provide(newProcessor),
)
