package scheduler

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/tonbox-app/tonbox/internal/config"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(Run),
)

func ProvideConfig(cfg config.Config) Config {
	out := DefaultConfig()
	if cfg.Leaderboard.RollupIntervalSecs > 0 {
		out.RunInterval = time.Duration(cfg.Leaderboard.RollupIntervalSecs) * time.Second
	}
	return out
}

func Run(lc fx.Lifecycle, sched *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go sched.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
