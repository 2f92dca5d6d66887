package main

import (
	"go.uber.org/fx"

	"github.com/tonbox-app/tonbox/internal/cache"
	"github.com/tonbox-app/tonbox/internal/clock"
	"github.com/tonbox-app/tonbox/internal/config"
	"github.com/tonbox-app/tonbox/internal/leaderboard"
	"github.com/tonbox-app/tonbox/internal/logger"
	"github.com/tonbox-app/tonbox/internal/observability"
	"github.com/tonbox-app/tonbox/internal/scheduler"
	"github.com/tonbox-app/tonbox/pkg/db"
)

// Worker runs the periodic jobs without serving HTTP.
func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		db.Module,
		clock.Module,
		cache.Module,
		leaderboard.Module,

		scheduler.Module,
	)
	app.Run()
}
