package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/tonbox-app/tonbox/internal/clock"
	"github.com/tonbox-app/tonbox/internal/logger"
	"github.com/tonbox-app/tonbox/internal/migration"
	"github.com/tonbox-app/tonbox/internal/observability"
	"github.com/tonbox-app/tonbox/internal/server"
	"github.com/tonbox-app/tonbox/pkg/db"
)

// API serves the HTTP surface only. Background rollups run in the worker.
func main() {
	app := fx.New(
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		server.Module,

		migration.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
