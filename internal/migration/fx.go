package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/tonbox-app/tonbox/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		if err := Run(conn); err != nil {
			return err
		}
		return seed.EnsureCollections(conn)
	}),
)
