package migration

import (
	"errors"

	"gorm.io/gorm"

	grantdomain "github.com/tonbox-app/tonbox/internal/grant"
	nftdomain "github.com/tonbox-app/tonbox/internal/nft/domain"
	referraldomain "github.com/tonbox-app/tonbox/internal/referral/domain"
	taskdomain "github.com/tonbox-app/tonbox/internal/task/domain"
	userdomain "github.com/tonbox-app/tonbox/internal/user/domain"
)

// Run creates or updates the schema on startup so the service is usable
// out of the box for local and self-hosted environments.
func Run(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	return db.AutoMigrate(
		&userdomain.User{},
		&referraldomain.ReferralRecord{},
		&grantdomain.Grant{},
		&taskdomain.CheckIn{},
		&nftdomain.Collection{},
		&nftdomain.Stats{},
	)
}
