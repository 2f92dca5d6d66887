package seed

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	nftdomain "github.com/tonbox-app/tonbox/internal/nft/domain"
)

// EnsureCollections seeds the NFT catalog and its supply counter so the
// service is claimable out of the box. Existing rows are left untouched,
// admin edits survive restarts.
func EnsureCollections(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, c := range defaultCollections(now) {
			if err := ensureCollectionTx(ctx, tx, c); err != nil {
				return err
			}
		}
		return ensureStatsTx(ctx, tx)
	})
}

func defaultCollections(now time.Time) []nftdomain.Collection {
	return []nftdomain.Collection{
		{
			ID:                   nftdomain.CollectionEarlyAdopter,
			Name:                 "Early Adopter NFT",
			Description:          "Exclusive NFT for early adopters of Tonbox",
			PriceNano:            0,
			TotalSupply:          5000,
			Remaining:            5000,
			RequiresEarlyAdopter: true,
			Available:            true,
			CreatedAt:            now,
			UpdatedAt:            now,
		},
		{
			ID:          nftdomain.CollectionLimitedStar,
			Name:        "Limited Star NFT",
			Description: "Limited edition star NFT",
			PriceNano:   500_000_000,
			TotalSupply: 10000,
			Remaining:   10000,
			Available:   false,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

func ensureCollectionTx(ctx context.Context, tx *gorm.DB, c nftdomain.Collection) error {
	var existing nftdomain.Collection
	err := tx.WithContext(ctx).Where("id = ?", c.ID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.WithContext(ctx).Create(&c).Error
}

func ensureStatsTx(ctx context.Context, tx *gorm.DB) error {
	var existing nftdomain.Stats
	err := tx.WithContext(ctx).Where("id = ?", nftdomain.StatsRowID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.WithContext(ctx).Create(&nftdomain.Stats{ID: nftdomain.StatsRowID}).Error
}
