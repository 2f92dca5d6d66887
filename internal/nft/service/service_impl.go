package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	achievementdomain "github.com/tonbox-app/tonbox/internal/achievement/domain"
	"github.com/tonbox-app/tonbox/internal/clock"
	"github.com/tonbox-app/tonbox/internal/grant"
	nftdomain "github.com/tonbox-app/tonbox/internal/nft/domain"
	obsmetrics "github.com/tonbox-app/tonbox/internal/observability/metrics"
	paymentdomain "github.com/tonbox-app/tonbox/internal/providers/payment/domain"
	userdomain "github.com/tonbox-app/tonbox/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Payments       paymentdomain.Processor
	AchievementSvc achievementdomain.Service
	ObsMetrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	payments       paymentdomain.Processor
	achievementSvc achievementdomain.Service
	obsMetrics     *obsmetrics.Metrics
}

func NewService(p Params) nftdomain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("nft.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		payments:       p.Payments,
		achievementSvc: p.AchievementSvc,
		obsMetrics:     p.ObsMetrics,
	}
}

func (s *Service) Claim(ctx context.Context, userID, collectionID, paymentRef string) (*nftdomain.ClaimResult, error) {
	collectionID = strings.TrimSpace(collectionID)

	// Eligibility pre-checks run against current state before any payment is
	// taken; the locked transaction below re-checks supply and the claim
	// flag, so a stale read here can only cause a rejection, never a double
	// claim.
	collection, account, err := s.precheck(ctx, userID, collectionID)
	if err != nil {
		return nil, err
	}

	paid := false
	if collection.PriceNano > 0 {
		if err := s.payments.Charge(ctx, paymentdomain.Request{
			UserID:     userID,
			Reference:  strings.TrimSpace(paymentRef),
			AmountNano: collection.PriceNano,
		}); err != nil {
			s.obsMetrics.RecordPaymentFailure()
			return nil, err
		}
		paid = true
	}

	var result *nftdomain.ClaimResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockCollection(ctx, tx, collectionID)
		if err != nil {
			return err
		}
		if locked == nil {
			return nftdomain.ErrCollectionNotFound
		}
		if locked.Remaining <= 0 {
			return nftdomain.ErrSoldOut
		}

		now := s.clock.Now()
		granted, err := grant.Take(ctx, tx, s.genID, userID, grant.NFTID(collectionID), now)
		if err != nil {
			return err
		}
		if !granted {
			return nftdomain.ErrAlreadyClaimed
		}

		if err := tx.WithContext(ctx).Exec(
			`UPDATE nft_collections SET remaining = remaining - 1, updated_at = ? WHERE id = ?`,
			now,
			collectionID,
		).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Exec(
			`UPDATE nft_stats SET total_claimed = total_claimed + 1 WHERE id = ?`,
			nftdomain.StatsRowID,
		).Error; err != nil {
			return err
		}

		if _, err := s.achievementSvc.UnlockTx(ctx, tx, userID, achievementdomain.NFTCollector, now); err != nil {
			return err
		}

		result = &nftdomain.ClaimResult{
			CollectionID: collectionID,
			Remaining:    locked.Remaining - 1,
			Paid:         paid,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.obsMetrics.RecordNFTClaim(collectionID)
	s.log.Info("nft claimed",
		zap.String("user_id", account.ID),
		zap.String("collection_id", collectionID),
		zap.Int("remaining", result.Remaining),
	)
	return result, nil
}

func (s *Service) precheck(ctx context.Context, userID, collectionID string) (*nftdomain.Collection, *userdomain.User, error) {
	var collection nftdomain.Collection
	err := s.db.WithContext(ctx).First(&collection, "id = ?", collectionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nftdomain.ErrCollectionNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if !collection.Available {
		return nil, nil, nftdomain.ErrNotAvailable
	}

	var account userdomain.User
	err = s.db.WithContext(ctx).First(&account, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nftdomain.ErrUserNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if collection.RequiresEarlyAdopter && !account.IsEarlyAdopter {
		return nil, nil, nftdomain.ErrNotEligible
	}
	if collection.Remaining <= 0 {
		return nil, nil, nftdomain.ErrSoldOut
	}

	claimed, err := grant.Taken(ctx, s.db, userID, grant.NFTID(collectionID))
	if err != nil {
		return nil, nil, err
	}
	if claimed {
		return nil, nil, nftdomain.ErrAlreadyClaimed
	}

	return &collection, &account, nil
}

func (s *Service) Collections(ctx context.Context) ([]nftdomain.Collection, error) {
	var collections []nftdomain.Collection
	err := s.db.WithContext(ctx).Order("created_at ASC").Find(&collections).Error
	if err != nil {
		return nil, err
	}
	return collections, nil
}

func (s *Service) Stats(ctx context.Context) (*nftdomain.Stats, error) {
	var stats nftdomain.Stats
	err := s.db.WithContext(ctx).First(&stats, "id = ?", nftdomain.StatsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &nftdomain.Stats{ID: nftdomain.StatsRowID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Service) UpdateCollection(ctx context.Context, id string, req nftdomain.UpdateCollectionRequest) (*nftdomain.Collection, error) {
	var collection *nftdomain.Collection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockCollection(ctx, tx, id)
		if err != nil {
			return err
		}
		if locked == nil {
			return nftdomain.ErrCollectionNotFound
		}

		updates := map[string]any{"updated_at": s.clock.Now()}
		if req.Available != nil {
			updates["available"] = *req.Available
			locked.Available = *req.Available
		}
		if req.Remaining != nil && *req.Remaining >= 0 {
			updates["remaining"] = *req.Remaining
			locked.Remaining = *req.Remaining
		}
		if err := tx.WithContext(ctx).Model(&nftdomain.Collection{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		collection = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return collection, nil
}

func lockCollection(ctx context.Context, tx *gorm.DB, id string) (*nftdomain.Collection, error) {
	var row nftdomain.Collection
	err := tx.WithContext(ctx).Raw(
		`SELECT * FROM nft_collections WHERE id = ? FOR UPDATE`,
		id,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == "" {
		return nil, nil
	}
	return &row, nil
}
