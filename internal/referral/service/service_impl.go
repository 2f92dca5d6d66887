package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tonbox-app/tonbox/internal/clock"
	"github.com/tonbox-app/tonbox/internal/config"
	"github.com/tonbox-app/tonbox/internal/grant"
	obsmetrics "github.com/tonbox-app/tonbox/internal/observability/metrics"
	referraldomain "github.com/tonbox-app/tonbox/internal/referral/domain"
	userdomain "github.com/tonbox-app/tonbox/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Rewards    *config.RewardsConfigHolder
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	rewards    *config.RewardsConfigHolder
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) referraldomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("referral.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		rewards:    p.Rewards,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) ApplyReferralCode(ctx context.Context, userID, code string) (*referraldomain.ApplyResult, error) {
	userID = strings.TrimSpace(userID)
	code = strings.ToUpper(strings.TrimSpace(code))

	// Format failures are rejected before any state is read.
	if userID == "" || !codePattern.MatchString(code) {
		return nil, referraldomain.ErrCodeFormat
	}

	rewards := s.rewards.Get()
	var result *referraldomain.ApplyResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referee, err := lockUser(ctx, tx, `id = ?`, userID)
		if err != nil {
			return err
		}
		if referee == nil {
			return referraldomain.ErrUserNotFound
		}
		if referee.ReferredBy != nil {
			return referraldomain.ErrAlreadyReferred
		}

		referrer, err := lockUser(ctx, tx, `referral_code = ?`, code)
		if err != nil {
			return err
		}
		if referrer == nil {
			return referraldomain.ErrInvalidCode
		}
		if referrer.ID == referee.ID {
			return referraldomain.ErrSelfReferral
		}

		now := s.clock.Now()
		newInvites := referrer.TotalInvites + 1

		// Tiers match by exact threshold: each milestone is crossed one
		// invite at a time, and the grants ledger keeps it one-time even
		// under concurrent applications against the same referrer.
		tierIndex := -1
		var tier config.ReferralTier
		for i, t := range rewards.Tiers {
			if newInvites == t.Invites {
				tierIndex = i
				tier = t
				break
			}
		}

		var tierReward int64
		tierReached := 0
		if tierIndex >= 0 {
			granted, err := grant.Take(ctx, tx, s.genID, referrer.ID, grant.TierID(tierIndex), now)
			if err != nil {
				return err
			}
			if granted {
				tierReward = tier.Reward
				tierReached = tierIndex + 1
			}
		}

		record := referraldomain.ReferralRecord{
			ID:               s.genID.Generate(),
			ReferrerID:       referrer.ID,
			RefereeID:        referee.ID,
			ReferrerUsername: referrer.Username,
			RefereeUsername:  referee.Username,
			Points:           rewards.PointsPerReferral,
			TierReached:      tierReached,
			CreatedAt:        now,
		}
		if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
			return err
		}

		if err := tx.WithContext(ctx).Exec(
			`UPDATE users
			 SET referred_by = ?, points = points + ?, updated_at = ?
			 WHERE id = ?`,
			referrer.ID,
			rewards.PointsPerReferral,
			now,
			referee.ID,
		).Error; err != nil {
			return err
		}

		referrerTier := referrer.ReferralTier
		if tierReached > referrerTier {
			referrerTier = tierReached
		}
		if err := tx.WithContext(ctx).Exec(
			`UPDATE users
			 SET total_invites = total_invites + 1,
			     points = points + ?,
			     referral_tier = ?,
			     last_referral_at = ?,
			     updated_at = ?
			 WHERE id = ?`,
			rewards.PointsPerReferral+tierReward,
			referrerTier,
			now,
			now,
			referrer.ID,
		).Error; err != nil {
			return err
		}

		result = &referraldomain.ApplyResult{
			ReferrerID:      referrer.ID,
			RefereePoints:   rewards.PointsPerReferral,
			ReferrerPoints:  rewards.PointsPerReferral + tierReward,
			ReferrerInvites: newInvites,
			TierReached:     tierReached,
			TierTitle:       tier.Title,
		}
		if tierReached == 0 {
			result.TierTitle = ""
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.obsMetrics.RecordReferralApplied()
	if result.TierReached > 0 {
		s.obsMetrics.RecordTierUnlock(result.TierTitle)
	}
	s.log.Info("referral applied",
		zap.String("referee_id", userID),
		zap.String("referrer_id", result.ReferrerID),
		zap.Int("referrer_invites", result.ReferrerInvites),
		zap.Int("tier_reached", result.TierReached),
	)
	return result, nil
}

func (s *Service) History(ctx context.Context, userID string) ([]referraldomain.ReferralRecord, error) {
	var records []referraldomain.ReferralRecord
	err := s.db.WithContext(ctx).
		Where("referrer_id = ? OR referee_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) Recent(ctx context.Context, limit int) ([]referraldomain.ReferralRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var records []referraldomain.ReferralRecord
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// lockUser loads a user row under FOR UPDATE so concurrent ledger writes
// against the same account serialize instead of losing increments.
func lockUser(ctx context.Context, tx *gorm.DB, where string, arg any) (*userdomain.User, error) {
	var row userdomain.User
	err := tx.WithContext(ctx).Raw(
		`SELECT * FROM users WHERE `+where+` FOR UPDATE`,
		arg,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == "" {
		return nil, nil
	}
	return &row, nil
}
