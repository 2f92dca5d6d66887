package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	achievementdomain "github.com/tonbox-app/tonbox/internal/achievement/domain"
	"github.com/tonbox-app/tonbox/internal/clock"
	"github.com/tonbox-app/tonbox/internal/grant"
	obsmetrics "github.com/tonbox-app/tonbox/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) achievementdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("achievement.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Unlock(ctx context.Context, userID, achievementID string) error {
	achievementID = strings.TrimSpace(achievementID)
	if !achievementdomain.Known(achievementID) {
		return achievementdomain.ErrUnknownAchievement
	}

	now := s.clock.Now()
	unlocked := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		unlocked, err = s.UnlockTx(ctx, tx, userID, achievementID, now)
		return err
	})
	if err != nil {
		return err
	}
	if !unlocked {
		return achievementdomain.ErrAlreadyUnlocked
	}
	return nil
}

func (s *Service) UnlockTx(ctx context.Context, tx *gorm.DB, userID, achievementID string, now time.Time) (bool, error) {
	granted, err := grant.Take(ctx, tx, s.genID, userID, grant.AchievementID(achievementID), now)
	if err != nil {
		return false, err
	}
	if !granted {
		return false, nil
	}

	// The counter moves only when the grant row landed, so a double unlock
	// can never double-count.
	if err := tx.WithContext(ctx).Exec(
		`UPDATE users SET achievements = achievements + 1, updated_at = ? WHERE id = ?`,
		now,
		userID,
	).Error; err != nil {
		return false, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordAchievementUnlock(achievementID)
	}
	s.log.Info("achievement unlocked",
		zap.String("user_id", userID),
		zap.String("achievement", achievementID),
	)
	return true, nil
}

func (s *Service) Unlocked(ctx context.Context, userID string) ([]string, error) {
	var grantIDs []string
	err := s.db.WithContext(ctx).Model(&grant.Grant{}).
		Where("user_id = ? AND grant_id LIKE ?", userID, "achievement:%").
		Order("created_at ASC").
		Pluck("grant_id", &grantIDs).Error
	if err != nil {
		return nil, err
	}

	unlocked := make([]string, 0, len(grantIDs))
	for _, id := range grantIDs {
		unlocked = append(unlocked, strings.TrimPrefix(id, "achievement:"))
	}
	return unlocked, nil
}
