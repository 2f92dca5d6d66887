package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	achievementdomain "github.com/tonbox-app/tonbox/internal/achievement/domain"
	"github.com/tonbox-app/tonbox/internal/clock"
	"github.com/tonbox-app/tonbox/internal/config"
	"github.com/tonbox-app/tonbox/internal/grant"
	obsmetrics "github.com/tonbox-app/tonbox/internal/observability/metrics"
	taskdomain "github.com/tonbox-app/tonbox/internal/task/domain"
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
	Rewards        *config.RewardsConfigHolder
	AchievementSvc achievementdomain.Service
	ObsMetrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	rewards        *config.RewardsConfigHolder
	achievementSvc achievementdomain.Service
	obsMetrics     *obsmetrics.Metrics
}

func NewService(p Params) taskdomain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("task.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		rewards:        p.Rewards,
		achievementSvc: p.AchievementSvc,
		obsMetrics:     p.ObsMetrics,
	}
}

func (s *Service) CheckIn(ctx context.Context, userID string) (*taskdomain.CheckInResult, error) {
	rewards := s.rewards.Get()
	var result *taskdomain.CheckInResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if account == nil {
			return taskdomain.ErrUserNotFound
		}

		now := s.clock.Now()
		today := calendarDay(now)

		var prev taskdomain.CheckIn
		found := true
		if err := tx.WithContext(ctx).First(&prev, "user_id = ?", userID).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			found = false
		}

		streak := 1
		if found {
			lastDay := calendarDay(prev.LastCheckIn)
			switch {
			case lastDay.Equal(today):
				return taskdomain.ErrAlreadyCheckedIn
			case lastDay.AddDate(0, 0, 1).Equal(today):
				streak = prev.Streak + 1
			}
		}

		if err := tx.WithContext(ctx).Save(&taskdomain.CheckIn{
			UserID:      userID,
			LastCheckIn: now,
			Streak:      streak,
		}).Error; err != nil {
			return err
		}

		bonus := rewards.CheckInBonus
		if account.BoosterActive(now) {
			bonus *= 2
		}

		claimedDays, err := nextClaimedDays(account.ClaimedDays, now)
		if err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Exec(
			`UPDATE users SET points = points + ?, claimed_days = ?, updated_at = ? WHERE id = ?`,
			bonus,
			claimedDays,
			now,
			userID,
		).Error; err != nil {
			return err
		}

		result = &taskdomain.CheckInResult{Streak: streak, Points: bonus}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.obsMetrics.RecordCheckIn()
	return result, nil
}

func (s *Service) CompleteInviteTask(ctx context.Context, userID string) (*taskdomain.InviteTaskResult, error) {
	rewards := s.rewards.Get()
	var result *taskdomain.InviteTaskResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if account == nil {
			return taskdomain.ErrUserNotFound
		}

		if account.TotalInvites < rewards.InviteTaskTarget {
			return &taskdomain.ThresholdNotMetError{
				Remaining: rewards.InviteTaskTarget - account.TotalInvites,
				Verb:      "complete this task",
			}
		}

		now := s.clock.Now()
		granted, err := grant.Take(ctx, tx, s.genID, userID, grant.TaskID(taskdomain.TaskInvite), now)
		if err != nil {
			return err
		}
		if !granted {
			return taskdomain.ErrAlreadyCompleted
		}

		if err := tx.WithContext(ctx).Exec(
			`UPDATE users SET points = points + ?, updated_at = ? WHERE id = ?`,
			rewards.InviteTaskBonus,
			now,
			userID,
		).Error; err != nil {
			return err
		}

		if _, err := s.achievementSvc.UnlockTx(ctx, tx, userID, achievementdomain.SuperReferrer, now); err != nil {
			return err
		}

		result = &taskdomain.InviteTaskResult{Points: rewards.InviteTaskBonus}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.obsMetrics.RecordTaskCompletion(taskdomain.TaskInvite)
	s.log.Info("invite task completed", zap.String("user_id", userID))
	return result, nil
}

func (s *Service) CompleteEarlyAdopter(ctx context.Context, userID string) (*taskdomain.EarlyAdopterResult, error) {
	rewards := s.rewards.Get()
	var result *taskdomain.EarlyAdopterResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if account == nil {
			return taskdomain.ErrUserNotFound
		}
		if account.IsEarlyAdopter {
			return taskdomain.ErrAlreadyClaimed
		}
		if account.TotalInvites < rewards.EarlyAdopterMin {
			return &taskdomain.ThresholdNotMetError{
				Remaining: rewards.EarlyAdopterMin - account.TotalInvites,
				Verb:      "qualify",
			}
		}

		now := s.clock.Now()
		granted, err := grant.Take(ctx, tx, s.genID, userID, grant.TaskID(taskdomain.TaskEarlyAdopter), now)
		if err != nil {
			return err
		}
		if !granted {
			return taskdomain.ErrAlreadyClaimed
		}

		if err := tx.WithContext(ctx).Exec(
			`UPDATE users
			 SET points = points + ?, is_early_adopter = ?, early_adopter_claimed_at = ?, updated_at = ?
			 WHERE id = ?`,
			rewards.EarlyAdopterBonus,
			true,
			now,
			now,
			userID,
		).Error; err != nil {
			return err
		}

		if _, err := s.achievementSvc.UnlockTx(ctx, tx, userID, achievementdomain.EarlyAdopter, now); err != nil {
			return err
		}

		result = &taskdomain.EarlyAdopterResult{Points: rewards.EarlyAdopterBonus, ClaimedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.obsMetrics.RecordTaskCompletion(taskdomain.TaskEarlyAdopter)
	s.log.Info("early adopter claimed", zap.String("user_id", userID))
	return result, nil
}

func (s *Service) CompleteWalletAnalysis(ctx context.Context, userID string, stats taskdomain.WalletStats) (*taskdomain.WalletAnalysisResult, error) {
	score := taskdomain.ScoreWallet(stats)
	var result *taskdomain.WalletAnalysisResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if account == nil {
			return taskdomain.ErrUserNotFound
		}

		now := s.clock.Now()
		granted, err := grant.Take(ctx, tx, s.genID, userID, grant.TaskID(taskdomain.TaskWalletAnalysis), now)
		if err != nil {
			return err
		}
		if !granted {
			return taskdomain.ErrAlreadyCompleted
		}

		if err := tx.WithContext(ctx).Exec(
			`UPDATE users SET points = points + ?, wallet_analyzed_at = ?, updated_at = ? WHERE id = ?`,
			score.Total,
			now,
			now,
			userID,
		).Error; err != nil {
			return err
		}

		result = &score
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.obsMetrics.RecordTaskCompletion(taskdomain.TaskWalletAnalysis)
	return result, nil
}

func calendarDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// nextClaimedDays appends today's weekday to the weekly calendar, starting a
// fresh week once all seven slots were claimed.
func nextClaimedDays(raw []byte, now time.Time) ([]byte, error) {
	var days []int
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &days); err != nil {
			days = nil
		}
	}

	weekday := int(now.UTC().Weekday())
	if len(days) >= 7 {
		days = []int{weekday}
	} else {
		seen := false
		for _, d := range days {
			if d == weekday {
				seen = true
				break
			}
		}
		if !seen {
			days = append(days, weekday)
		}
	}
	return json.Marshal(days)
}

func lockUser(ctx context.Context, tx *gorm.DB, userID string) (*userdomain.User, error) {
	var row userdomain.User
	err := tx.WithContext(ctx).Raw(
		`SELECT * FROM users WHERE id = ? FOR UPDATE`,
		userID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == "" {
		return nil, nil
	}
	return &row, nil
}
