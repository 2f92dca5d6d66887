package service

import (
	"context"
	"errors"
	"strings"
	"time"

	boosterdomain "github.com/tonbox-app/tonbox/internal/booster/domain"
	"github.com/tonbox-app/tonbox/internal/clock"
	"github.com/tonbox-app/tonbox/internal/config"
	obsmetrics "github.com/tonbox-app/tonbox/internal/observability/metrics"
	paymentdomain "github.com/tonbox-app/tonbox/internal/providers/payment/domain"
	userdomain "github.com/tonbox-app/tonbox/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Rewards    *config.RewardsConfigHolder
	Payments   paymentdomain.Processor
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	rewards    *config.RewardsConfigHolder
	payments   paymentdomain.Processor
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) boosterdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("booster.service"),
		clock:      p.Clock,
		rewards:    p.Rewards,
		payments:   p.Payments,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Purchase(ctx context.Context, userID, paymentRef string) (*boosterdomain.PurchaseResult, error) {
	rewards := s.rewards.Get()
	now := s.clock.Now()

	account, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account.BoosterActive(now) {
		return nil, boosterdomain.ErrBoosterActive
	}

	if rewards.BoosterPriceNano > 0 {
		if err := s.payments.Charge(ctx, paymentdomain.Request{
			UserID:     userID,
			Reference:  strings.TrimSpace(paymentRef),
			AmountNano: rewards.BoosterPriceNano,
		}); err != nil {
			s.obsMetrics.RecordPaymentFailure()
			return nil, err
		}
	}

	endTime := now.Add(time.Duration(rewards.BoosterDays) * 24 * time.Hour)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row userdomain.User
		if err := tx.WithContext(ctx).Raw(
			`SELECT * FROM users WHERE id = ? FOR UPDATE`,
			userID,
		).Scan(&row).Error; err != nil {
			return err
		}
		if row.ID == "" {
			return boosterdomain.ErrUserNotFound
		}
		if row.BoosterActive(now) {
			return boosterdomain.ErrBoosterActive
		}

		return tx.WithContext(ctx).Exec(
			`UPDATE users SET booster_end_time = ?, updated_at = ? WHERE id = ?`,
			endTime,
			now,
			userID,
		).Error
	})
	if err != nil {
		return nil, err
	}

	s.obsMetrics.RecordBoosterPurchase()
	s.log.Info("booster purchased",
		zap.String("user_id", userID),
		zap.Time("end_time", endTime),
	)
	return &boosterdomain.PurchaseResult{EndTime: endTime}, nil
}

func (s *Service) Status(ctx context.Context, userID string) (*boosterdomain.Status, error) {
	account, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if !account.BoosterActive(now) {
		return &boosterdomain.Status{Active: false}, nil
	}
	return &boosterdomain.Status{Active: true, EndTime: account.BoosterEndTime}, nil
}

func (s *Service) get(ctx context.Context, userID string) (*userdomain.User, error) {
	var account userdomain.User
	err := s.db.WithContext(ctx).First(&account, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, boosterdomain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
