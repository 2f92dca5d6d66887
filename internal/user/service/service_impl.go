package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tonbox-app/tonbox/internal/config"
	userdomain "github.com/tonbox-app/tonbox/internal/user/domain"
	"github.com/tonbox-app/tonbox/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const codeCollisionRetries = 5

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
	Cfg config.Config
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
	cfg config.Config
}

func NewService(p Params) userdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("user.service"),
		cfg: p.Cfg,
	}
}

func (s *Service) Create(ctx context.Context, req userdomain.CreateRequest) (*userdomain.User, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, userdomain.ErrInvalidInput
	}

	if wallet := strings.TrimSpace(req.WalletAddress); wallet != "" {
		var count int64
		if err := s.db.WithContext(ctx).Model(&userdomain.User{}).
			Where("wallet_address = ? AND id <> ?", wallet, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, userdomain.ErrWalletInUse
		}
	}

	for attempt := 0; attempt < codeCollisionRetries; attempt++ {
		code, err := GenerateReferralCode(codeLength)
		if err != nil {
			return nil, err
		}

		account := userdomain.User{
			ID:           id,
			Username:     strings.TrimSpace(req.Username),
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			PhotoURL:     strings.TrimSpace(req.PhotoURL),
			ReferralCode: code,
			ReferralLink: s.referralLink(code),
			Level:        1,
		}
		if wallet := strings.TrimSpace(req.WalletAddress); wallet != "" {
			account.WalletAddress = &wallet
		}

		err = s.db.WithContext(ctx).Create(&account).Error
		if err == nil {
			return &account, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}

		// Either the account already exists (idempotent create) or the
		// generated referral code collided with another account's.
		existing, getErr := s.Get(ctx, id)
		if getErr == nil {
			return existing, nil
		}
		if !errors.Is(getErr, userdomain.ErrNotFound) {
			return nil, getErr
		}
		s.log.Debug("referral code collision, regenerating", zap.String("user_id", id))
	}

	return nil, fmt.Errorf("could not allocate a unique referral code for user %s", id)
}

func (s *Service) Get(ctx context.Context, id string) (*userdomain.User, error) {
	var account userdomain.User
	err := s.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, userdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Service) GetByReferralCode(ctx context.Context, code string) (*userdomain.User, error) {
	var account userdomain.User
	err := s.db.WithContext(ctx).First(&account, "referral_code = ?", strings.ToUpper(strings.TrimSpace(code))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, userdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Service) GetByWalletAddress(ctx context.Context, wallet string) (*userdomain.User, error) {
	var account userdomain.User
	err := s.db.WithContext(ctx).First(&account, "wallet_address = ?", strings.TrimSpace(wallet)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, userdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Service) TopUsers(ctx context.Context, limit int) ([]userdomain.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var accounts []userdomain.User
	err := s.db.WithContext(ctx).
		Order("points DESC").
		Limit(limit).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *Service) List(ctx context.Context, req userdomain.ListRequest) (*userdomain.ListResponse, error) {
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	q := s.db.WithContext(ctx).Model(&userdomain.User{})
	if needle := strings.TrimSpace(req.Query); needle != "" {
		like := "%" + needle + "%"
		q = q.Where("id = ? OR username LIKE ? OR referral_code = ?", needle, like, strings.ToUpper(needle))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var accounts []userdomain.User
	if err := q.Order("created_at DESC").Offset(req.Offset).Limit(req.Limit).Find(&accounts).Error; err != nil {
		return nil, err
	}

	return &userdomain.ListResponse{Users: accounts, Total: total}, nil
}

// AdjustPoints is the administrative override; it is the only path that may
// decrease a balance, and it never drives it below zero.
func (s *Service) AdjustPoints(ctx context.Context, id string, delta int64) (*userdomain.User, error) {
	var account *userdomain.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row userdomain.User
		err := tx.Raw(`SELECT * FROM users WHERE id = ? FOR UPDATE`, id).Scan(&row).Error
		if err != nil {
			return err
		}
		if row.ID == "" {
			return userdomain.ErrNotFound
		}

		next := row.Points + delta
		if next < 0 {
			next = 0
		}
		if err := tx.Model(&userdomain.User{}).Where("id = ?", id).Update("points", next).Error; err != nil {
			return err
		}
		row.Points = next
		account = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("admin points adjustment",
		zap.String("user_id", id),
		zap.Int64("delta", delta),
		zap.Int64("points", account.Points),
	)
	return account, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&userdomain.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return userdomain.ErrNotFound
	}
	return nil
}

func (s *Service) referralLink(code string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", s.cfg.BotUsername, code)
}
