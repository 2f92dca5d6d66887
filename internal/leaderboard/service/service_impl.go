package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/tonbox-app/tonbox/internal/config"
	leaderboarddomain "github.com/tonbox-app/tonbox/internal/leaderboard/domain"
	userdomain "github.com/tonbox-app/tonbox/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	cacheKeyFormat  = "leaderboard:top:%d"
	rollupBatchSize = 500
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   config.Config
	Redis *redis.Client `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewService(p Params) leaderboarddomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("leaderboard.service"),
		redis:    p.Redis,
		cacheTTL: time.Duration(p.Cfg.Leaderboard.CacheTTLSeconds) * time.Second,
	}
}

func (s *Service) Top(ctx context.Context, limit int) ([]leaderboarddomain.Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	key := fmt.Sprintf(cacheKeyFormat, limit)
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, key).Bytes()
		if err == nil {
			var entries []leaderboarddomain.Entry
			if json.Unmarshal(cached, &entries) == nil {
				return entries, nil
			}
		} else if err != redis.Nil {
			s.log.Warn("leaderboard cache read failed", zap.Error(err))
		}
	}

	var accounts []userdomain.User
	err := s.db.WithContext(ctx).
		Order("points DESC").
		Limit(limit).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	entries := make([]leaderboarddomain.Entry, 0, len(accounts))
	for i, account := range accounts {
		entries = append(entries, leaderboarddomain.EntryFromUser(i+1, account))
	}

	if s.redis != nil {
		payload, err := json.Marshal(entries)
		if err == nil {
			if err := s.redis.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				s.log.Warn("leaderboard cache write failed", zap.Error(err))
			}
		}
	}
	return entries, nil
}

func (s *Service) Rollup(ctx context.Context) error {
	rank := 0
	var lastPoints int64
	var lastID string

	for {
		q := s.db.WithContext(ctx).
			Order("points DESC, id ASC").
			Limit(rollupBatchSize)
		if lastID != "" {
			q = q.Where("points < ? OR (points = ? AND id > ?)", lastPoints, lastPoints, lastID)
		}

		var batch []userdomain.User
		if err := q.Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}

		for _, account := range batch {
			rank++
			if account.GlobalRank == rank {
				continue
			}
			if err := s.db.WithContext(ctx).
				Model(&userdomain.User{}).
				Where("id = ?", account.ID).
				Update("global_rank", rank).Error; err != nil {
				return err
			}
		}

		last := batch[len(batch)-1]
		lastPoints = last.Points
		lastID = last.ID
	}

	s.log.Debug("leaderboard rollup complete", zap.Int("ranked", rank))
	return nil
}
