package cache

import (
	"strings"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tonbox-app/tonbox/internal/config"
)

// NewRedisClient builds the shared redis client. Returns nil when no
// address is configured; consumers fall back to database-only paths.
func NewRedisClient(cfg config.Config, log *zap.Logger) *redis.Client {
	addr := strings.TrimSpace(cfg.Redis.Addr)
	if addr == "" {
		return nil
	}
	log.Info("redis enabled", zap.String("addr", addr), zap.Int("db", cfg.Redis.DB))
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
