package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tonbox-app/tonbox/internal/config"
)

const (
	keyCheckIn = "ratelimit:checkin:%s"
	keyClaim   = "ratelimit:claim:%s"
)

// ActionLimiter throttles the write-heavy user actions per user ID.
// When redis is not configured the limiter is a pass-through.
type ActionLimiter struct {
	enabled bool

	bucket *TokenBucket

	checkInRate  float64
	checkInBurst int
	claimRate    float64
	claimBurst   int
}

type LimiterParams struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Redis  *redis.Client `optional:"true"`
}

func NewActionLimiter(p LimiterParams) *ActionLimiter {
	limitCfg := p.Config.RateLimit
	if !limitCfg.Enabled || p.Redis == nil {
		p.Log.Info("rate limiting disabled")
		return &ActionLimiter{}
	}
	return &ActionLimiter{
		enabled:      true,
		bucket:       NewTokenBucket(p.Redis),
		checkInRate:  limitCfg.CheckInRate,
		checkInBurst: limitCfg.CheckInBurst,
		claimRate:    limitCfg.ClaimRate,
		claimBurst:   limitCfg.ClaimBurst,
	}
}

func (l *ActionLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *ActionLimiter) AllowCheckIn(ctx context.Context, userID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyCheckIn, strings.TrimSpace(userID)), l.checkInRate, l.checkInBurst)
}

func (l *ActionLimiter) AllowClaim(ctx context.Context, userID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyClaim, strings.TrimSpace(userID)), l.claimRate, l.claimBurst)
}
