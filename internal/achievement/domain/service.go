package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrUnknownAchievement = errors.New("unknown achievement")
	ErrAlreadyUnlocked    = errors.New("achievement already unlocked")
)

type Service interface {
	// Unlock grants the achievement in its own transaction. Repeat unlocks
	// return ErrAlreadyUnlocked without touching the counter.
	Unlock(ctx context.Context, userID, achievementID string) error

	// UnlockTx grants the achievement inside an enclosing ledger
	// transaction. Returns false when it was already unlocked; that is not
	// an error for callers that unlock as a side effect.
	UnlockTx(ctx context.Context, tx *gorm.DB, userID, achievementID string, now time.Time) (bool, error)

	Unlocked(ctx context.Context, userID string) ([]string, error)
}
