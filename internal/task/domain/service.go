package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrAlreadyCompleted = errors.New("task already completed")
	ErrAlreadyClaimed   = errors.New("already claimed early adopter reward")
)

// ThresholdNotMetError carries how many invites are still needed, so the
// surface can show a progress message.
type ThresholdNotMetError struct {
	Remaining int
	Verb      string
}

func (e *ThresholdNotMetError) Error() string {
	return fmt.Sprintf("invite %d more friends to %s", e.Remaining, e.Verb)
}

type Service interface {
	// CheckIn grants the daily bonus once per calendar day (server UTC) and
	// maintains the streak: consecutive days increment it, any gap resets
	// it to 1.
	CheckIn(ctx context.Context, userID string) (*CheckInResult, error)

	// CompleteInviteTask grants the one-time bonus once totalInvites >= 20.
	CompleteInviteTask(ctx context.Context, userID string) (*InviteTaskResult, error)

	// CompleteEarlyAdopter grants early-adopter status once totalInvites >= 7.
	CompleteEarlyAdopter(ctx context.Context, userID string) (*EarlyAdopterResult, error)

	// CompleteWalletAnalysis grants the one-time wallet activity reward.
	CompleteWalletAnalysis(ctx context.Context, userID string, stats WalletStats) (*WalletAnalysisResult, error)
}
