package domain

import (
	"context"
	"errors"
)

var (
	ErrCodeFormat      = errors.New("referral code must be 8 characters A-Z or 0-9")
	ErrInvalidCode     = errors.New("invalid referral code")
	ErrAlreadyReferred = errors.New("user already has a referrer")
	ErrSelfReferral    = errors.New("cannot refer yourself")
	ErrUserNotFound    = errors.New("user not found")
)

type Service interface {
	// ApplyReferralCode links userID to the account owning code, exactly
	// once, and settles both sides' rewards in a single transaction.
	ApplyReferralCode(ctx context.Context, userID, code string) (*ApplyResult, error)

	// History returns the referral records where userID appears as referrer.
	History(ctx context.Context, userID string) ([]ReferralRecord, error)

	// Recent returns the newest entries of the global analytics log.
	Recent(ctx context.Context, limit int) ([]ReferralRecord, error)
}
