package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrBoosterActive = errors.New("booster already active")
)

type PurchaseResult struct {
	EndTime time.Time `json:"end_time"`
}

type Status struct {
	Active  bool       `json:"active"`
	EndTime *time.Time `json:"end_time,omitempty"`
}

type Service interface {
	// Purchase activates a temporary points multiplier after the payment
	// identified by paymentRef is confirmed. Rejected while one is active.
	Purchase(ctx context.Context, userID, paymentRef string) (*PurchaseResult, error)

	Status(ctx context.Context, userID string) (*Status, error)
}
