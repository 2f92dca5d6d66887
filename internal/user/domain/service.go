package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrWalletInUse  = errors.New("this wallet is already associated with another account")
	ErrInvalidInput = errors.New("invalid user input")
)

type CreateRequest struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	PhotoURL      string `json:"photo_url"`
	WalletAddress string `json:"wallet_address"`
}

type ListRequest struct {
	Offset int
	Limit  int
	Query  string
}

type ListResponse struct {
	Users []User `json:"users"`
	Total int64  `json:"total"`
}

type Service interface {
	// Create registers an account for an external id. It is idempotent:
	// concurrent or repeated creation attempts for the same id return the
	// existing account unchanged.
	Create(ctx context.Context, req CreateRequest) (*User, error)
	Get(ctx context.Context, id string) (*User, error)
	GetByReferralCode(ctx context.Context, code string) (*User, error)
	GetByWalletAddress(ctx context.Context, wallet string) (*User, error)
	TopUsers(ctx context.Context, limit int) ([]User, error)

	// Admin surface.
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	AdjustPoints(ctx context.Context, id string, delta int64) (*User, error)
	Delete(ctx context.Context, id string) error
}
