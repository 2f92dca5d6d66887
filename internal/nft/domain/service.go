package domain

import (
	"context"
	"errors"
)

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrNotAvailable       = errors.New("this collection is not available yet")
	ErrNotEligible        = errors.New("you must be an early adopter to claim this NFT")
	ErrSoldOut            = errors.New("this collection is sold out")
	ErrAlreadyClaimed     = errors.New("you have already claimed this artifact")
	ErrUserNotFound       = errors.New("user not found")
)

type UpdateCollectionRequest struct {
	Available *bool `json:"available"`
	Remaining *int  `json:"remaining"`
}

type Service interface {
	// Claim hands one unit of the collection to userID. Paid collections
	// require a confirmed payment (identified by paymentRef) before the
	// supply transaction begins; a failed payment leaves no ledger trace.
	Claim(ctx context.Context, userID, collectionID, paymentRef string) (*ClaimResult, error)

	Collections(ctx context.Context) ([]Collection, error)
	Stats(ctx context.Context) (*Stats, error)

	// Admin surface.
	UpdateCollection(ctx context.Context, id string, req UpdateCollectionRequest) (*Collection, error)
}
