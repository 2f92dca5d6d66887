package domain

import (
	"context"
	"errors"
)

var ErrPaymentFailed = errors.New("payment failed")

// Request identifies a transfer the claimant is expected to have sent to
// the owner wallet: Reference travels in the transfer comment.
type Request struct {
	UserID     string
	Reference  string
	AmountNano int64
}

// Processor is the synchronous send-and-await-confirmation contract. Charge
// returns nil only once the payment is confirmed; any failure aborts the
// caller before it touches the ledger.
type Processor interface {
	Charge(ctx context.Context, req Request) error
}
