package settlement

import (
	"context"
)

// PayoutReserver validates and records a payout request as one atomic
// reservation. The implementation serializes requests per seller, so two
// concurrent requests can never both pass the balance check against the
// same funds; the loser sees shared.ErrInsufficientBalance (or
// shared.ErrBelowMinimumPayout for a threshold failure) and nothing is
// written.
type PayoutReserver interface {
	ReservePayout(ctx context.Context, p *PayoutRequest) error
}
