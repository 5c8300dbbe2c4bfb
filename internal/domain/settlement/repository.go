package settlement

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/shared"
)

// SettlementFilter defines filtering options for settlement queries
type SettlementFilter struct {
	shared.Filter
	Status *SettlementStatus
}

// PayoutFilter defines filtering options for payout queries
type PayoutFilter struct {
	shared.Filter
	Status *PayoutStatus
}

// SettlementRepository defines the interface for settlement persistence.
// The listing_id unique constraint is the load-bearing guard: a second
// Save for the same listing must fail with shared.ErrAlreadyExists no
// matter how many workers race.
type SettlementRepository interface {
	// FindByID finds a settlement by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Settlement, error)

	// FindByListingID finds the settlement for a listing, if any
	FindByListingID(ctx context.Context, listingID uuid.UUID) (*Settlement, error)

	// ExistsForListing checks whether a listing already has a settlement
	ExistsForListing(ctx context.Context, listingID uuid.UUID) (bool, error)

	// FindBySeller finds settlements for a seller with filtering
	FindBySeller(ctx context.Context, sellerID uuid.UUID, filter SettlementFilter) ([]Settlement, int64, error)

	// SumCompletedNetBySeller sums net amounts of completed settlements
	SumCompletedNetBySeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error)

	// SumPendingNetBySeller sums net amounts of pending settlements
	SumPendingNetBySeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error)

	// Save creates or updates a settlement. A duplicate listing ID returns
	// shared.ErrAlreadyExists.
	Save(ctx context.Context, s *Settlement) error
}

// PayoutRepository defines the interface for payout request persistence
type PayoutRepository interface {
	// FindByID finds a payout request by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PayoutRequest, error)

	// FindBySeller finds payout requests for a seller with filtering
	FindBySeller(ctx context.Context, sellerID uuid.UUID, filter PayoutFilter) ([]PayoutRequest, int64, error)

	// SumReservedBySeller sums amounts of pending and completed payout
	// requests (the reservations against the available balance)
	SumReservedBySeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error)

	// SumCompletedBySeller sums amounts of completed payout requests
	SumCompletedBySeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error)

	// Save creates or updates a payout request
	Save(ctx context.Context, p *PayoutRequest) error
}
