package settlement

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/marketplace"
)

// SaleAmounts carries the monetary breakdown of a confirmed sale
type SaleAmounts struct {
	Gross        decimal.Decimal
	Fees         decimal.Decimal
	ShippingCost decimal.Decimal
}

// Settler atomically marks a listing sold and records its settlement.
// The implementation runs both writes in one transaction: a conditional
// ACTIVE to SOLD status flip plus a settlement insert guarded by the
// listing_id unique constraint. When another worker already settled the
// listing, SettleListing returns shared.ErrAlreadyExists (or
// shared.ErrConcurrencyConflict when the listing left ACTIVE without a
// settlement); either way nothing was written and the sale is recorded
// exactly once.
type Settler interface {
	SettleListing(ctx context.Context, l *listing.Listing, channel marketplace.ChannelCode, amounts SaleAmounts, soldAt time.Time) (*Settlement, error)
}
