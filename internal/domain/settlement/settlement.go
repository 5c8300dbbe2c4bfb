package settlement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/shared"
)

// SettlementStatus represents the collectibility of a settlement
type SettlementStatus string

const (
	// SettlementStatusPending means the sale is recorded but the proceeds
	// are not yet considered collectible
	SettlementStatusPending SettlementStatus = "PENDING"
	// SettlementStatusCompleted means the marketplace payment was confirmed
	// and the proceeds count towards the seller's available balance
	SettlementStatusCompleted SettlementStatus = "COMPLETED"
)

// IsValid checks if the status is a valid SettlementStatus
func (s SettlementStatus) IsValid() bool {
	return s == SettlementStatusPending || s == SettlementStatusCompleted
}

// String returns the string representation of SettlementStatus
func (s SettlementStatus) String() string {
	return string(s)
}

// Settlement is the profit record created when a listing is confirmed
// sold. A listing can only ever produce one settlement; the persistence
// layer enforces this with a unique constraint on ListingID.
type Settlement struct {
	shared.SellerAggregateRoot
	ListingID    uuid.UUID
	GrossAmount  decimal.Decimal
	Fees         decimal.Decimal
	ShippingCost decimal.Decimal
	Channel      marketplace.ChannelCode
	Status       SettlementStatus
	CompletedAt  *time.Time
}

// NewSettlement creates a pending settlement for a sold listing.
// GrossAmount is the listing price at the time of sale.
func NewSettlement(sellerID, listingID uuid.UUID, grossAmount, fees, shippingCost decimal.Decimal, channel marketplace.ChannelCode) (*Settlement, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	if listingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LISTING", "Listing ID cannot be empty")
	}
	if grossAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Gross amount must be positive")
	}
	if fees.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FEES", "Fees cannot be negative")
	}
	if shippingCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SHIPPING", "Shipping cost cannot be negative")
	}
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Unknown marketplace channel")
	}

	s := &Settlement{
		SellerAggregateRoot: shared.NewSellerAggregateRoot(sellerID),
		ListingID:           listingID,
		GrossAmount:         grossAmount,
		Fees:                fees,
		ShippingCost:        shippingCost,
		Channel:             channel,
		Status:              SettlementStatusPending,
	}

	s.AddDomainEvent(NewSettlementCreatedEvent(s))

	return s, nil
}

// NetAmount returns gross minus fees and shipping
func (s *Settlement) NetAmount() decimal.Decimal {
	return s.GrossAmount.Sub(s.Fees).Sub(s.ShippingCost)
}

// Complete promotes the settlement to COMPLETED, making its net amount
// count towards the seller's available balance
func (s *Settlement) Complete(now time.Time) error {
	if s.Status != SettlementStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete settlement in %s status", s.Status))
	}

	s.Status = SettlementStatusCompleted
	s.CompletedAt = &now
	s.UpdatedAt = now

	s.AddDomainEvent(NewSettlementCompletedEvent(s))

	return nil
}

// IsCompleted returns true if the settlement is completed
func (s *Settlement) IsCompleted() bool {
	return s.Status == SettlementStatusCompleted
}
