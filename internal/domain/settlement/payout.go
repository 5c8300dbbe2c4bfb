package settlement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/shared"
)

// PayoutStatus represents the lifecycle of a payout request
type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "PENDING"
	PayoutStatusCompleted PayoutStatus = "COMPLETED"
	PayoutStatusRejected  PayoutStatus = "REJECTED"
)

// IsValid checks if the status is a valid PayoutStatus
func (s PayoutStatus) IsValid() bool {
	switch s {
	case PayoutStatusPending, PayoutStatusCompleted, PayoutStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of PayoutStatus
func (s PayoutStatus) String() string {
	return string(s)
}

// PayoutRequest is a seller's request to withdraw available proceeds.
// It is created only after balance validation, transitions once to
// COMPLETED or REJECTED, and is never re-opened. Pending and completed
// requests both reserve their amount against the available balance;
// rejection releases the reservation implicitly because the balance is
// always recomputed from source records.
type PayoutRequest struct {
	shared.SellerAggregateRoot
	Amount       decimal.Decimal
	Status       PayoutStatus
	CompletedAt  *time.Time
	RejectedAt   *time.Time
	RejectReason string
}

// NewPayoutRequest creates a pending payout request
func NewPayoutRequest(sellerID uuid.UUID, amount decimal.Decimal) (*PayoutRequest, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payout amount must be positive")
	}

	p := &PayoutRequest{
		SellerAggregateRoot: shared.NewSellerAggregateRoot(sellerID),
		Amount:              amount,
		Status:              PayoutStatusPending,
	}

	p.AddDomainEvent(NewPayoutRequestedEvent(p))

	return p, nil
}

// Complete marks the payout as sent
func (p *PayoutRequest) Complete(now time.Time) error {
	if p.Status != PayoutStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete payout in %s status", p.Status))
	}

	p.Status = PayoutStatusCompleted
	p.CompletedAt = &now
	p.UpdatedAt = now

	p.AddDomainEvent(NewPayoutCompletedEvent(p))

	return nil
}

// Reject rejects the payout, releasing the reserved amount back into the
// seller's available balance on the next balance computation
func (p *PayoutRequest) Reject(reason string, now time.Time) error {
	if p.Status != PayoutStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject payout in %s status", p.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reject reason is required")
	}

	p.Status = PayoutStatusRejected
	p.RejectedAt = &now
	p.RejectReason = reason
	p.UpdatedAt = now

	p.AddDomainEvent(NewPayoutRejectedEvent(p))

	return nil
}

// IsPending returns true if the payout is pending
func (p *PayoutRequest) IsPending() bool {
	return p.Status == PayoutStatusPending
}

// ReservesBalance returns true if this request counts against the
// seller's available balance (pending or completed, not rejected)
func (p *PayoutRequest) ReservesBalance() bool {
	return p.Status == PayoutStatusPending || p.Status == PayoutStatusCompleted
}
