package settlement

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/shared"
)

// PayoutRequestedEvent is raised when a payout request passes validation
type PayoutRequestedEvent struct {
	shared.BaseDomainEvent
	PayoutID uuid.UUID       `json:"payout_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewPayoutRequestedEvent creates a new PayoutRequestedEvent
func NewPayoutRequestedEvent(p *PayoutRequest) *PayoutRequestedEvent {
	return &PayoutRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayoutRequested, AggregateTypePayoutRequest, p.ID, p.SellerID),
		PayoutID:        p.ID,
		Amount:          p.Amount,
	}
}

// EventType returns the event type name
func (e *PayoutRequestedEvent) EventType() string {
	return EventTypePayoutRequested
}

// PayoutCompletedEvent is raised when payout funds are sent
type PayoutCompletedEvent struct {
	shared.BaseDomainEvent
	PayoutID uuid.UUID       `json:"payout_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewPayoutCompletedEvent creates a new PayoutCompletedEvent
func NewPayoutCompletedEvent(p *PayoutRequest) *PayoutCompletedEvent {
	return &PayoutCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayoutCompleted, AggregateTypePayoutRequest, p.ID, p.SellerID),
		PayoutID:        p.ID,
		Amount:          p.Amount,
	}
}

// EventType returns the event type name
func (e *PayoutCompletedEvent) EventType() string {
	return EventTypePayoutCompleted
}

// PayoutRejectedEvent is raised when a payout request is rejected
type PayoutRejectedEvent struct {
	shared.BaseDomainEvent
	PayoutID uuid.UUID       `json:"payout_id"`
	Amount   decimal.Decimal `json:"amount"`
	Reason   string          `json:"reason"`
}

// NewPayoutRejectedEvent creates a new PayoutRejectedEvent
func NewPayoutRejectedEvent(p *PayoutRequest) *PayoutRejectedEvent {
	return &PayoutRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayoutRejected, AggregateTypePayoutRequest, p.ID, p.SellerID),
		PayoutID:        p.ID,
		Amount:          p.Amount,
		Reason:          p.RejectReason,
	}
}

// EventType returns the event type name
func (e *PayoutRejectedEvent) EventType() string {
	return EventTypePayoutRejected
}
