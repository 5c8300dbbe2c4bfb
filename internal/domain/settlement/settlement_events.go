package settlement

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeSettlement    = "Settlement"
	AggregateTypePayoutRequest = "PayoutRequest"
)

// Event type constants
const (
	EventTypeSettlementCreated   = "SettlementCreated"
	EventTypeSettlementCompleted = "SettlementCompleted"
	EventTypePayoutRequested     = "PayoutRequested"
	EventTypePayoutCompleted     = "PayoutCompleted"
	EventTypePayoutRejected      = "PayoutRejected"
)

// SettlementCreatedEvent is raised when a sale produces a settlement record
type SettlementCreatedEvent struct {
	shared.BaseDomainEvent
	SettlementID uuid.UUID               `json:"settlement_id"`
	ListingID    uuid.UUID               `json:"listing_id"`
	GrossAmount  decimal.Decimal         `json:"gross_amount"`
	Channel      marketplace.ChannelCode `json:"channel"`
}

// NewSettlementCreatedEvent creates a new SettlementCreatedEvent
func NewSettlementCreatedEvent(s *Settlement) *SettlementCreatedEvent {
	return &SettlementCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementCreated, AggregateTypeSettlement, s.ID, s.SellerID),
		SettlementID:    s.ID,
		ListingID:       s.ListingID,
		GrossAmount:     s.GrossAmount,
		Channel:         s.Channel,
	}
}

// EventType returns the event type name
func (e *SettlementCreatedEvent) EventType() string {
	return EventTypeSettlementCreated
}

// SettlementCompletedEvent is raised when a settlement's proceeds become collectible
type SettlementCompletedEvent struct {
	shared.BaseDomainEvent
	SettlementID uuid.UUID       `json:"settlement_id"`
	ListingID    uuid.UUID       `json:"listing_id"`
	NetAmount    decimal.Decimal `json:"net_amount"`
}

// NewSettlementCompletedEvent creates a new SettlementCompletedEvent
func NewSettlementCompletedEvent(s *Settlement) *SettlementCompletedEvent {
	return &SettlementCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementCompleted, AggregateTypeSettlement, s.ID, s.SellerID),
		SettlementID:    s.ID,
		ListingID:       s.ListingID,
		NetAmount:       s.NetAmount(),
	}
}

// EventType returns the event type name
func (e *SettlementCompletedEvent) EventType() string {
	return EventTypeSettlementCompleted
}
