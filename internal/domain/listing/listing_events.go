package listing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeListing = "Listing"

// Event type constants
const (
	EventTypeListingCreated      = "ListingCreated"
	EventTypeListingPublished    = "ListingPublished"
	EventTypeListingPriceDropped = "ListingPriceDropped"
	EventTypeListingSold         = "ListingSold"
	EventTypeListingEnded        = "ListingEnded"
	EventTypeListingRemoved      = "ListingRemoved"
)

// ListingCreatedEvent is raised when a new listing is created
type ListingCreatedEvent struct {
	shared.BaseDomainEvent
	ListingID     uuid.UUID       `json:"listing_id"`
	Title         string          `json:"title"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	MinimumPrice  decimal.Decimal `json:"minimum_price"`
}

// NewListingCreatedEvent creates a new ListingCreatedEvent
func NewListingCreatedEvent(l *Listing) *ListingCreatedEvent {
	return &ListingCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingCreated, AggregateTypeListing, l.ID, l.SellerID),
		ListingID:       l.ID,
		Title:           l.Title,
		OriginalPrice:   l.OriginalPrice,
		MinimumPrice:    l.MinimumPrice,
	}
}

// EventType returns the event type name
func (e *ListingCreatedEvent) EventType() string {
	return EventTypeListingCreated
}

// ListingPublishedEvent is raised when a listing is published to a channel
type ListingPublishedEvent struct {
	shared.BaseDomainEvent
	ListingID  uuid.UUID               `json:"listing_id"`
	Channel    marketplace.ChannelCode `json:"channel"`
	ExternalID string                  `json:"external_id"`
}

// NewListingPublishedEvent creates a new ListingPublishedEvent
func NewListingPublishedEvent(l *Listing, record *PublicationRecord) *ListingPublishedEvent {
	return &ListingPublishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingPublished, AggregateTypeListing, l.ID, l.SellerID),
		ListingID:       l.ID,
		Channel:         record.Channel,
		ExternalID:      record.ExternalID,
	}
}

// EventType returns the event type name
func (e *ListingPublishedEvent) EventType() string {
	return EventTypeListingPublished
}

// ListingPriceDroppedEvent is raised when a listing's price changes.
// It drives the seller price-drop notification with the old and new price.
type ListingPriceDroppedEvent struct {
	shared.BaseDomainEvent
	ListingID uuid.UUID         `json:"listing_id"`
	Title     string            `json:"title"`
	OldPrice  decimal.Decimal   `json:"old_price"`
	NewPrice  decimal.Decimal   `json:"new_price"`
	Reason    PriceChangeReason `json:"reason"`
}

// NewListingPriceDroppedEvent creates a new ListingPriceDroppedEvent
func NewListingPriceDroppedEvent(l *Listing, oldPrice, newPrice decimal.Decimal, reason PriceChangeReason) *ListingPriceDroppedEvent {
	return &ListingPriceDroppedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingPriceDropped, AggregateTypeListing, l.ID, l.SellerID),
		ListingID:       l.ID,
		Title:           l.Title,
		OldPrice:        oldPrice,
		NewPrice:        newPrice,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *ListingPriceDroppedEvent) EventType() string {
	return EventTypeListingPriceDropped
}

// ListingSoldEvent is raised when a listing is confirmed sold on a channel
type ListingSoldEvent struct {
	shared.BaseDomainEvent
	ListingID uuid.UUID               `json:"listing_id"`
	Title     string                  `json:"title"`
	Channel   marketplace.ChannelCode `json:"channel"`
	SalePrice decimal.Decimal         `json:"sale_price"`
}

// NewListingSoldEvent creates a new ListingSoldEvent
func NewListingSoldEvent(l *Listing, channel marketplace.ChannelCode) *ListingSoldEvent {
	return &ListingSoldEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingSold, AggregateTypeListing, l.ID, l.SellerID),
		ListingID:       l.ID,
		Title:           l.Title,
		Channel:         channel,
		SalePrice:       l.Price,
	}
}

// EventType returns the event type name
func (e *ListingSoldEvent) EventType() string {
	return EventTypeListingSold
}

// ListingEndedEvent is raised when a listing is ended
type ListingEndedEvent struct {
	shared.BaseDomainEvent
	ListingID uuid.UUID `json:"listing_id"`
}

// NewListingEndedEvent creates a new ListingEndedEvent
func NewListingEndedEvent(l *Listing) *ListingEndedEvent {
	return &ListingEndedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingEnded, AggregateTypeListing, l.ID, l.SellerID),
		ListingID:       l.ID,
	}
}

// EventType returns the event type name
func (e *ListingEndedEvent) EventType() string {
	return EventTypeListingEnded
}

// ListingRemovedEvent is raised when a seller removes a listing
type ListingRemovedEvent struct {
	shared.BaseDomainEvent
	ListingID uuid.UUID `json:"listing_id"`
}

// NewListingRemovedEvent creates a new ListingRemovedEvent
func NewListingRemovedEvent(l *Listing) *ListingRemovedEvent {
	return &ListingRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeListingRemoved, AggregateTypeListing, l.ID, l.SellerID),
		ListingID:       l.ID,
	}
}

// EventType returns the event type name
func (e *ListingRemovedEvent) EventType() string {
	return EventTypeListingRemoved
}
