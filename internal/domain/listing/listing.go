package listing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/shared"
)

// DefaultMinimumPriceRatio is applied when no explicit minimum price is
// given at creation: minimum = original price * ratio, rounded to cents.
var DefaultMinimumPriceRatio = decimal.NewFromFloat(0.5)

// ListingStatus represents the lifecycle status of a listing
type ListingStatus string

const (
	ListingStatusActive  ListingStatus = "ACTIVE"
	ListingStatusSold    ListingStatus = "SOLD"
	ListingStatusEnded   ListingStatus = "ENDED"
	ListingStatusRemoved ListingStatus = "REMOVED"
)

// IsValid checks if the status is a valid ListingStatus
func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingStatusActive, ListingStatusSold, ListingStatusEnded, ListingStatusRemoved:
		return true
	}
	return false
}

// String returns the string representation of ListingStatus
func (s ListingStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states no transition may leave
func (s ListingStatus) IsTerminal() bool {
	switch s {
	case ListingStatusSold, ListingStatusEnded, ListingStatusRemoved:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s ListingStatus) CanTransitionTo(target ListingStatus) bool {
	if s != ListingStatusActive {
		return false // SOLD, ENDED and REMOVED are terminal
	}
	switch target {
	case ListingStatusSold, ListingStatusEnded, ListingStatusRemoved:
		return true
	}
	return false
}

// PriceChangeReason classifies a price history entry
type PriceChangeReason string

const (
	PriceChangeReasonAutomatic PriceChangeReason = "AUTOMATIC"
	PriceChangeReasonManual    PriceChangeReason = "MANUAL"
)

// IsValid checks if the reason is valid
func (r PriceChangeReason) IsValid() bool {
	return r == PriceChangeReasonAutomatic || r == PriceChangeReasonManual
}

// String returns the string representation of PriceChangeReason
func (r PriceChangeReason) String() string {
	return string(r)
}

// PriceHistoryEntry is an append-only record of one price change.
// Entries are never mutated or deleted; they reconstruct the price
// trajectory of a listing for audit.
type PriceHistoryEntry struct {
	ID            uuid.UUID
	ListingID     uuid.UUID
	PreviousPrice decimal.Decimal
	NewPrice      decimal.Decimal
	Reason        PriceChangeReason
	CreatedAt     time.Time
}

// PublicationRecord tracks one listing's presence on one channel
type PublicationRecord struct {
	ID             uuid.UUID
	ListingID      uuid.UUID
	Channel        marketplace.ChannelCode
	ExternalID     string
	ExternalStatus string
	PublishedAt    time.Time
	LastCheckedAt  *time.Time
}

// MarkChecked records a completed sold-status poll
func (p *PublicationRecord) MarkChecked(rawStatus string, at time.Time) {
	p.ExternalStatus = rawStatus
	p.LastCheckedAt = &at
}

// Listing represents a cross-posted item aggregate root.
// It owns the price lifecycle (decay, manual edits) and the status state
// machine from creation to sale or removal.
type Listing struct {
	shared.SellerAggregateRoot
	Title             string
	Description       string
	Price             decimal.Decimal
	OriginalPrice     decimal.Decimal
	MinimumPrice      decimal.Decimal
	Status            ListingStatus
	Publications      []PublicationRecord
	LastPriceUpdateAt time.Time
	SoldChannel       *marketplace.ChannelCode
	SoldAt            *time.Time
	EndedAt           *time.Time
	RemovedAt         *time.Time
}

// NewListing creates a new active listing priced at its original price.
// The decay baseline (LastPriceUpdateAt) starts at creation time. When
// minimumPrice is nil the default ratio of the original price applies.
// The minimum price is immutable after creation.
func NewListing(sellerID uuid.UUID, title, description string, originalPrice decimal.Decimal, minimumPrice *decimal.Decimal) (*Listing, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	if originalPrice.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PRICE", "Original price must be positive")
	}

	var minimum decimal.Decimal
	if minimumPrice != nil {
		minimum = *minimumPrice
	} else {
		minimum = originalPrice.Mul(DefaultMinimumPriceRatio).Round(2)
	}
	if minimum.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_MINIMUM_PRICE", "Minimum price must be positive")
	}
	if minimum.GreaterThan(originalPrice) {
		return nil, shared.NewDomainError("INVALID_MINIMUM_PRICE", "Minimum price cannot exceed original price")
	}

	l := &Listing{
		SellerAggregateRoot: shared.NewSellerAggregateRoot(sellerID),
		Title:               title,
		Description:         description,
		Price:               originalPrice,
		OriginalPrice:       originalPrice,
		MinimumPrice:        minimum,
		Status:              ListingStatusActive,
		Publications:        make([]PublicationRecord, 0),
		LastPriceUpdateAt:   time.Now(),
	}

	l.AddDomainEvent(NewListingCreatedEvent(l))

	return l, nil
}

// AddPublication records the listing's presence on a channel.
// Only allowed while the listing is active; one record per channel.
func (l *Listing) AddPublication(channel marketplace.ChannelCode, externalID, externalStatus string) (*PublicationRecord, error) {
	if l.Status != ListingStatusActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot publish a non-active listing")
	}
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Unknown marketplace channel")
	}
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot be empty")
	}
	if l.IsPublishedTo(channel) {
		return nil, shared.NewDomainError("DUPLICATE_CHANNEL", "Listing is already published to this channel")
	}

	now := time.Now()
	record := PublicationRecord{
		ID:             uuid.New(),
		ListingID:      l.ID,
		Channel:        channel,
		ExternalID:     externalID,
		ExternalStatus: externalStatus,
		PublishedAt:    now,
	}
	l.Publications = append(l.Publications, record)
	l.UpdatedAt = now

	l.AddDomainEvent(NewListingPublishedEvent(l, &record))

	return &record, nil
}

// PublicationFor returns the publication record for a channel, or nil
func (l *Listing) PublicationFor(channel marketplace.ChannelCode) *PublicationRecord {
	for idx := range l.Publications {
		if l.Publications[idx].Channel == channel {
			return &l.Publications[idx]
		}
	}
	return nil
}

// IsPublishedTo returns true if the listing has a publication record for the channel
func (l *Listing) IsPublishedTo(channel marketplace.ChannelCode) bool {
	return l.PublicationFor(channel) != nil
}

// AtMinimumPrice returns true when the price has reached the decay floor.
// A listing at its minimum never expires; it just stops decaying.
func (l *Listing) AtMinimumPrice() bool {
	return l.Price.Equal(l.MinimumPrice)
}

// IsDecayDue reports whether the decay gate has elapsed since the last
// price update
func (l *Listing) IsDecayDue(now time.Time, gate time.Duration) bool {
	return l.Status == ListingStatusActive && now.Sub(l.LastPriceUpdateAt) >= gate
}

// NextDecayPrice computes the decayed candidate price: current price
// times factor, rounded to cents, clamped to the minimum price.
func (l *Listing) NextDecayPrice(factor decimal.Decimal) decimal.Decimal {
	candidate := l.Price.Mul(factor).Round(2)
	if candidate.LessThan(l.MinimumPrice) {
		return l.MinimumPrice
	}
	return candidate
}

// ApplyAutomaticPriceDrop lowers the price by the decay factor and
// returns the resulting history entry. Calling it on a listing already
// at its minimum price is an error; the decay engine skips those
// listings entirely so the cycle stays a no-op for them.
func (l *Listing) ApplyAutomaticPriceDrop(factor decimal.Decimal, now time.Time) (*PriceHistoryEntry, error) {
	if l.Status != ListingStatusActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot decay price of a non-active listing")
	}
	if factor.LessThanOrEqual(decimal.Zero) || factor.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_DECAY_FACTOR", "Decay factor must be between 0 and 1")
	}
	if l.AtMinimumPrice() {
		return nil, shared.NewDomainError("PRICE_AT_MINIMUM", "Price already at minimum, nothing to decay")
	}

	newPrice := l.NextDecayPrice(factor)
	entry := l.recordPriceChange(newPrice, PriceChangeReasonAutomatic, now)
	return entry, nil
}

// UpdatePriceManually sets a seller-chosen price, bypassing the decay
// gate and factor but still enforcing the minimum price floor and the
// original price ceiling.
func (l *Listing) UpdatePriceManually(newPrice decimal.Decimal, now time.Time) (*PriceHistoryEntry, error) {
	if l.Status != ListingStatusActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot update price of a non-active listing")
	}
	if newPrice.LessThan(l.MinimumPrice) {
		return nil, shared.NewDomainError("INVALID_PRICE",
			fmt.Sprintf("Price %s is below the minimum price %s", newPrice.StringFixed(2), l.MinimumPrice.StringFixed(2)))
	}
	if newPrice.GreaterThan(l.OriginalPrice) {
		return nil, shared.NewDomainError("INVALID_PRICE",
			fmt.Sprintf("Price %s exceeds the original price %s", newPrice.StringFixed(2), l.OriginalPrice.StringFixed(2)))
	}
	if newPrice.Equal(l.Price) {
		return nil, shared.NewDomainError("PRICE_UNCHANGED", "New price equals the current price")
	}

	entry := l.recordPriceChange(newPrice, PriceChangeReasonManual, now)
	return entry, nil
}

// recordPriceChange mutates the price, resets the decay baseline and
// raises the price-dropped event. The caller persists the listing update
// together with the returned history entry in one atomic write.
func (l *Listing) recordPriceChange(newPrice decimal.Decimal, reason PriceChangeReason, now time.Time) *PriceHistoryEntry {
	entry := &PriceHistoryEntry{
		ID:            uuid.New(),
		ListingID:     l.ID,
		PreviousPrice: l.Price,
		NewPrice:      newPrice,
		Reason:        reason,
		CreatedAt:     now,
	}

	oldPrice := l.Price
	l.Price = newPrice
	l.LastPriceUpdateAt = now
	l.UpdatedAt = now

	l.AddDomainEvent(NewListingPriceDroppedEvent(l, oldPrice, newPrice, reason))

	return entry
}

// MarkSold transitions the listing to SOLD, attributing the sale to the
// given channel. Only the sold-reconciliation engine calls this.
func (l *Listing) MarkSold(channel marketplace.ChannelCode, now time.Time) error {
	if !l.Status.CanTransitionTo(ListingStatusSold) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark listing sold in %s status", l.Status))
	}
	if !l.IsPublishedTo(channel) {
		return shared.NewDomainError("INVALID_CHANNEL", "Listing is not published to the selling channel")
	}

	l.Status = ListingStatusSold
	l.SoldChannel = &channel
	l.SoldAt = &now
	l.UpdatedAt = now

	l.AddDomainEvent(NewListingSoldEvent(l, channel))

	return nil
}

// End transitions the listing to ENDED (e.g. superseded by a new listing)
func (l *Listing) End(now time.Time) error {
	if !l.Status.CanTransitionTo(ListingStatusEnded) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot end listing in %s status", l.Status))
	}

	l.Status = ListingStatusEnded
	l.EndedAt = &now
	l.UpdatedAt = now

	l.AddDomainEvent(NewListingEndedEvent(l))

	return nil
}

// Remove transitions the listing to REMOVED (seller-initiated delete).
// Ending the listing on every published channel is handled best-effort
// by the application service before this transition.
func (l *Listing) Remove(now time.Time) error {
	if !l.Status.CanTransitionTo(ListingStatusRemoved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot remove listing in %s status", l.Status))
	}

	l.Status = ListingStatusRemoved
	l.RemovedAt = &now
	l.UpdatedAt = now

	l.AddDomainEvent(NewListingRemovedEvent(l))

	return nil
}

// IsActive returns true if the listing is active
func (l *Listing) IsActive() bool {
	return l.Status == ListingStatusActive
}

// IsSold returns true if the listing is sold
func (l *Listing) IsSold() bool {
	return l.Status == ListingStatusSold
}
