package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/settlement"
	"github.com/crosslist/backend/internal/domain/shared"
	"github.com/crosslist/backend/internal/infrastructure/event"
)

// PriceDropHandler notifies sellers when an automatic or manual price
// change lowers a listing's price
type PriceDropHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewPriceDropHandler creates a new price drop notification handler
func NewPriceDropHandler(notifier Notifier, logger *zap.Logger) *PriceDropHandler {
	return &PriceDropHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PriceDropHandler) EventTypes() []string {
	return []string{listing.EventTypeListingPriceDropped}
}

// Handle sends the price drop notification
func (h *PriceDropHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	dropped, ok := e.(*listing.ListingPriceDroppedEvent)
	if !ok {
		h.logger.Warn("unexpected event payload", zap.String("event_type", e.EventType()))
		return nil
	}

	return h.notifier.Notify(ctx, Notification{
		SellerID: dropped.SellerID(),
		Kind:     KindPriceDrop,
		Subject:  fmt.Sprintf("Price dropped: %s", dropped.Title),
		Body: fmt.Sprintf("The price of %q changed from $%s to $%s.",
			dropped.Title, dropped.OldPrice.StringFixed(2), dropped.NewPrice.StringFixed(2)),
	})
}

// SaleHandler notifies sellers when a listing sells on a channel
type SaleHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewSaleHandler creates a new sale notification handler
func NewSaleHandler(notifier Notifier, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *SaleHandler) EventTypes() []string {
	return []string{listing.EventTypeListingSold}
}

// Handle sends the sale notification
func (h *SaleHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	sold, ok := e.(*listing.ListingSoldEvent)
	if !ok {
		h.logger.Warn("unexpected event payload", zap.String("event_type", e.EventType()))
		return nil
	}

	return h.notifier.Notify(ctx, Notification{
		SellerID: sold.SellerID(),
		Kind:     KindSale,
		Subject:  fmt.Sprintf("Sold on %s: %s", sold.Channel.DisplayName(), sold.Title),
		Body: fmt.Sprintf("%q sold on %s for $%s.",
			sold.Title, sold.Channel.DisplayName(), sold.SalePrice.StringFixed(2)),
	})
}

// PayoutHandler notifies sellers when a payout request is accepted
type PayoutHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewPayoutHandler creates a new payout notification handler
func NewPayoutHandler(notifier Notifier, logger *zap.Logger) *PayoutHandler {
	return &PayoutHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PayoutHandler) EventTypes() []string {
	return []string{settlement.EventTypePayoutRequested}
}

// Handle sends the payout notification
func (h *PayoutHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	requested, ok := e.(*settlement.PayoutRequestedEvent)
	if !ok {
		h.logger.Warn("unexpected event payload", zap.String("event_type", e.EventType()))
		return nil
	}

	return h.notifier.Notify(ctx, Notification{
		SellerID: requested.SellerID(),
		Kind:     KindPayout,
		Subject:  "Payout requested",
		Body:     fmt.Sprintf("Your payout of $%s is being processed.", requested.Amount.StringFixed(2)),
	})
}

// RegisterHandlers wires the notification handlers onto the event bus,
// each wrapped with idempotency so redelivered events notify only once
func RegisterHandlers(
	bus shared.EventSubscriber,
	notifier Notifier,
	store shared.IdempotencyStore,
	logger *zap.Logger,
) {
	handlers := []shared.EventHandler{
		NewPriceDropHandler(notifier, logger),
		NewSaleHandler(notifier, logger),
		NewPayoutHandler(notifier, logger),
	}

	for _, h := range event.WrapHandlersWithIdempotency(handlers, store, logger) {
		bus.Subscribe(h)
	}
}
