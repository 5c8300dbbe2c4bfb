package notification

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/settlement"
	"github.com/crosslist/backend/internal/infrastructure/cache"
	"github.com/crosslist/backend/internal/infrastructure/event"
)

// recordingNotifier captures delivered notifications
type recordingNotifier struct {
	mu            sync.Mutex
	notifications []Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
	return nil
}

func (n *recordingNotifier) delivered() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.notifications...)
}

func newSellerListing(t *testing.T) *listing.Listing {
	t.Helper()
	l, err := listing.NewListing(uuid.New(), "Vintage Camera", "A camera", decimal.NewFromInt(100), nil)
	require.NoError(t, err)
	l.ClearDomainEvents()
	return l
}

func TestPriceDropHandler(t *testing.T) {
	notifier := &recordingNotifier{}
	handler := NewPriceDropHandler(notifier, zap.NewNop())

	l := newSellerListing(t)
	e := listing.NewListingPriceDroppedEvent(l,
		decimal.NewFromInt(100), decimal.NewFromInt(90), listing.PriceChangeReasonAutomatic)

	require.NoError(t, handler.Handle(context.Background(), e))

	delivered := notifier.delivered()
	require.Len(t, delivered, 1)
	assert.Equal(t, KindPriceDrop, delivered[0].Kind)
	assert.Equal(t, l.SellerID, delivered[0].SellerID)
	assert.Contains(t, delivered[0].Body, "$100.00")
	assert.Contains(t, delivered[0].Body, "$90.00")
}

func TestSaleHandler(t *testing.T) {
	notifier := &recordingNotifier{}
	handler := NewSaleHandler(notifier, zap.NewNop())

	l := newSellerListing(t)
	e := listing.NewListingSoldEvent(l, marketplace.ChannelCodeEbay)

	require.NoError(t, handler.Handle(context.Background(), e))

	delivered := notifier.delivered()
	require.Len(t, delivered, 1)
	assert.Equal(t, KindSale, delivered[0].Kind)
	assert.Contains(t, delivered[0].Subject, "eBay")
}

func TestPayoutHandler(t *testing.T) {
	notifier := &recordingNotifier{}
	handler := NewPayoutHandler(notifier, zap.NewNop())

	payout, err := settlement.NewPayoutRequest(uuid.New(), decimal.NewFromInt(75))
	require.NoError(t, err)
	e := settlement.NewPayoutRequestedEvent(payout)

	require.NoError(t, handler.Handle(context.Background(), e))

	delivered := notifier.delivered()
	require.Len(t, delivered, 1)
	assert.Equal(t, KindPayout, delivered[0].Kind)
	assert.Contains(t, delivered[0].Body, "$75.00")
}

func TestHandlers_IgnoreUnexpectedPayload(t *testing.T) {
	notifier := &recordingNotifier{}
	handler := NewPriceDropHandler(notifier, zap.NewNop())

	l := newSellerListing(t)
	e := listing.NewListingSoldEvent(l, marketplace.ChannelCodeEbay)

	require.NoError(t, handler.Handle(context.Background(), e))
	assert.Empty(t, notifier.delivered())
}

func TestRegisterHandlers_DuplicateEventNotifiesOnce(t *testing.T) {
	notifier := &recordingNotifier{}
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	bus := event.NewInMemoryEventBus(zap.NewNop())
	RegisterHandlers(bus, notifier, store, zap.NewNop())

	l := newSellerListing(t)
	e := listing.NewListingPriceDroppedEvent(l,
		decimal.NewFromInt(100), decimal.NewFromInt(90), listing.PriceChangeReasonAutomatic)

	require.NoError(t, bus.Publish(context.Background(), e))
	require.NoError(t, bus.Publish(context.Background(), e))

	assert.Len(t, notifier.delivered(), 1)
}
