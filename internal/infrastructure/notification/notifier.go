package notification

import (
	"context"

	"github.com/google/uuid"
)

// Notification is a seller-facing message produced by domain events
type Notification struct {
	// SellerID is the recipient
	SellerID uuid.UUID
	// Kind categorizes the notification (price_drop, sale, payout)
	Kind string
	// Subject is the short headline
	Subject string
	// Body is the human-readable message
	Body string
}

// Notification kinds
const (
	KindPriceDrop = "price_drop"
	KindSale      = "sale"
	KindPayout    = "payout"
)

// Notifier delivers seller notifications. Implementations must be safe
// for concurrent use; delivery is best-effort and failures are retried
// through event redelivery, not by the notifier itself.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
