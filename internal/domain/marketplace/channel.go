package marketplace

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Channel Errors
// ---------------------------------------------------------------------------

var (
	ErrChannelNotConfigured   = errors.New("marketplace: channel not configured")
	ErrChannelNotRegistered   = errors.New("marketplace: channel not registered")
	ErrChannelUnavailable     = errors.New("marketplace: channel temporarily unavailable")
	ErrChannelRequestFailed   = errors.New("marketplace: channel request failed")
	ErrChannelInvalidResponse = errors.New("marketplace: invalid channel response")
	ErrChannelAuthFailed      = errors.New("marketplace: channel authentication failed")
	ErrChannelRateLimited     = errors.New("marketplace: channel rate limited")
	ErrListingNotOnChannel    = errors.New("marketplace: listing not found on channel")
)

// ---------------------------------------------------------------------------
// ChannelCode represents an external sales channel
// ---------------------------------------------------------------------------

// ChannelCode identifies an external marketplace
type ChannelCode string

const (
	// ChannelCodeEbay represents the eBay marketplace
	ChannelCodeEbay ChannelCode = "EBAY"
	// ChannelCodeEtsy represents the Etsy marketplace
	ChannelCodeEtsy ChannelCode = "ETSY"
	// ChannelCodeDepop represents the Depop marketplace
	ChannelCodeDepop ChannelCode = "DEPOP"
	// ChannelCodeMercari represents the Mercari marketplace
	ChannelCodeMercari ChannelCode = "MERCARI"
)

// IsValid returns true if the channel code is valid
func (c ChannelCode) IsValid() bool {
	switch c {
	case ChannelCodeEbay, ChannelCodeEtsy, ChannelCodeDepop, ChannelCodeMercari:
		return true
	default:
		return false
	}
}

// String returns the string representation of ChannelCode
func (c ChannelCode) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the channel
func (c ChannelCode) DisplayName() string {
	switch c {
	case ChannelCodeEbay:
		return "eBay"
	case ChannelCodeEtsy:
		return "Etsy"
	case ChannelCodeDepop:
		return "Depop"
	case ChannelCodeMercari:
		return "Mercari"
	default:
		return string(c)
	}
}

// ---------------------------------------------------------------------------
// Value Objects
// ---------------------------------------------------------------------------

// ListingDraft carries the data a channel needs to publish a listing
type ListingDraft struct {
	// Title is the listing title
	Title string
	// Description is the listing description
	Description string
	// Price is the asking price
	Price decimal.Decimal
	// ImageURLs contains listing image URLs (upload handled elsewhere)
	ImageURLs []string
}

// PublishResult is the outcome of publishing a listing to a channel
type PublishResult struct {
	// ExternalID is the channel's identifier for the listing
	ExternalID string
	// ExternalStatus is the raw status reported by the channel
	ExternalStatus string
	// PublishedAt is when the channel accepted the listing
	PublishedAt time.Time
}

// SoldCheck is the outcome of a check-sold poll against a channel.
// Sold is only trustworthy when the call itself succeeded; channel
// errors are returned as errors and must be treated as "no signal".
type SoldCheck struct {
	// Sold reports whether the channel considers the listing sold
	Sold bool
	// RawStatus is the channel's raw status string
	RawStatus string
	// CheckedAt is when the poll completed
	CheckedAt time.Time
}

// ---------------------------------------------------------------------------
// Channel Port Interface
// ---------------------------------------------------------------------------

// Channel defines the port interface for one external marketplace.
// Concrete adapters (eBay, Etsy, Depop, Mercari) live in the
// infrastructure layer. All calls are at-least-once and may fail
// independently; a failure means "unknown, retry later", never a
// negative signal.
type Channel interface {
	// Code returns the channel code this adapter handles
	Code() ChannelCode

	// Publish creates the listing on the channel and returns its external ID
	Publish(ctx context.Context, draft ListingDraft) (*PublishResult, error)

	// UpdatePrice updates the listing price on the channel
	UpdatePrice(ctx context.Context, externalID string, price decimal.Decimal) error

	// End ends (delists) the listing on the channel
	End(ctx context.Context, externalID string) error

	// CheckSold polls the channel for the listing's sale status
	CheckSold(ctx context.Context, externalID string) (*SoldCheck, error)
}

// Registry provides access to the configured channel adapters
type Registry interface {
	// Get returns the adapter for the specified channel code
	Get(code ChannelCode) (Channel, error)

	// List returns all registered adapters in registration order
	List() []Channel

	// Priority returns the configured reconciliation priority order.
	// When more than one channel reports a sale in the same pass, the
	// earliest channel in this order wins the attribution.
	Priority() []ChannelCode

	// InPriorityOrder returns the given codes sorted by the configured
	// priority; codes missing from the priority list keep their relative
	// order after the prioritized ones.
	InPriorityOrder(codes []ChannelCode) []ChannelCode
}
