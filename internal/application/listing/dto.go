package listing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/marketplace"
)

// CreateListingRequest represents a request to create a new listing
type CreateListingRequest struct {
	Title         string           `json:"title" binding:"required,min=1,max=200"`
	Description   string           `json:"description" binding:"max=5000"`
	OriginalPrice decimal.Decimal  `json:"original_price" binding:"required"`
	MinimumPrice  *decimal.Decimal `json:"minimum_price"`
}

// PublishListingRequest represents a request to publish a listing to channels
type PublishListingRequest struct {
	Channels []string `json:"channels" binding:"required,min=1"`
}

// UpdatePriceRequest represents a manual price update
type UpdatePriceRequest struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

// PublicationResponse represents one channel publication in API responses
type PublicationResponse struct {
	Channel        string     `json:"channel"`
	ExternalID     string     `json:"external_id"`
	ExternalStatus string     `json:"external_status"`
	PublishedAt    time.Time  `json:"published_at"`
	LastCheckedAt  *time.Time `json:"last_checked_at,omitempty"`
}

// ChannelOutcome records the per-channel result of a fan-out operation.
// Failures are reported, never fatal.
type ChannelOutcome struct {
	Channel string `json:"channel"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ListingResponse represents a listing in API responses
type ListingResponse struct {
	ID                uuid.UUID             `json:"id"`
	SellerID          uuid.UUID             `json:"seller_id"`
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	Price             decimal.Decimal       `json:"price"`
	OriginalPrice     decimal.Decimal       `json:"original_price"`
	MinimumPrice      decimal.Decimal       `json:"minimum_price"`
	Status            string                `json:"status"`
	Publications      []PublicationResponse `json:"publications"`
	LastPriceUpdateAt time.Time             `json:"last_price_update_at"`
	SoldChannel       *string               `json:"sold_channel,omitempty"`
	SoldAt            *time.Time            `json:"sold_at,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// PublishListingResponse pairs the updated listing with per-channel outcomes
type PublishListingResponse struct {
	Listing  ListingResponse  `json:"listing"`
	Outcomes []ChannelOutcome `json:"outcomes"`
}

// PriceHistoryResponse represents one price change in API responses
type PriceHistoryResponse struct {
	ID            uuid.UUID       `json:"id"`
	PreviousPrice decimal.Decimal `json:"previous_price"`
	NewPrice      decimal.Decimal `json:"new_price"`
	Reason        string          `json:"reason"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToListingResponse converts a domain listing to a response DTO
func ToListingResponse(l *listing.Listing) ListingResponse {
	pubs := make([]PublicationResponse, 0, len(l.Publications))
	for _, p := range l.Publications {
		pubs = append(pubs, PublicationResponse{
			Channel:        p.Channel.String(),
			ExternalID:     p.ExternalID,
			ExternalStatus: p.ExternalStatus,
			PublishedAt:    p.PublishedAt,
			LastCheckedAt:  p.LastCheckedAt,
		})
	}

	resp := ListingResponse{
		ID:                l.ID,
		SellerID:          l.SellerID,
		Title:             l.Title,
		Description:       l.Description,
		Price:             l.Price,
		OriginalPrice:     l.OriginalPrice,
		MinimumPrice:      l.MinimumPrice,
		Status:            l.Status.String(),
		Publications:      pubs,
		LastPriceUpdateAt: l.LastPriceUpdateAt,
		SoldAt:            l.SoldAt,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
	if l.SoldChannel != nil {
		s := l.SoldChannel.String()
		resp.SoldChannel = &s
	}
	return resp
}

// ToPriceHistoryResponse converts a history entry to a response DTO
func ToPriceHistoryResponse(e *listing.PriceHistoryEntry) PriceHistoryResponse {
	return PriceHistoryResponse{
		ID:            e.ID,
		PreviousPrice: e.PreviousPrice,
		NewPrice:      e.NewPrice,
		Reason:        e.Reason.String(),
		CreatedAt:     e.CreatedAt,
	}
}

// ParseChannels validates and converts channel code strings
func ParseChannels(raw []string) ([]marketplace.ChannelCode, error) {
	codes := make([]marketplace.ChannelCode, 0, len(raw))
	for _, r := range raw {
		code := marketplace.ChannelCode(r)
		if !code.IsValid() {
			return nil, marketplace.ErrChannelNotRegistered
		}
		codes = append(codes, code)
	}
	return codes, nil
}
