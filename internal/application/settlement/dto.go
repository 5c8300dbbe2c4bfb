package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/settlement"
)

// RequestPayoutRequest represents a seller's payout request
type RequestPayoutRequest struct {
	SellerID uuid.UUID       `json:"seller_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// RejectPayoutRequest carries the operator's rejection reason
type RejectPayoutRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// BalanceResponse represents a seller's ledger position
type BalanceResponse struct {
	SellerID  uuid.UUID       `json:"seller_id"`
	Available decimal.Decimal `json:"available"`
	Pending   decimal.Decimal `json:"pending"`
	PaidOut   decimal.Decimal `json:"paid_out"`
}

// SettlementResponse represents a settlement in API responses
type SettlementResponse struct {
	ID           uuid.UUID       `json:"id"`
	SellerID     uuid.UUID       `json:"seller_id"`
	ListingID    uuid.UUID       `json:"listing_id"`
	GrossAmount  decimal.Decimal `json:"gross_amount"`
	Fees         decimal.Decimal `json:"fees"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	NetAmount    decimal.Decimal `json:"net_amount"`
	Channel      string          `json:"channel"`
	Status       string          `json:"status"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PayoutResponse represents a payout request in API responses
type PayoutResponse struct {
	ID           uuid.UUID       `json:"id"`
	SellerID     uuid.UUID       `json:"seller_id"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	RejectedAt   *time.Time      `json:"rejected_at,omitempty"`
	RejectReason string          `json:"reject_reason,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToSettlementResponse converts a domain settlement to a response DTO
func ToSettlementResponse(s *settlement.Settlement) SettlementResponse {
	return SettlementResponse{
		ID:           s.ID,
		SellerID:     s.SellerID,
		ListingID:    s.ListingID,
		GrossAmount:  s.GrossAmount,
		Fees:         s.Fees,
		ShippingCost: s.ShippingCost,
		NetAmount:    s.NetAmount(),
		Channel:      s.Channel.String(),
		Status:       s.Status.String(),
		CompletedAt:  s.CompletedAt,
		CreatedAt:    s.CreatedAt,
	}
}

// ToPayoutResponse converts a domain payout request to a response DTO
func ToPayoutResponse(p *settlement.PayoutRequest) PayoutResponse {
	return PayoutResponse{
		ID:           p.ID,
		SellerID:     p.SellerID,
		Amount:       p.Amount,
		Status:       p.Status.String(),
		CompletedAt:  p.CompletedAt,
		RejectedAt:   p.RejectedAt,
		RejectReason: p.RejectReason,
		CreatedAt:    p.CreatedAt,
	}
}
