package models

import (
	"time"

	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/settlement"
	"github.com/crosslist/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementModel is the persistence model for the Settlement aggregate
// root. The unique index on ListingID is what makes settlement creation
// exactly-once under concurrent reconciliation.
type SettlementModel struct {
	SellerAggregateModel
	ListingID    uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex"`
	GrossAmount  decimal.Decimal             `gorm:"type:decimal(18,2);not null"`
	Fees         decimal.Decimal             `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingCost decimal.Decimal             `gorm:"type:decimal(18,2);not null;default:0"`
	Channel      marketplace.ChannelCode     `gorm:"type:varchar(20);not null"`
	Status       settlement.SettlementStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CompletedAt  *time.Time
}

// TableName returns the table name for GORM
func (SettlementModel) TableName() string {
	return "settlements"
}

// ToDomain converts the persistence model to a domain Settlement entity.
func (m *SettlementModel) ToDomain() *settlement.Settlement {
	return &settlement.Settlement{
		SellerAggregateRoot: shared.SellerAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			SellerID: m.SellerID,
		},
		ListingID:    m.ListingID,
		GrossAmount:  m.GrossAmount,
		Fees:         m.Fees,
		ShippingCost: m.ShippingCost,
		Channel:      m.Channel,
		Status:       m.Status,
		CompletedAt:  m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain Settlement entity.
func (m *SettlementModel) FromDomain(s *settlement.Settlement) {
	m.FromDomainSellerAggregateRoot(s.SellerAggregateRoot)
	m.ListingID = s.ListingID
	m.GrossAmount = s.GrossAmount
	m.Fees = s.Fees
	m.ShippingCost = s.ShippingCost
	m.Channel = s.Channel
	m.Status = s.Status
	m.CompletedAt = s.CompletedAt
}

// SettlementModelFromDomain creates a new persistence model from a domain Settlement entity.
func SettlementModelFromDomain(s *settlement.Settlement) *SettlementModel {
	m := &SettlementModel{}
	m.FromDomain(s)
	return m
}

// PayoutModel is the persistence model for the PayoutRequest aggregate root.
type PayoutModel struct {
	SellerAggregateModel
	Amount       decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	Status       settlement.PayoutStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CompletedAt  *time.Time
	RejectedAt   *time.Time
	RejectReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PayoutModel) TableName() string {
	return "payout_requests"
}

// ToDomain converts the persistence model to a domain PayoutRequest entity.
func (m *PayoutModel) ToDomain() *settlement.PayoutRequest {
	return &settlement.PayoutRequest{
		SellerAggregateRoot: shared.SellerAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			SellerID: m.SellerID,
		},
		Amount:       m.Amount,
		Status:       m.Status,
		CompletedAt:  m.CompletedAt,
		RejectedAt:   m.RejectedAt,
		RejectReason: m.RejectReason,
	}
}

// FromDomain populates the persistence model from a domain PayoutRequest entity.
func (m *PayoutModel) FromDomain(p *settlement.PayoutRequest) {
	m.FromDomainSellerAggregateRoot(p.SellerAggregateRoot)
	m.Amount = p.Amount
	m.Status = p.Status
	m.CompletedAt = p.CompletedAt
	m.RejectedAt = p.RejectedAt
	m.RejectReason = p.RejectReason
}

// PayoutModelFromDomain creates a new persistence model from a domain PayoutRequest entity.
func PayoutModelFromDomain(p *settlement.PayoutRequest) *PayoutModel {
	m := &PayoutModel{}
	m.FromDomain(p)
	return m
}
