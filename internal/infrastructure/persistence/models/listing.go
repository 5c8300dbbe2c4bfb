package models

import (
	"time"

	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListingModel is the persistence model for the Listing aggregate root.
type ListingModel struct {
	SellerAggregateModel
	Title             string                     `gorm:"type:varchar(200);not null"`
	Description       string                     `gorm:"type:text"`
	Price             decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	OriginalPrice     decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	MinimumPrice      decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	Status            listing.ListingStatus      `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_listing_decay,priority:1"`
	Publications      []PublicationModel         `gorm:"foreignKey:ListingID;references:ID"`
	LastPriceUpdateAt time.Time                  `gorm:"not null;index:idx_listing_decay,priority:2"`
	SoldChannel       *marketplace.ChannelCode   `gorm:"type:varchar(20)"`
	SoldAt            *time.Time                 `gorm:"index"`
	EndedAt           *time.Time
	RemovedAt         *time.Time
}

// TableName returns the table name for GORM
func (ListingModel) TableName() string {
	return "listings"
}

// ToDomain converts the persistence model to a domain Listing entity.
func (m *ListingModel) ToDomain() *listing.Listing {
	l := &listing.Listing{
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
		Title:             m.Title,
		Description:       m.Description,
		Price:             m.Price,
		OriginalPrice:     m.OriginalPrice,
		MinimumPrice:      m.MinimumPrice,
		Status:            m.Status,
		LastPriceUpdateAt: m.LastPriceUpdateAt,
		SoldChannel:       m.SoldChannel,
		SoldAt:            m.SoldAt,
		EndedAt:           m.EndedAt,
		RemovedAt:         m.RemovedAt,
		Publications:      make([]listing.PublicationRecord, len(m.Publications)),
	}
	for i, pub := range m.Publications {
		l.Publications[i] = *pub.ToDomain()
	}
	return l
}

// FromDomain populates the persistence model from a domain Listing entity.
func (m *ListingModel) FromDomain(l *listing.Listing) {
	m.FromDomainSellerAggregateRoot(l.SellerAggregateRoot)
	m.Title = l.Title
	m.Description = l.Description
	m.Price = l.Price
	m.OriginalPrice = l.OriginalPrice
	m.MinimumPrice = l.MinimumPrice
	m.Status = l.Status
	m.LastPriceUpdateAt = l.LastPriceUpdateAt
	m.SoldChannel = l.SoldChannel
	m.SoldAt = l.SoldAt
	m.EndedAt = l.EndedAt
	m.RemovedAt = l.RemovedAt
	m.Publications = make([]PublicationModel, len(l.Publications))
	for i, pub := range l.Publications {
		m.Publications[i] = *PublicationModelFromDomain(&pub)
	}
}

// ListingModelFromDomain creates a new persistence model from a domain Listing entity.
func ListingModelFromDomain(l *listing.Listing) *ListingModel {
	m := &ListingModel{}
	m.FromDomain(l)
	return m
}

// PublicationModel is the persistence model for the PublicationRecord entity.
// One row per listing per channel.
type PublicationModel struct {
	ID             uuid.UUID               `gorm:"type:uuid;primary_key"`
	ListingID      uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_publication_listing_channel,priority:1"`
	Channel        marketplace.ChannelCode `gorm:"type:varchar(20);not null;uniqueIndex:idx_publication_listing_channel,priority:2"`
	ExternalID     string                  `gorm:"type:varchar(100);not null"`
	ExternalStatus string                  `gorm:"type:varchar(50)"`
	PublishedAt    time.Time               `gorm:"not null"`
	LastCheckedAt  *time.Time
}

// TableName returns the table name for GORM
func (PublicationModel) TableName() string {
	return "listing_publications"
}

// ToDomain converts the persistence model to a domain PublicationRecord entity.
func (m *PublicationModel) ToDomain() *listing.PublicationRecord {
	return &listing.PublicationRecord{
		ID:             m.ID,
		ListingID:      m.ListingID,
		Channel:        m.Channel,
		ExternalID:     m.ExternalID,
		ExternalStatus: m.ExternalStatus,
		PublishedAt:    m.PublishedAt,
		LastCheckedAt:  m.LastCheckedAt,
	}
}

// FromDomain populates the persistence model from a domain PublicationRecord entity.
func (m *PublicationModel) FromDomain(p *listing.PublicationRecord) {
	m.ID = p.ID
	m.ListingID = p.ListingID
	m.Channel = p.Channel
	m.ExternalID = p.ExternalID
	m.ExternalStatus = p.ExternalStatus
	m.PublishedAt = p.PublishedAt
	m.LastCheckedAt = p.LastCheckedAt
}

// PublicationModelFromDomain creates a new persistence model from a domain PublicationRecord entity.
func PublicationModelFromDomain(p *listing.PublicationRecord) *PublicationModel {
	m := &PublicationModel{}
	m.FromDomain(p)
	return m
}

// PriceHistoryModel is the persistence model for the PriceHistoryEntry
// entity. Rows are append-only; there is no update path.
type PriceHistoryModel struct {
	ID            uuid.UUID                 `gorm:"type:uuid;primary_key"`
	ListingID     uuid.UUID                 `gorm:"type:uuid;not null;index"`
	PreviousPrice decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	NewPrice      decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	Reason        listing.PriceChangeReason `gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time                 `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PriceHistoryModel) TableName() string {
	return "price_history"
}

// ToDomain converts the persistence model to a domain PriceHistoryEntry entity.
func (m *PriceHistoryModel) ToDomain() *listing.PriceHistoryEntry {
	return &listing.PriceHistoryEntry{
		ID:            m.ID,
		ListingID:     m.ListingID,
		PreviousPrice: m.PreviousPrice,
		NewPrice:      m.NewPrice,
		Reason:        m.Reason,
		CreatedAt:     m.CreatedAt,
	}
}

// PriceHistoryModelFromDomain creates a new persistence model from a domain PriceHistoryEntry entity.
func PriceHistoryModelFromDomain(e *listing.PriceHistoryEntry) *PriceHistoryModel {
	return &PriceHistoryModel{
		ID:            e.ID,
		ListingID:     e.ListingID,
		PreviousPrice: e.PreviousPrice,
		NewPrice:      e.NewPrice,
		Reason:        e.Reason,
		CreatedAt:     e.CreatedAt,
	}
}
