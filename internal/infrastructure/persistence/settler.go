package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/settlement"
	"github.com/crosslist/backend/internal/domain/shared"
	"github.com/crosslist/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSettler implements settlement.Settler. Both writes run in one
// transaction: the listing status flip is conditional on the row still
// being ACTIVE, and the settlement insert is guarded by the unique index
// on listing_id. Whichever guard trips first, the transaction rolls back
// and the listing stays settled exactly once.
type GormSettler struct {
	db *gorm.DB
}

// NewGormSettler creates a new GormSettler
func NewGormSettler(db *gorm.DB) *GormSettler {
	return &GormSettler{db: db}
}

// SettleListing marks the listing sold and records its settlement atomically
func (s *GormSettler) SettleListing(ctx context.Context, l *listing.Listing, channel marketplace.ChannelCode, amounts settlement.SaleAmounts, soldAt time.Time) (*settlement.Settlement, error) {
	if err := l.MarkSold(channel, soldAt); err != nil {
		return nil, err
	}

	stl, err := settlement.NewSettlement(l.SellerID, l.ID, amounts.Gross, amounts.Fees, amounts.ShippingCost, channel)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ListingModel{}).
			Where("id = ? AND status = ?", l.ID, listing.ListingStatusActive).
			Updates(map[string]interface{}{
				"status":       l.Status,
				"sold_channel": l.SoldChannel,
				"sold_at":      l.SoldAt,
				"updated_at":   l.UpdatedAt,
				"version":      gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		if err := tx.Create(models.SettlementModelFromDomain(stl)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			// The listing left ACTIVE under us. When a settlement exists the
			// other writer was a reconcile pass and the sale is recorded.
			var count int64
			if cntErr := s.db.WithContext(ctx).
				Model(&models.SettlementModel{}).
				Where("listing_id = ?", l.ID).
				Count(&count).Error; cntErr == nil && count > 0 {
				return nil, shared.ErrAlreadyExists
			}
		}
		return nil, err
	}

	return stl, nil
}

// Ensure GormSettler implements Settler
var _ settlement.Settler = (*GormSettler)(nil)
