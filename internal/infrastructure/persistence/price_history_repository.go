package persistence

import (
	"context"

	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPriceHistoryRepository implements PriceHistoryRepository using GORM
type GormPriceHistoryRepository struct {
	db *gorm.DB
}

// NewGormPriceHistoryRepository creates a new GormPriceHistoryRepository
func NewGormPriceHistoryRepository(db *gorm.DB) *GormPriceHistoryRepository {
	return &GormPriceHistoryRepository{db: db}
}

// Append inserts a price history entry. Entries are append-only.
func (r *GormPriceHistoryRepository) Append(ctx context.Context, entry *listing.PriceHistoryEntry) error {
	return r.db.WithContext(ctx).Create(models.PriceHistoryModelFromDomain(entry)).Error
}

// FindByListing returns the full price history for a listing, oldest first
func (r *GormPriceHistoryRepository) FindByListing(ctx context.Context, listingID uuid.UUID) ([]listing.PriceHistoryEntry, error) {
	var historyModels []models.PriceHistoryModel
	if err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at ASC").
		Find(&historyModels).Error; err != nil {
		return nil, err
	}

	entries := make([]listing.PriceHistoryEntry, len(historyModels))
	for i, model := range historyModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

// Ensure GormPriceHistoryRepository implements PriceHistoryRepository
var _ listing.PriceHistoryRepository = (*GormPriceHistoryRepository)(nil)
