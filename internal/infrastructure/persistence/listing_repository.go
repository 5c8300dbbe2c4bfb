package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/shared"
	"github.com/crosslist/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormListingRepository implements ListingRepository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindByID finds a listing by its ID
func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	var model models.ListingModel
	if err := r.db.WithContext(ctx).
		Preload("Publications").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForSeller finds a listing by ID owned by a specific seller
func (r *GormListingRepository) FindByIDForSeller(ctx context.Context, sellerID, id uuid.UUID) (*listing.Listing, error) {
	var model models.ListingModel
	if err := r.db.WithContext(ctx).
		Preload("Publications").
		Where("seller_id = ? AND id = ?", sellerID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySeller finds listings for a seller with filtering and a total count
func (r *GormListingRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter listing.ListingFilter) ([]listing.Listing, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.ListingModel{}).Where("seller_id = ?", sellerID)
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listingModels []models.ListingModel
	query := r.applyFilter(base, filter.Filter).Preload("Publications")
	if err := query.Find(&listingModels).Error; err != nil {
		return nil, 0, err
	}

	listings := make([]listing.Listing, len(listingModels))
	for i, model := range listingModels {
		listings[i] = *model.ToDomain()
	}
	return listings, total, nil
}

// FindDecayCandidates finds active listings whose decay gate has elapsed
// and whose price is still above the minimum. At-minimum listings never
// show up here, so a decay pass leaves them untouched.
func (r *GormListingRepository) FindDecayCandidates(ctx context.Context, cutoff time.Time, limit int) ([]listing.Listing, error) {
	var listingModels []models.ListingModel
	query := r.db.WithContext(ctx).
		Where("status = ? AND last_price_update_at <= ? AND price > minimum_price", listing.ListingStatusActive, cutoff).
		Order("last_price_update_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Preload("Publications").Find(&listingModels).Error; err != nil {
		return nil, err
	}

	listings := make([]listing.Listing, len(listingModels))
	for i, model := range listingModels {
		listings[i] = *model.ToDomain()
	}
	return listings, nil
}

// FindActivePublished finds active listings with at least one publication record
func (r *GormListingRepository) FindActivePublished(ctx context.Context, limit int) ([]listing.Listing, error) {
	var listingModels []models.ListingModel
	query := r.db.WithContext(ctx).
		Where("status = ?", listing.ListingStatusActive).
		Where("EXISTS (SELECT 1 FROM listing_publications WHERE listing_publications.listing_id = listings.id)").
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Preload("Publications").Find(&listingModels).Error; err != nil {
		return nil, err
	}

	listings := make([]listing.Listing, len(listingModels))
	for i, model := range listingModels {
		listings[i] = *model.ToDomain()
	}
	return listings, nil
}

// Save inserts a new listing or rewrites an existing one under an
// optimistic version check, together with its publication records. When
// the row moved on since the aggregate was loaded (any conditional
// write bumps the version), nothing is written and
// shared.ErrConcurrencyConflict is returned.
func (r *GormListingRepository) Save(ctx context.Context, l *listing.Listing) error {
	model := models.ListingModelFromDomain(l)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.ListingModel
		err := tx.Select("version").Where("id = ?", l.ID).First(&current).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Omit("Publications").Create(model).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if current.Version != l.Version {
				return shared.ErrConcurrencyConflict
			}
			result := tx.Model(&models.ListingModel{}).
				Where("id = ? AND version = ?", l.ID, l.Version).
				Updates(map[string]interface{}{
					"version":              l.Version + 1,
					"title":                model.Title,
					"description":          model.Description,
					"price":                model.Price,
					"original_price":       model.OriginalPrice,
					"minimum_price":        model.MinimumPrice,
					"status":               model.Status,
					"last_price_update_at": model.LastPriceUpdateAt,
					"sold_channel":         model.SoldChannel,
					"sold_at":              model.SoldAt,
					"ended_at":             model.EndedAt,
					"removed_at":           model.RemovedAt,
					"updated_at":           model.UpdatedAt,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrConcurrencyConflict
			}
			l.IncrementVersion()
		}

		return savePublications(tx, model.Publications)
	})
}

// SavePublications upserts the listing's publication records without
// touching the listing row. Reconcile passes use it to persist check
// timestamps even when the in-memory listing snapshot is stale.
func (r *GormListingRepository) SavePublications(ctx context.Context, l *listing.Listing) error {
	model := models.ListingModelFromDomain(l)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return savePublications(tx, model.Publications)
	})
}

// Publications are never removed, only added and updated
func savePublications(tx *gorm.DB, pubs []models.PublicationModel) error {
	for i := range pubs {
		if err := tx.Save(&pubs[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// SavePriceChange persists a price change and its history entry in one
// transaction. The listing update is conditional on the row still being
// ACTIVE; when the listing was sold or removed in between, nothing is
// written and shared.ErrConcurrencyConflict is returned.
func (r *GormListingRepository) SavePriceChange(ctx context.Context, l *listing.Listing, entry *listing.PriceHistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ListingModel{}).
			Where("id = ? AND status = ?", l.ID, listing.ListingStatusActive).
			Updates(map[string]interface{}{
				"price":                l.Price,
				"last_price_update_at": l.LastPriceUpdateAt,
				"updated_at":           l.UpdatedAt,
				"version":              gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return tx.Create(models.PriceHistoryModelFromDomain(entry)).Error
	})
}

// UpdateStatusIfActive conditionally flips the listing out of ACTIVE.
// A losing writer affects zero rows and gets shared.ErrConcurrencyConflict.
func (r *GormListingRepository) UpdateStatusIfActive(ctx context.Context, l *listing.Listing) error {
	result := r.db.WithContext(ctx).Model(&models.ListingModel{}).
		Where("id = ? AND status = ?", l.ID, listing.ListingStatusActive).
		Updates(map[string]interface{}{
			"status":       l.Status,
			"sold_channel": l.SoldChannel,
			"sold_at":      l.SoldAt,
			"ended_at":     l.EndedAt,
			"removed_at":   l.RemovedAt,
			"updated_at":   l.UpdatedAt,
			"version":      gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// applyFilter applies pagination and ordering to the query
func (r *GormListingRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ListingSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// Ensure GormListingRepository implements ListingRepository
var _ listing.ListingRepository = (*GormListingRepository)(nil)
