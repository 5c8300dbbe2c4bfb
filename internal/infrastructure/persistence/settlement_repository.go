package persistence

import (
	"context"
	"errors"

	"github.com/crosslist/backend/internal/domain/settlement"
	"github.com/crosslist/backend/internal/domain/shared"
	"github.com/crosslist/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSettlementRepository implements SettlementRepository using GORM
type GormSettlementRepository struct {
	db *gorm.DB
}

// NewGormSettlementRepository creates a new GormSettlementRepository
func NewGormSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

// FindByID finds a settlement by its ID
func (r *GormSettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Settlement, error) {
	var model models.SettlementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByListingID finds the settlement for a listing, if any
func (r *GormSettlementRepository) FindByListingID(ctx context.Context, listingID uuid.UUID) (*settlement.Settlement, error) {
	var model models.SettlementModel
	if err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsForListing checks whether a listing already has a settlement
func (r *GormSettlementRepository) ExistsForListing(ctx context.Context, listingID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SettlementModel{}).
		Where("listing_id = ?", listingID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindBySeller finds settlements for a seller with filtering and a total count
func (r *GormSettlementRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter settlement.SettlementFilter) ([]settlement.Settlement, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.SettlementModel{}).Where("seller_id = ?", sellerID)
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var settlementModels []models.SettlementModel
	query := r.applyFilter(base, filter.Filter)
	if err := query.Find(&settlementModels).Error; err != nil {
		return nil, 0, err
	}

	settlements := make([]settlement.Settlement, len(settlementModels))
	for i, model := range settlementModels {
		settlements[i] = *model.ToDomain()
	}
	return settlements, total, nil
}

// SumCompletedNetBySeller sums net amounts of completed settlements
func (r *GormSettlementRepository) SumCompletedNetBySeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	return r.sumNetByStatus(ctx, sellerID, settlement.SettlementStatusCompleted)
}

// SumPendingNetBySeller sums net amounts of pending settlements
func (r *GormSettlementRepository) SumPendingNetBySeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	return r.sumNetByStatus(ctx, sellerID, settlement.SettlementStatusPending)
}

func (r *GormSettlementRepository) sumNetByStatus(ctx context.Context, sellerID uuid.UUID, status settlement.SettlementStatus) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.SettlementModel{}).
		Select("COALESCE(SUM(gross_amount - fees - shipping_cost), 0) as total").
		Where("seller_id = ? AND status = ?", sellerID, status).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save creates or updates a settlement. The unique index on listing_id
// rejects a second settlement for the same listing with
// shared.ErrAlreadyExists.
func (r *GormSettlementRepository) Save(ctx context.Context, s *settlement.Settlement) error {
	model := models.SettlementModelFromDomain(s)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// applyFilter applies pagination and ordering to the query
func (r *GormSettlementRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, SettlementSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// Ensure GormSettlementRepository implements SettlementRepository
var _ settlement.SettlementRepository = (*GormSettlementRepository)(nil)
