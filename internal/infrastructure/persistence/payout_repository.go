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

// GormPayoutRepository implements PayoutRepository using GORM
type GormPayoutRepository struct {
	db *gorm.DB
}

// NewGormPayoutRepository creates a new GormPayoutRepository
func NewGormPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// FindByID finds a payout request by its ID
func (r *GormPayoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.PayoutRequest, error) {
	var model models.PayoutModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySeller finds payout requests for a seller with filtering and a total count
func (r *GormPayoutRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter settlement.PayoutFilter) ([]settlement.PayoutRequest, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.PayoutModel{}).Where("seller_id = ?", sellerID)
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payoutModels []models.PayoutModel
	query := r.applyFilter(base, filter.Filter)
	if err := query.Find(&payoutModels).Error; err != nil {
		return nil, 0, err
	}

	payouts := make([]settlement.PayoutRequest, len(payoutModels))
	for i, model := range payoutModels {
		payouts[i] = *model.ToDomain()
	}
	return payouts, total, nil
}

// SumReservedBySeller sums amounts of pending and completed payout
// requests. Rejected requests reserve nothing.
func (r *GormPayoutRepository) SumReservedBySeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.PayoutModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("seller_id = ? AND status IN ?", sellerID,
			[]settlement.PayoutStatus{settlement.PayoutStatusPending, settlement.PayoutStatusCompleted}).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumCompletedBySeller sums amounts of completed payout requests
func (r *GormPayoutRepository) SumCompletedBySeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.PayoutModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("seller_id = ? AND status = ?", sellerID, settlement.PayoutStatusCompleted).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Save creates or updates a payout request
func (r *GormPayoutRepository) Save(ctx context.Context, p *settlement.PayoutRequest) error {
	model := models.PayoutModelFromDomain(p)
	return r.db.WithContext(ctx).Save(model).Error
}

// applyFilter applies pagination and ordering to the query
func (r *GormPayoutRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, PayoutSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// Ensure GormPayoutRepository implements PayoutRepository
var _ settlement.PayoutRepository = (*GormPayoutRepository)(nil)
