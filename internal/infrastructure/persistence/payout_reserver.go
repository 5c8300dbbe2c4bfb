package persistence

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/crosslist/backend/internal/domain/settlement"
	"github.com/crosslist/backend/internal/infrastructure/persistence/models"
)

// GormPayoutReserver implements settlement.PayoutReserver. The balance
// check and the payout insert run in one transaction, serialized per
// seller with an advisory lock so concurrent requests cannot both
// reserve the same funds.
type GormPayoutReserver struct {
	db            *gorm.DB
	minimumPayout decimal.Decimal
}

// NewGormPayoutReserver creates a new GormPayoutReserver
func NewGormPayoutReserver(db *gorm.DB, minimumPayout decimal.Decimal) *GormPayoutReserver {
	return &GormPayoutReserver{db: db, minimumPayout: minimumPayout}
}

// ReservePayout validates the request against the seller's live balance
// and inserts the PENDING payout atomically
func (r *GormPayoutReserver) ReservePayout(ctx context.Context, p *settlement.PayoutRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockSellerPayouts(tx, p.SellerID.String()); err != nil {
			return err
		}

		ledger := settlement.NewLedgerService(
			NewGormSettlementRepository(tx),
			NewGormPayoutRepository(tx),
			r.minimumPayout,
		)
		if err := ledger.ValidatePayout(ctx, p.SellerID, p.Amount); err != nil {
			return err
		}

		return tx.Create(models.PayoutModelFromDomain(p)).Error
	})
}

// lockSellerPayouts takes a transaction-scoped advisory lock keyed on
// the seller. Advisory locks are postgres-only; sqlite serializes
// writers on its own.
func lockSellerPayouts(tx *gorm.DB, sellerID string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", sellerID).Error
}

// Ensure GormPayoutReserver implements PayoutReserver
var _ settlement.PayoutReserver = (*GormPayoutReserver)(nil)
