package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/crosslist/backend/internal/domain/settlement"
	"github.com/crosslist/backend/internal/domain/shared"
)

func newPendingPayout(t *testing.T, sellerID uuid.UUID, amount float64) *settlement.PayoutRequest {
	t.Helper()
	p, err := settlement.NewPayoutRequest(sellerID, decimal.NewFromFloat(amount))
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func TestGormPayoutReserver_ReservePayout(t *testing.T) {
	db := setupSettlementTestDB(t)
	settlements := NewGormSettlementRepository(db)
	payouts := NewGormPayoutRepository(db)
	reserver := NewGormPayoutReserver(db, settlement.DefaultMinimumPayout)
	ctx := context.Background()

	sellerID := uuid.New()

	// Completed settlement with net 85.00 funds the seller.
	stl := newTestSettlement(t, sellerID, 100.00, 15.00)
	require.NoError(t, stl.Complete(time.Now()))
	require.NoError(t, settlements.Save(ctx, stl))

	t.Run("reserves a payout within the balance", func(t *testing.T) {
		p := newPendingPayout(t, sellerID, 50.00)
		require.NoError(t, reserver.ReservePayout(ctx, p))

		found, err := payouts.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, settlement.PayoutStatusPending, found.Status)
	})

	t.Run("the reservation counts against the next request", func(t *testing.T) {
		// 35.00 left after the first reservation; even the minimum no
		// longer fits.
		err := reserver.ReservePayout(ctx, newPendingPayout(t, sellerID, 50.00))
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)

		_, total, err := payouts.FindBySeller(ctx, sellerID, settlement.PayoutFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("threshold check comes before the balance check", func(t *testing.T) {
		err := reserver.ReservePayout(ctx, newPendingPayout(t, uuid.New(), 49.99))
		assert.ErrorIs(t, err, shared.ErrBelowMinimumPayout)
	})

	t.Run("rejecting a payout frees the funds again", func(t *testing.T) {
		found, _, err := payouts.FindBySeller(ctx, sellerID, settlement.PayoutFilter{})
		require.NoError(t, err)
		require.Len(t, found, 1)

		rejected := found[0]
		require.NoError(t, rejected.Reject("manual review failed", time.Now()))
		require.NoError(t, payouts.Save(ctx, &rejected))

		require.NoError(t, reserver.ReservePayout(ctx, newPendingPayout(t, sellerID, 85.00)))
	})
}

func TestGormPayoutReserver_SerializesPerSeller(t *testing.T) {
	// On postgres the balance check and the insert run behind a
	// per-seller advisory lock taken before anything else in the
	// transaction.
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	reserver := NewGormPayoutReserver(gormDB, settlement.DefaultMinimumPayout)

	sumRow := func(total string) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"total"}).AddRow(total)
	}

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(gross_amount - fees - shipping_cost\), 0\) as total FROM "settlements"`).
		WillReturnRows(sumRow("40.00"))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(gross_amount - fees - shipping_cost\), 0\) as total FROM "settlements"`).
		WillReturnRows(sumRow("0"))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) as total FROM "payout_requests"`).
		WillReturnRows(sumRow("0"))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) as total FROM "payout_requests"`).
		WillReturnRows(sumRow("0"))
	mock.ExpectRollback()

	err = reserver.ReservePayout(context.Background(), newPendingPayout(t, uuid.New(), 50.00))
	assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}
