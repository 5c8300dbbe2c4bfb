package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/settlement"
	"github.com/crosslist/backend/internal/domain/shared"
	"github.com/crosslist/backend/internal/infrastructure/persistence/models"
)

func setupSettlementTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.SettlementModel{}, &models.PayoutModel{})
	require.NoError(t, err)

	return db
}

func newTestSettlement(t *testing.T, sellerID uuid.UUID, gross, fees float64) *settlement.Settlement {
	t.Helper()
	s, err := settlement.NewSettlement(sellerID, uuid.New(),
		decimal.NewFromFloat(gross), decimal.NewFromFloat(fees), decimal.Zero,
		marketplace.ChannelCodeEbay)
	require.NoError(t, err)
	s.ClearDomainEvents()
	return s
}

func TestGormSettlementRepository_Save(t *testing.T) {
	db := setupSettlementTestDB(t)
	repo := NewGormSettlementRepository(db)
	ctx := context.Background()

	t.Run("round trips a settlement", func(t *testing.T) {
		sellerID := uuid.New()
		s := newTestSettlement(t, sellerID, 100.00, 13.00)
		require.NoError(t, repo.Save(ctx, s))

		found, err := repo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, sellerID, found.SellerID)
		assert.Equal(t, s.ListingID, found.ListingID)
		assert.True(t, found.GrossAmount.Equal(decimal.NewFromFloat(100.00)))
		assert.True(t, found.NetAmount().Equal(decimal.NewFromFloat(87.00)))
		assert.Equal(t, settlement.SettlementStatusPending, found.Status)
	})

	t.Run("second settlement for the same listing is rejected", func(t *testing.T) {
		s := newTestSettlement(t, uuid.New(), 100.00, 0)
		require.NoError(t, repo.Save(ctx, s))

		dup, err := settlement.NewSettlement(s.SellerID, s.ListingID,
			decimal.NewFromFloat(100.00), decimal.Zero, decimal.Zero,
			marketplace.ChannelCodeMercari)
		require.NoError(t, err)

		err = repo.Save(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("updating an existing settlement is allowed", func(t *testing.T) {
		s := newTestSettlement(t, uuid.New(), 100.00, 0)
		require.NoError(t, repo.Save(ctx, s))

		require.NoError(t, s.Complete(time.Now()))
		require.NoError(t, repo.Save(ctx, s))

		found, err := repo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, settlement.SettlementStatusCompleted, found.Status)
		assert.NotNil(t, found.CompletedAt)
	})
}

func TestGormSettlementRepository_FindByListingID(t *testing.T) {
	db := setupSettlementTestDB(t)
	repo := NewGormSettlementRepository(db)
	ctx := context.Background()

	s := newTestSettlement(t, uuid.New(), 100.00, 0)
	require.NoError(t, repo.Save(ctx, s))

	found, err := repo.FindByListingID(ctx, s.ListingID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, found.ID)

	_, err = repo.FindByListingID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	exists, err := repo.ExistsForListing(ctx, s.ListingID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsForListing(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormSettlementRepository_FindBySeller(t *testing.T) {
	db := setupSettlementTestDB(t)
	repo := NewGormSettlementRepository(db)
	ctx := context.Background()

	sellerID := uuid.New()
	completed := newTestSettlement(t, sellerID, 100.00, 0)
	require.NoError(t, completed.Complete(time.Now()))
	require.NoError(t, repo.Save(ctx, completed))
	require.NoError(t, repo.Save(ctx, newTestSettlement(t, sellerID, 50.00, 0)))
	require.NoError(t, repo.Save(ctx, newTestSettlement(t, uuid.New(), 75.00, 0)))

	found, total, err := repo.FindBySeller(ctx, sellerID, settlement.SettlementFilter{Filter: shared.DefaultFilter()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, found, 2)

	status := settlement.SettlementStatusCompleted
	found, total, err = repo.FindBySeller(ctx, sellerID, settlement.SettlementFilter{Filter: shared.DefaultFilter(), Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, found, 1)
	assert.Equal(t, completed.ID, found[0].ID)
}

func TestGormSettlementRepository_Sums(t *testing.T) {
	db := setupSettlementTestDB(t)
	repo := NewGormSettlementRepository(db)
	ctx := context.Background()

	sellerID := uuid.New()

	// Completed: net 87.00 and 45.00. Pending: net 30.00.
	first := newTestSettlement(t, sellerID, 100.00, 13.00)
	require.NoError(t, first.Complete(time.Now()))
	require.NoError(t, repo.Save(ctx, first))

	second := newTestSettlement(t, sellerID, 50.00, 5.00)
	require.NoError(t, second.Complete(time.Now()))
	require.NoError(t, repo.Save(ctx, second))

	require.NoError(t, repo.Save(ctx, newTestSettlement(t, sellerID, 30.00, 0)))

	// Another seller's settlements stay out of the sums.
	other := newTestSettlement(t, uuid.New(), 500.00, 0)
	require.NoError(t, other.Complete(time.Now()))
	require.NoError(t, repo.Save(ctx, other))

	completedNet, err := repo.SumCompletedNetBySeller(ctx, sellerID)
	require.NoError(t, err)
	assert.True(t, completedNet.Equal(decimal.NewFromFloat(132.00)), "got %s", completedNet)

	pendingNet, err := repo.SumPendingNetBySeller(ctx, sellerID)
	require.NoError(t, err)
	assert.True(t, pendingNet.Equal(decimal.NewFromFloat(30.00)), "got %s", pendingNet)

	t.Run("empty seller sums to zero", func(t *testing.T) {
		sum, err := repo.SumCompletedNetBySeller(ctx, uuid.New())
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})
}

func TestGormPayoutRepository(t *testing.T) {
	db := setupSettlementTestDB(t)
	repo := NewGormPayoutRepository(db)
	ctx := context.Background()

	newPayout := func(t *testing.T, sellerID uuid.UUID, amount float64) *settlement.PayoutRequest {
		t.Helper()
		p, err := settlement.NewPayoutRequest(sellerID, decimal.NewFromFloat(amount))
		require.NoError(t, err)
		p.ClearDomainEvents()
		return p
	}

	t.Run("round trips a payout request", func(t *testing.T) {
		sellerID := uuid.New()
		p := newPayout(t, sellerID, 75.00)
		require.NoError(t, repo.Save(ctx, p))

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, sellerID, found.SellerID)
		assert.True(t, found.Amount.Equal(decimal.NewFromFloat(75.00)))
		assert.Equal(t, settlement.PayoutStatusPending, found.Status)
	})

	t.Run("persists a rejection", func(t *testing.T) {
		p := newPayout(t, uuid.New(), 60.00)
		require.NoError(t, repo.Save(ctx, p))

		require.NoError(t, p.Reject("insufficient balance", time.Now()))
		require.NoError(t, repo.Save(ctx, p))

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, settlement.PayoutStatusRejected, found.Status)
		assert.Equal(t, "insufficient balance", found.RejectReason)
		assert.NotNil(t, found.RejectedAt)
	})

	t.Run("reserved sum counts pending and completed but not rejected", func(t *testing.T) {
		sellerID := uuid.New()

		pending := newPayout(t, sellerID, 50.00)
		require.NoError(t, repo.Save(ctx, pending))

		completed := newPayout(t, sellerID, 70.00)
		require.NoError(t, completed.Complete(time.Now()))
		require.NoError(t, repo.Save(ctx, completed))

		rejected := newPayout(t, sellerID, 90.00)
		require.NoError(t, rejected.Reject("no funds", time.Now()))
		require.NoError(t, repo.Save(ctx, rejected))

		reserved, err := repo.SumReservedBySeller(ctx, sellerID)
		require.NoError(t, err)
		assert.True(t, reserved.Equal(decimal.NewFromFloat(120.00)), "got %s", reserved)

		completedSum, err := repo.SumCompletedBySeller(ctx, sellerID)
		require.NoError(t, err)
		assert.True(t, completedSum.Equal(decimal.NewFromFloat(70.00)), "got %s", completedSum)
	})

	t.Run("filters by status per seller", func(t *testing.T) {
		sellerID := uuid.New()
		require.NoError(t, repo.Save(ctx, newPayout(t, sellerID, 55.00)))
		completed := newPayout(t, sellerID, 65.00)
		require.NoError(t, completed.Complete(time.Now()))
		require.NoError(t, repo.Save(ctx, completed))

		status := settlement.PayoutStatusPending
		found, total, err := repo.FindBySeller(ctx, sellerID, settlement.PayoutFilter{Filter: shared.DefaultFilter(), Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, found, 1)
		assert.True(t, found[0].Amount.Equal(decimal.NewFromFloat(55.00)))
	})
}
