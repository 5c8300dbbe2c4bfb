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

	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/settlement"
	"github.com/crosslist/backend/internal/domain/shared"
	"github.com/crosslist/backend/internal/infrastructure/persistence/models"
)

func setupSettlerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.ListingModel{},
		&models.PublicationModel{},
		&models.SettlementModel{},
	)
	require.NoError(t, err)

	return db
}

func saleAmounts(gross, fees float64) settlement.SaleAmounts {
	return settlement.SaleAmounts{
		Gross:        decimal.NewFromFloat(gross),
		Fees:         decimal.NewFromFloat(fees),
		ShippingCost: decimal.Zero,
	}
}

func TestGormSettler_SettleListing(t *testing.T) {
	ctx := context.Background()

	t.Run("flips the listing and records the settlement", func(t *testing.T) {
		db := setupSettlerTestDB(t)
		listings := NewGormListingRepository(db)
		settlements := NewGormSettlementRepository(db)
		settler := NewGormSettler(db)

		l := newPublishedListing(t, uuid.New(), 90.00)
		require.NoError(t, listings.Save(ctx, l))

		soldAt := time.Now()
		stl, err := settler.SettleListing(ctx, l, marketplace.ChannelCodeEbay, saleAmounts(90.00, 11.70), soldAt)
		require.NoError(t, err)
		require.NotNil(t, stl)
		assert.True(t, stl.NetAmount().Equal(decimal.NewFromFloat(78.30)))

		// The event for downstream consumers is on the aggregate.
		events := l.GetDomainEvents()
		require.NotEmpty(t, events)

		found, err := listings.FindByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, listing.ListingStatusSold, found.Status)
		require.NotNil(t, found.SoldChannel)
		assert.Equal(t, marketplace.ChannelCodeEbay, *found.SoldChannel)
		assert.NotNil(t, found.SoldAt)

		persisted, err := settlements.FindByListingID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, stl.ID, persisted.ID)
		assert.Equal(t, settlement.SettlementStatusPending, persisted.Status)
	})

	t.Run("second worker gets already exists and writes nothing", func(t *testing.T) {
		db := setupSettlerTestDB(t)
		listings := NewGormListingRepository(db)
		settler := NewGormSettler(db)

		l := newPublishedListing(t, uuid.New(), 90.00)
		require.NoError(t, listings.Save(ctx, l))

		// Both workers loaded the listing while it was still active.
		stale, err := listings.FindByID(ctx, l.ID)
		require.NoError(t, err)

		_, err = settler.SettleListing(ctx, l, marketplace.ChannelCodeEbay, saleAmounts(90.00, 0), time.Now())
		require.NoError(t, err)

		stl, err := settler.SettleListing(ctx, stale, marketplace.ChannelCodeEbay, saleAmounts(90.00, 0), time.Now())
		assert.Nil(t, stl)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		var count int64
		require.NoError(t, db.Model(&models.SettlementModel{}).Where("listing_id = ?", l.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("listing gone non-active without a settlement is a conflict", func(t *testing.T) {
		db := setupSettlerTestDB(t)
		listings := NewGormListingRepository(db)
		settler := NewGormSettler(db)

		l := newPublishedListing(t, uuid.New(), 90.00)
		require.NoError(t, listings.Save(ctx, l))

		stale, err := listings.FindByID(ctx, l.ID)
		require.NoError(t, err)

		// The seller removed the listing before the reconcile pass landed.
		require.NoError(t, l.Remove(time.Now()))
		require.NoError(t, listings.UpdateStatusIfActive(ctx, l))

		stl, err := settler.SettleListing(ctx, stale, marketplace.ChannelCodeEbay, saleAmounts(90.00, 0), time.Now())
		assert.Nil(t, stl)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		found, err := listings.FindByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, listing.ListingStatusRemoved, found.Status)
	})

	t.Run("rejects a channel the listing is not published to", func(t *testing.T) {
		db := setupSettlerTestDB(t)
		listings := NewGormListingRepository(db)
		settler := NewGormSettler(db)

		l := newPublishedListing(t, uuid.New(), 90.00)
		require.NoError(t, listings.Save(ctx, l))

		stl, err := settler.SettleListing(ctx, l, marketplace.ChannelCodeMercari, saleAmounts(90.00, 0), time.Now())
		assert.Nil(t, stl)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CHANNEL", domainErr.Code)
	})
}
