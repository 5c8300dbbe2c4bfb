package settlement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/shared"
)

func createTestSettlement(t *testing.T, gross, fees, shipping float64) *Settlement {
	s, err := NewSettlement(uuid.New(), uuid.New(),
		decimal.NewFromFloat(gross), decimal.NewFromFloat(fees), decimal.NewFromFloat(shipping),
		marketplace.ChannelCodeEbay)
	require.NoError(t, err)
	return s
}

// ============================================
// SettlementStatus Tests
// ============================================

func TestSettlementStatus_IsValid(t *testing.T) {
	assert.True(t, SettlementStatusPending.IsValid())
	assert.True(t, SettlementStatusCompleted.IsValid())
	assert.False(t, SettlementStatus("CANCELLED").IsValid())
	assert.False(t, SettlementStatus("").IsValid())
}

// ============================================
// NewSettlement Tests
// ============================================

func TestNewSettlement(t *testing.T) {
	sellerID := uuid.New()
	listingID := uuid.New()

	t.Run("creates pending settlement", func(t *testing.T) {
		s, err := NewSettlement(sellerID, listingID,
			decimal.NewFromInt(100), decimal.NewFromInt(10), decimal.NewFromInt(5),
			marketplace.ChannelCodeEtsy)
		require.NoError(t, err)

		assert.Equal(t, sellerID, s.SellerID)
		assert.Equal(t, listingID, s.ListingID)
		assert.Equal(t, SettlementStatusPending, s.Status)
		assert.Equal(t, marketplace.ChannelCodeEtsy, s.Channel)
		assert.Nil(t, s.CompletedAt)
		require.Len(t, s.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeSettlementCreated, s.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects empty listing", func(t *testing.T) {
		_, err := NewSettlement(sellerID, uuid.Nil,
			decimal.NewFromInt(100), decimal.Zero, decimal.Zero, marketplace.ChannelCodeEbay)
		require.Error(t, err)
		assert.Equal(t, "INVALID_LISTING", err.(*shared.DomainError).Code)
	})

	t.Run("rejects non-positive gross amount", func(t *testing.T) {
		_, err := NewSettlement(sellerID, listingID,
			decimal.Zero, decimal.Zero, decimal.Zero, marketplace.ChannelCodeEbay)
		require.Error(t, err)
		assert.Equal(t, "INVALID_AMOUNT", err.(*shared.DomainError).Code)
	})

	t.Run("rejects negative fees", func(t *testing.T) {
		_, err := NewSettlement(sellerID, listingID,
			decimal.NewFromInt(100), decimal.NewFromInt(-1), decimal.Zero, marketplace.ChannelCodeEbay)
		require.Error(t, err)
		assert.Equal(t, "INVALID_FEES", err.(*shared.DomainError).Code)
	})
}

// ============================================
// Settlement Behavior Tests
// ============================================

func TestSettlement_NetAmount(t *testing.T) {
	s := createTestSettlement(t, 100, 12.50, 7.25)
	assert.Equal(t, "80.25", s.NetAmount().StringFixed(2))
}

func TestSettlement_Complete(t *testing.T) {
	t.Run("completes a pending settlement", func(t *testing.T) {
		s := createTestSettlement(t, 100, 10, 5)
		now := time.Now()

		require.NoError(t, s.Complete(now))
		assert.Equal(t, SettlementStatusCompleted, s.Status)
		require.NotNil(t, s.CompletedAt)
		assert.Equal(t, now, *s.CompletedAt)
		assert.True(t, s.IsCompleted())
	})

	t.Run("rejects double completion", func(t *testing.T) {
		s := createTestSettlement(t, 100, 10, 5)
		require.NoError(t, s.Complete(time.Now()))
		require.Error(t, s.Complete(time.Now()))
	})
}

// ============================================
// PayoutRequest Tests
// ============================================

func TestNewPayoutRequest(t *testing.T) {
	sellerID := uuid.New()

	t.Run("creates pending payout", func(t *testing.T) {
		p, err := NewPayoutRequest(sellerID, decimal.NewFromInt(50))
		require.NoError(t, err)

		assert.Equal(t, sellerID, p.SellerID)
		assert.Equal(t, PayoutStatusPending, p.Status)
		assert.True(t, p.IsPending())
		assert.True(t, p.ReservesBalance())
		require.Len(t, p.GetDomainEvents(), 1)
		assert.Equal(t, EventTypePayoutRequested, p.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects empty seller", func(t *testing.T) {
		_, err := NewPayoutRequest(uuid.Nil, decimal.NewFromInt(50))
		require.Error(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewPayoutRequest(sellerID, decimal.Zero)
		require.Error(t, err)
		assert.Equal(t, "INVALID_AMOUNT", err.(*shared.DomainError).Code)
	})
}

func TestPayoutRequest_Complete(t *testing.T) {
	p, err := NewPayoutRequest(uuid.New(), decimal.NewFromInt(75))
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, p.Complete(now))
	assert.Equal(t, PayoutStatusCompleted, p.Status)
	require.NotNil(t, p.CompletedAt)
	assert.True(t, p.ReservesBalance())

	require.Error(t, p.Complete(time.Now()))
}

func TestPayoutRequest_Reject(t *testing.T) {
	p, err := NewPayoutRequest(uuid.New(), decimal.NewFromInt(75))
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, p.Reject("insufficient balance", now))
	assert.Equal(t, PayoutStatusRejected, p.Status)
	assert.Equal(t, "insufficient balance", p.RejectReason)
	require.NotNil(t, p.RejectedAt)
	assert.False(t, p.ReservesBalance())

	require.Error(t, p.Complete(time.Now()))
	require.Error(t, p.Reject("again", time.Now()))
}
