package settlement

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/settlement"
	"github.com/crosslist/backend/internal/domain/shared"
)

// Mock repositories

type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Settlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) FindByListingID(ctx context.Context, listingID uuid.UUID) (*settlement.Settlement, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) ExistsForListing(ctx context.Context, listingID uuid.UUID) (bool, error) {
	args := m.Called(ctx, listingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettlementRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter settlement.SettlementFilter) ([]settlement.Settlement, int64, error) {
	args := m.Called(ctx, sellerID, filter)
	return args.Get(0).([]settlement.Settlement), args.Get(1).(int64), args.Error(2)
}

func (m *MockSettlementRepository) SumCompletedNetBySeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSettlementRepository) SumPendingNetBySeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSettlementRepository) Save(ctx context.Context, s *settlement.Settlement) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.PayoutRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.PayoutRequest), args.Error(1)
}

func (m *MockPayoutRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter settlement.PayoutFilter) ([]settlement.PayoutRequest, int64, error) {
	args := m.Called(ctx, sellerID, filter)
	return args.Get(0).([]settlement.PayoutRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockPayoutRepository) SumReservedBySeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPayoutRepository) SumCompletedBySeller(ctx context.Context, sellerID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPayoutRepository) Save(ctx context.Context, p *settlement.PayoutRequest) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// Test helpers

// ledgerBackedReserver mirrors the transactional reserver: validate
// against the ledger, then persist. The serialization itself is covered
// by the persistence tests.
type ledgerBackedReserver struct {
	ledger  *settlement.LedgerService
	payouts settlement.PayoutRepository
}

func (r *ledgerBackedReserver) ReservePayout(ctx context.Context, p *settlement.PayoutRequest) error {
	if err := r.ledger.ValidatePayout(ctx, p.SellerID, p.Amount); err != nil {
		return err
	}
	return r.payouts.Save(ctx, p)
}

func newPayoutService(settlements *MockSettlementRepository, payouts *MockPayoutRepository) *PayoutService {
	ledger := settlement.NewLedgerService(settlements, payouts, settlement.DefaultMinimumPayout)
	reserver := &ledgerBackedReserver{ledger: ledger, payouts: payouts}
	return NewPayoutService(settlements, payouts, reserver, ledger, nil, zap.NewNop())
}

func stubBalance(settlements *MockSettlementRepository, payouts *MockPayoutRepository, completedNet, pendingNet, reserved, paidOut float64) {
	settlements.On("SumCompletedNetBySeller", mock.Anything, mock.Anything).Return(decimal.NewFromFloat(completedNet), nil)
	settlements.On("SumPendingNetBySeller", mock.Anything, mock.Anything).Return(decimal.NewFromFloat(pendingNet), nil)
	payouts.On("SumReservedBySeller", mock.Anything, mock.Anything).Return(decimal.NewFromFloat(reserved), nil)
	payouts.On("SumCompletedBySeller", mock.Anything, mock.Anything).Return(decimal.NewFromFloat(paidOut), nil)
}

// ============================================
// Balance and Payout Tests
// ============================================

func TestPayoutService_GetBalance(t *testing.T) {
	settlements := new(MockSettlementRepository)
	payouts := new(MockPayoutRepository)
	stubBalance(settlements, payouts, 135, 20, 50, 0)

	resp, err := newPayoutService(settlements, payouts).GetBalance(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "85.00", resp.Available.StringFixed(2))
	assert.Equal(t, "20.00", resp.Pending.StringFixed(2))
}

func TestPayoutService_RequestPayout(t *testing.T) {
	sellerID := uuid.New()

	t.Run("accepts a payout within the available balance", func(t *testing.T) {
		settlements := new(MockSettlementRepository)
		payouts := new(MockPayoutRepository)
		stubBalance(settlements, payouts, 85, 0, 0, 0)
		payouts.On("Save", mock.Anything, mock.Anything).Return(nil)

		resp, err := newPayoutService(settlements, payouts).RequestPayout(context.Background(), RequestPayoutRequest{
			SellerID: sellerID,
			Amount:   decimal.NewFromInt(50),
		})
		require.NoError(t, err)
		assert.Equal(t, settlement.PayoutStatusPending.String(), resp.Status)
		assert.Equal(t, "50.00", resp.Amount.StringFixed(2))
	})

	t.Run("rejects a second payout once the first reserves the balance", func(t *testing.T) {
		// 85 available before the first payout; a pending 50 leaves 35
		settlements := new(MockSettlementRepository)
		payouts := new(MockPayoutRepository)
		stubBalance(settlements, payouts, 85, 0, 50, 0)

		_, err := newPayoutService(settlements, payouts).RequestPayout(context.Background(), RequestPayoutRequest{
			SellerID: sellerID,
			Amount:   decimal.NewFromInt(50),
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientBalance)
		payouts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects a payout below the threshold before checking balance", func(t *testing.T) {
		settlements := new(MockSettlementRepository)
		payouts := new(MockPayoutRepository)
		stubBalance(settlements, payouts, 1000, 0, 0, 0)

		_, err := newPayoutService(settlements, payouts).RequestPayout(context.Background(), RequestPayoutRequest{
			SellerID: sellerID,
			Amount:   decimal.NewFromFloat(49.99),
		})
		assert.ErrorIs(t, err, shared.ErrBelowMinimumPayout)
	})
}

func TestPayoutService_CompletePayout(t *testing.T) {
	settlements := new(MockSettlementRepository)
	payouts := new(MockPayoutRepository)

	p, err := settlement.NewPayoutRequest(uuid.New(), decimal.NewFromInt(60))
	require.NoError(t, err)
	p.ClearDomainEvents()

	payouts.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	payouts.On("Save", mock.Anything, p).Return(nil)

	resp, err := newPayoutService(settlements, payouts).CompletePayout(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, settlement.PayoutStatusCompleted.String(), resp.Status)
	assert.NotNil(t, resp.CompletedAt)
}

func TestPayoutService_RejectPayout(t *testing.T) {
	settlements := new(MockSettlementRepository)
	payouts := new(MockPayoutRepository)

	p, err := settlement.NewPayoutRequest(uuid.New(), decimal.NewFromInt(60))
	require.NoError(t, err)
	p.ClearDomainEvents()

	payouts.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	payouts.On("Save", mock.Anything, p).Return(nil)

	resp, err := newPayoutService(settlements, payouts).RejectPayout(context.Background(), p.ID, RejectPayoutRequest{
		Reason: "manual review failed",
	})
	require.NoError(t, err)
	assert.Equal(t, settlement.PayoutStatusRejected.String(), resp.Status)
	assert.Equal(t, "manual review failed", resp.RejectReason)
}

func TestPayoutService_CompleteSettlement(t *testing.T) {
	settlements := new(MockSettlementRepository)
	payouts := new(MockPayoutRepository)

	stl, err := settlement.NewSettlement(uuid.New(), uuid.New(),
		decimal.NewFromInt(100), decimal.NewFromInt(10), decimal.NewFromInt(5),
		marketplace.ChannelCodeDepop)
	require.NoError(t, err)
	stl.ClearDomainEvents()

	settlements.On("FindByID", mock.Anything, stl.ID).Return(stl, nil)
	settlements.On("Save", mock.Anything, stl).Return(nil)

	resp, err := newPayoutService(settlements, payouts).CompleteSettlement(context.Background(), stl.ID)
	require.NoError(t, err)
	assert.Equal(t, settlement.SettlementStatusCompleted.String(), resp.Status)
	assert.Equal(t, "85.00", resp.NetAmount.StringFixed(2))

	t.Run("second completion fails", func(t *testing.T) {
		_, err := newPayoutService(settlements, payouts).CompleteSettlement(context.Background(), stl.ID)
		require.Error(t, err)
	})
}
