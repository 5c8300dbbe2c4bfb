package settlement

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/domain/shared"
)

// DefaultMinimumPayout is the payout threshold applied when none is configured
var DefaultMinimumPayout = decimal.NewFromInt(50)

// Balance is a seller's ledger position, always recomputed from the
// source settlement and payout records, never cached.
type Balance struct {
	// Available is completed settlement proceeds minus all non-rejected
	// payout requests
	Available decimal.Decimal `json:"available"`
	// Pending is the net amount of settlements not yet completed
	Pending decimal.Decimal `json:"pending"`
	// PaidOut is the total of completed payout requests
	PaidOut decimal.Decimal `json:"paid_out"`
}

// LedgerService computes seller balances and validates payout requests.
// It is a domain service: it owns the no-double-pay invariant but holds
// no state of its own.
type LedgerService struct {
	settlements   SettlementRepository
	payouts       PayoutRepository
	minimumPayout decimal.Decimal
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(settlements SettlementRepository, payouts PayoutRepository, minimumPayout decimal.Decimal) *LedgerService {
	if minimumPayout.LessThanOrEqual(decimal.Zero) {
		minimumPayout = DefaultMinimumPayout
	}
	return &LedgerService{
		settlements:   settlements,
		payouts:       payouts,
		minimumPayout: minimumPayout,
	}
}

// MinimumPayout returns the configured payout threshold
func (s *LedgerService) MinimumPayout() decimal.Decimal {
	return s.minimumPayout
}

// BalanceFor computes the seller's balance from source records:
// available = Σ completed settlement net − Σ (pending + completed) payouts
func (s *LedgerService) BalanceFor(ctx context.Context, sellerID uuid.UUID) (*Balance, error) {
	completedNet, err := s.settlements.SumCompletedNetBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	pendingNet, err := s.settlements.SumPendingNetBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	reserved, err := s.payouts.SumReservedBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	paidOut, err := s.payouts.SumCompletedBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	return &Balance{
		Available: completedNet.Sub(reserved),
		Pending:   pendingNet,
		PaidOut:   paidOut,
	}, nil
}

// ValidatePayout checks a requested payout amount against the threshold
// and the seller's available balance, in that order. A request that
// would drive the available balance negative is rejected.
func (s *LedgerService) ValidatePayout(ctx context.Context, sellerID uuid.UUID, amount decimal.Decimal) error {
	if amount.LessThan(s.minimumPayout) {
		return shared.ErrBelowMinimumPayout
	}

	balance, err := s.BalanceFor(ctx, sellerID)
	if err != nil {
		return err
	}
	if amount.GreaterThan(balance.Available) {
		return shared.ErrInsufficientBalance
	}

	return nil
}
