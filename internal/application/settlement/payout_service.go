package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/domain/settlement"
	"github.com/crosslist/backend/internal/domain/shared"
)

// PayoutService handles seller balances, payout requests and settlement
// promotion. The available balance is always recomputed from source
// records, so rejecting a payout releases its reservation implicitly.
type PayoutService struct {
	settlementRepo settlement.SettlementRepository
	payoutRepo     settlement.PayoutRepository
	reserver       settlement.PayoutReserver
	ledger         *settlement.LedgerService
	publisher      shared.EventPublisher
	logger         *zap.Logger
}

// NewPayoutService creates a new PayoutService
func NewPayoutService(
	settlementRepo settlement.SettlementRepository,
	payoutRepo settlement.PayoutRepository,
	reserver settlement.PayoutReserver,
	ledger *settlement.LedgerService,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PayoutService {
	return &PayoutService{
		settlementRepo: settlementRepo,
		payoutRepo:     payoutRepo,
		reserver:       reserver,
		ledger:         ledger,
		publisher:      publisher,
		logger:         logger,
	}
}

// GetBalance returns the seller's current ledger position
func (s *PayoutService) GetBalance(ctx context.Context, sellerID uuid.UUID) (*BalanceResponse, error) {
	balance, err := s.ledger.BalanceFor(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{
		SellerID:  sellerID,
		Available: balance.Available,
		Pending:   balance.Pending,
		PaidOut:   balance.PaidOut,
	}, nil
}

// RequestPayout validates and creates a PENDING payout request. The
// threshold check runs before the balance check; validation errors are
// the only user-visible failures. Validation and insert happen as one
// atomic reservation, so racing requests cannot overdraw the balance.
func (s *PayoutService) RequestPayout(ctx context.Context, req RequestPayoutRequest) (*PayoutResponse, error) {
	payout, err := settlement.NewPayoutRequest(req.SellerID, req.Amount)
	if err != nil {
		return nil, err
	}

	if err := s.reserver.ReservePayout(ctx, payout); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, payout.GetDomainEvents())
	payout.ClearDomainEvents()

	s.logger.Info("payout requested",
		zap.String("payout_id", payout.ID.String()),
		zap.String("seller_id", req.SellerID.String()),
		zap.String("amount", req.Amount.StringFixed(2)),
	)

	resp := ToPayoutResponse(payout)
	return &resp, nil
}

// CompletePayout marks a pending payout as paid
func (s *PayoutService) CompletePayout(ctx context.Context, id uuid.UUID) (*PayoutResponse, error) {
	payout, err := s.payoutRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := payout.Complete(time.Now()); err != nil {
		return nil, err
	}

	if err := s.payoutRepo.Save(ctx, payout); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, payout.GetDomainEvents())
	payout.ClearDomainEvents()

	resp := ToPayoutResponse(payout)
	return &resp, nil
}

// RejectPayout rejects a pending payout. The reserved amount flows back
// into the available balance on the next computation.
func (s *PayoutService) RejectPayout(ctx context.Context, id uuid.UUID, req RejectPayoutRequest) (*PayoutResponse, error) {
	payout, err := s.payoutRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := payout.Reject(req.Reason, time.Now()); err != nil {
		return nil, err
	}

	if err := s.payoutRepo.Save(ctx, payout); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, payout.GetDomainEvents())
	payout.ClearDomainEvents()

	resp := ToPayoutResponse(payout)
	return &resp, nil
}

// ListPayouts returns a seller's payout requests
func (s *PayoutService) ListPayouts(ctx context.Context, sellerID uuid.UUID, filter settlement.PayoutFilter) (*shared.Paginated[PayoutResponse], error) {
	if filter.Page <= 0 {
		filter.Page = shared.DefaultFilter().Page
	}
	if filter.PageSize <= 0 {
		filter.PageSize = shared.DefaultFilter().PageSize
	}

	payouts, total, err := s.payoutRepo.FindBySeller(ctx, sellerID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]PayoutResponse, 0, len(payouts))
	for idx := range payouts {
		items = append(items, ToPayoutResponse(&payouts[idx]))
	}

	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// CompleteSettlement promotes a settlement from PENDING to COMPLETED,
// releasing its net amount into the seller's available balance
func (s *PayoutService) CompleteSettlement(ctx context.Context, id uuid.UUID) (*SettlementResponse, error) {
	stl, err := s.settlementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := stl.Complete(time.Now()); err != nil {
		return nil, err
	}

	if err := s.settlementRepo.Save(ctx, stl); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, stl.GetDomainEvents())
	stl.ClearDomainEvents()

	resp := ToSettlementResponse(stl)
	return &resp, nil
}

// ListSettlements returns a seller's settlements
func (s *PayoutService) ListSettlements(ctx context.Context, sellerID uuid.UUID, filter settlement.SettlementFilter) (*shared.Paginated[SettlementResponse], error) {
	if filter.Page <= 0 {
		filter.Page = shared.DefaultFilter().Page
	}
	if filter.PageSize <= 0 {
		filter.PageSize = shared.DefaultFilter().PageSize
	}

	settlements, total, err := s.settlementRepo.FindBySeller(ctx, sellerID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]SettlementResponse, 0, len(settlements))
	for idx := range settlements {
		items = append(items, ToSettlementResponse(&settlements[idx]))
	}

	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

func (s *PayoutService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}
