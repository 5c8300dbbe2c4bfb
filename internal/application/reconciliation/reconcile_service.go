package reconciliation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/settlement"
	"github.com/crosslist/backend/internal/domain/shared"
)

// ReconcileConfig holds the tunables of the sold reconciliation engine
type ReconcileConfig struct {
	// BatchSize caps the listings polled per run
	BatchSize int
	// MaxParallel bounds the number of listings polled concurrently
	MaxParallel int
	// FeeRates maps a channel to the fraction of the sale price it keeps.
	// Missing channels settle with zero fees.
	FeeRates map[marketplace.ChannelCode]decimal.Decimal
}

// DefaultReconcileConfig returns the standard reconciliation settings
func DefaultReconcileConfig() ReconcileConfig {
	return ReconcileConfig{
		BatchSize:   500,
		MaxParallel: 4,
	}
}

// RunSummary aggregates the outcome of one reconciliation pass
type RunSummary struct {
	Polled         int
	Settled        int
	AlreadySettled int
	NoSignal       int
	Failed         int
	StartedAt      time.Time
	Duration       time.Duration
}

// ReconcileService is the sold reconciliation engine. Each pass polls
// every active published listing against its channels in the configured
// priority order. The first channel reporting a sale wins the
// attribution; the remaining channels are not consulted. A channel error
// is no signal, never a negative answer, so the listing simply stays
// active until a later pass gets a definitive read.
type ReconcileService struct {
	listingRepo listing.ListingRepository
	settler     settlement.Settler
	channels    marketplace.Registry
	publisher   shared.EventPublisher
	config      ReconcileConfig
	logger      *zap.Logger
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(
	listingRepo listing.ListingRepository,
	settler settlement.Settler,
	channels marketplace.Registry,
	publisher shared.EventPublisher,
	config ReconcileConfig,
	logger *zap.Logger,
) *ReconcileService {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultReconcileConfig().BatchSize
	}
	if config.MaxParallel <= 0 {
		config.MaxParallel = DefaultReconcileConfig().MaxParallel
	}
	return &ReconcileService{
		listingRepo: listingRepo,
		settler:     settler,
		channels:    channels,
		publisher:   publisher,
		config:      config,
		logger:      logger,
	}
}

// Run executes one reconciliation pass. Per-listing failures are
// isolated and retried next pass.
func (s *ReconcileService) Run(ctx context.Context) (*RunSummary, error) {
	started := time.Now()

	listings, err := s.listingRepo.FindActivePublished(ctx, s.config.BatchSize)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{
		Polled:    len(listings),
		StartedAt: started,
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.config.MaxParallel)
	)

	for idx := range listings {
		select {
		case <-ctx.Done():
			wg.Wait()
			summary.Duration = time.Since(started)
			return summary, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(l *listing.Listing) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := s.reconcileOne(ctx, l)

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeSettled:
				summary.Settled++
			case outcomeAlreadySettled:
				summary.AlreadySettled++
			case outcomeNoSignal:
				summary.NoSignal++
			case outcomeFailed:
				summary.Failed++
			}
		}(&listings[idx])
	}

	wg.Wait()
	summary.Duration = time.Since(started)

	s.logger.Info("reconciliation pass completed",
		zap.Int("polled", summary.Polled),
		zap.Int("settled", summary.Settled),
		zap.Int("already_settled", summary.AlreadySettled),
		zap.Int("no_signal", summary.NoSignal),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration),
	)

	return summary, nil
}

type reconcileOutcome int

const (
	outcomeNoSignal reconcileOutcome = iota
	outcomeSettled
	outcomeAlreadySettled
	outcomeFailed
)

// reconcileOne polls one listing's channels in priority order and
// settles on the first confirmed sale.
func (s *ReconcileService) reconcileOne(ctx context.Context, l *listing.Listing) reconcileOutcome {
	codes := make([]marketplace.ChannelCode, 0, len(l.Publications))
	for _, pub := range l.Publications {
		codes = append(codes, pub.Channel)
	}

	checked := false
	for _, code := range s.channels.InPriorityOrder(codes) {
		pub := l.PublicationFor(code)
		if pub == nil {
			continue
		}

		adapter, err := s.channels.Get(code)
		if err != nil {
			continue
		}

		check, err := adapter.CheckSold(ctx, pub.ExternalID)
		if err != nil {
			// No signal. The channel gets polled again next pass.
			s.logger.Warn("sold check failed",
				zap.String("listing_id", l.ID.String()),
				zap.String("channel", code.String()),
				zap.Error(err),
			)
			continue
		}

		pub.MarkChecked(check.RawStatus, check.CheckedAt)
		checked = true
		if !check.Sold {
			continue
		}

		return s.settle(ctx, l, code, check.CheckedAt)
	}

	if checked {
		// Best effort; stale check timestamps are harmless. Only the
		// publication rows are written, so the snapshot of the listing in
		// memory can never clobber a concurrent status or price write.
		if err := s.listingRepo.SavePublications(ctx, l); err != nil {
			s.logger.Debug("failed to persist check timestamps",
				zap.String("listing_id", l.ID.String()),
				zap.Error(err),
			)
		}
	}

	return outcomeNoSignal
}

// settle marks the listing sold on the winning channel, records the
// settlement exactly once, and delists the remaining channels.
func (s *ReconcileService) settle(ctx context.Context, l *listing.Listing, channel marketplace.ChannelCode, soldAt time.Time) reconcileOutcome {
	amounts := settlement.SaleAmounts{
		Gross:        l.Price,
		Fees:         decimal.Zero,
		ShippingCost: decimal.Zero,
	}
	if rate, ok := s.config.FeeRates[channel]; ok {
		amounts.Fees = l.Price.Mul(rate).Round(2)
	}

	stl, err := s.settler.SettleListing(ctx, l, channel, amounts, soldAt)
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) || errors.Is(err, shared.ErrConcurrencyConflict) {
			// Another pass won the race; the sale is already recorded.
			return outcomeAlreadySettled
		}
		s.logger.Error("settlement failed",
			zap.String("listing_id", l.ID.String()),
			zap.String("channel", channel.String()),
			zap.Error(err),
		)
		return outcomeFailed
	}

	s.publishEvents(ctx, l)
	s.delistOthers(ctx, l, channel)

	s.logger.Info("listing settled",
		zap.String("listing_id", l.ID.String()),
		zap.String("settlement_id", stl.ID.String()),
		zap.String("channel", channel.String()),
		zap.String("net_amount", stl.NetAmount().StringFixed(2)),
	)

	return outcomeSettled
}

// delistOthers ends the listing on every channel other than the one it
// sold on. Best effort; a failure leaves a ghost listing the seller can
// clean up manually.
func (s *ReconcileService) delistOthers(ctx context.Context, l *listing.Listing, soldOn marketplace.ChannelCode) {
	for _, pub := range l.Publications {
		if pub.Channel == soldOn {
			continue
		}
		adapter, err := s.channels.Get(pub.Channel)
		if err != nil {
			continue
		}
		if err := adapter.End(ctx, pub.ExternalID); err != nil {
			s.logger.Warn("failed to delist sold listing",
				zap.String("listing_id", l.ID.String()),
				zap.String("channel", pub.Channel.String()),
				zap.Error(err),
			)
		}
	}
}

func (s *ReconcileService) publishEvents(ctx context.Context, l *listing.Listing) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, l.GetDomainEvents()...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("listing_id", l.ID.String()),
			zap.Error(err),
		)
	}
	l.ClearDomainEvents()
}
