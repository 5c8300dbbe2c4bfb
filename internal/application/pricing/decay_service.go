package pricing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/shared"
)

// DecayConfig holds the tunables of the price decay engine
type DecayConfig struct {
	// Factor is the per-cycle price multiplier, e.g. 0.9 for a 10% drop
	Factor decimal.Decimal
	// Gate is the minimum time since the last price update before a
	// listing decays again
	Gate time.Duration
	// BatchSize caps the candidates loaded per run
	BatchSize int
	// MaxParallel bounds the number of listings processed concurrently
	MaxParallel int
}

// DefaultDecayConfig returns the standard daily decay settings
func DefaultDecayConfig() DecayConfig {
	return DecayConfig{
		Factor:      decimal.NewFromFloat(0.9),
		Gate:        7 * 24 * time.Hour,
		BatchSize:   500,
		MaxParallel: 4,
	}
}

// ChannelOutcome records the per-channel result of pushing one price drop
type ChannelOutcome struct {
	Channel marketplace.ChannelCode
	Success bool
	Err     error
}

// RunSummary aggregates the outcome of one decay run
type RunSummary struct {
	Candidates     int
	Dropped        int
	Skipped        int
	Failed         int
	ChannelUpdates int
	ChannelErrors  int
	StartedAt      time.Time
	Duration       time.Duration
}

// DecayService is the scheduled price decay engine. Each run loads the
// listings whose decay gate has elapsed, drops each price by the
// configured factor clamped to the listing's minimum, and pushes the new
// price to every published channel. Listings already at their minimum
// are skipped entirely: no history entry, no adapter calls.
type DecayService struct {
	listingRepo listing.ListingRepository
	channels    marketplace.Registry
	publisher   shared.EventPublisher
	config      DecayConfig
	logger      *zap.Logger
}

// NewDecayService creates a new DecayService
func NewDecayService(
	listingRepo listing.ListingRepository,
	channels marketplace.Registry,
	publisher shared.EventPublisher,
	config DecayConfig,
	logger *zap.Logger,
) *DecayService {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultDecayConfig().BatchSize
	}
	if config.MaxParallel <= 0 {
		config.MaxParallel = DefaultDecayConfig().MaxParallel
	}
	return &DecayService{
		listingRepo: listingRepo,
		channels:    channels,
		publisher:   publisher,
		config:      config,
		logger:      logger,
	}
}

// Run executes one decay cycle. Per-listing failures are isolated: a
// listing that errors is counted and left for the next cycle. The caller
// bounds the run with a context deadline.
func (s *DecayService) Run(ctx context.Context) (*RunSummary, error) {
	started := time.Now()
	cutoff := started.Add(-s.config.Gate)

	candidates, err := s.listingRepo.FindDecayCandidates(ctx, cutoff, s.config.BatchSize)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{
		Candidates: len(candidates),
		StartedAt:  started,
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.config.MaxParallel)
	)

	for idx := range candidates {
		select {
		case <-ctx.Done():
			s.logger.Warn("decay run budget exhausted",
				zap.Int("processed", idx),
				zap.Int("candidates", len(candidates)),
			)
			wg.Wait()
			summary.Duration = time.Since(started)
			return summary, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(l *listing.Listing) {
			defer wg.Done()
			defer func() { <-sem }()

			dropped, outcomes, err := s.decayOne(ctx, l)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				summary.Failed++
			case dropped:
				summary.Dropped++
			default:
				summary.Skipped++
			}
			for _, o := range outcomes {
				if o.Success {
					summary.ChannelUpdates++
				} else {
					summary.ChannelErrors++
				}
			}
		}(&candidates[idx])
	}

	wg.Wait()
	summary.Duration = time.Since(started)

	s.logger.Info("decay run completed",
		zap.Int("candidates", summary.Candidates),
		zap.Int("dropped", summary.Dropped),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("channel_updates", summary.ChannelUpdates),
		zap.Int("channel_errors", summary.ChannelErrors),
		zap.Duration("duration", summary.Duration),
	)

	return summary, nil
}

// decayOne drops one listing's price. The repository query already
// filters at-minimum and recently-updated listings, but both checks are
// re-applied in memory so a rerun over stale candidates stays a no-op.
func (s *DecayService) decayOne(ctx context.Context, l *listing.Listing) (bool, []ChannelOutcome, error) {
	now := time.Now()
	if l.AtMinimumPrice() || !l.IsDecayDue(now, s.config.Gate) {
		return false, nil, nil
	}

	entry, err := l.ApplyAutomaticPriceDrop(s.config.Factor, now)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "PRICE_AT_MINIMUM" {
			return false, nil, nil
		}
		return false, nil, err
	}

	if err := s.listingRepo.SavePriceChange(ctx, l, entry); err != nil {
		// A lost race means another engine already transitioned or
		// repriced the listing; the next cycle sees the fresh state.
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			s.logger.Debug("decay lost update race",
				zap.String("listing_id", l.ID.String()),
			)
			return false, nil, nil
		}
		return false, nil, err
	}

	s.publishEvents(ctx, l)
	outcomes := s.fanOutPriceUpdate(ctx, l)

	s.logger.Info("listing price decayed",
		zap.String("listing_id", l.ID.String()),
		zap.String("previous_price", entry.PreviousPrice.StringFixed(2)),
		zap.String("new_price", entry.NewPrice.StringFixed(2)),
	)

	return true, outcomes, nil
}

// fanOutPriceUpdate pushes the new price to each published channel.
// A failing channel keeps its stale price until the next run.
func (s *DecayService) fanOutPriceUpdate(ctx context.Context, l *listing.Listing) []ChannelOutcome {
	outcomes := make([]ChannelOutcome, 0, len(l.Publications))
	for _, pub := range l.Publications {
		adapter, err := s.channels.Get(pub.Channel)
		if err != nil {
			outcomes = append(outcomes, ChannelOutcome{Channel: pub.Channel, Err: err})
			continue
		}

		if err := adapter.UpdatePrice(ctx, pub.ExternalID, l.Price); err != nil {
			s.logger.Warn("channel price update failed",
				zap.String("listing_id", l.ID.String()),
				zap.String("channel", pub.Channel.String()),
				zap.Error(err),
			)
			outcomes = append(outcomes, ChannelOutcome{Channel: pub.Channel, Err: err})
			continue
		}
		outcomes = append(outcomes, ChannelOutcome{Channel: pub.Channel, Success: true})
	}
	return outcomes
}

func (s *DecayService) publishEvents(ctx context.Context, l *listing.Listing) {
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
