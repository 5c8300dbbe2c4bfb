package listing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/marketplace"
	"github.com/crosslist/backend/internal/domain/shared"
)

// ListingService handles listing lifecycle operations
type ListingService struct {
	listingRepo listing.ListingRepository
	historyRepo listing.PriceHistoryRepository
	channels    marketplace.Registry
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewListingService creates a new ListingService
func NewListingService(
	listingRepo listing.ListingRepository,
	historyRepo listing.PriceHistoryRepository,
	channels marketplace.Registry,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		historyRepo: historyRepo,
		channels:    channels,
		publisher:   publisher,
		logger:      logger,
	}
}

// Create creates a new active listing priced at its original price
func (s *ListingService) Create(ctx context.Context, sellerID uuid.UUID, req CreateListingRequest) (*ListingResponse, error) {
	l, err := listing.NewListing(sellerID, req.Title, req.Description, req.OriginalPrice, req.MinimumPrice)
	if err != nil {
		return nil, err
	}

	if err := s.listingRepo.Save(ctx, l); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, l)

	resp := ToListingResponse(l)
	return &resp, nil
}

// Get returns a listing owned by the seller
func (s *ListingService) Get(ctx context.Context, sellerID, id uuid.UUID) (*ListingResponse, error) {
	l, err := s.listingRepo.FindByIDForSeller(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	resp := ToListingResponse(l)
	return &resp, nil
}

// List returns a seller's listings with filtering and pagination
func (s *ListingService) List(ctx context.Context, sellerID uuid.UUID, filter listing.ListingFilter) (*shared.Paginated[ListingResponse], error) {
	if filter.Page <= 0 {
		filter.Page = shared.DefaultFilter().Page
	}
	if filter.PageSize <= 0 {
		filter.PageSize = shared.DefaultFilter().PageSize
	}

	listings, total, err := s.listingRepo.FindBySeller(ctx, sellerID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ListingResponse, 0, len(listings))
	for idx := range listings {
		items = append(items, ToListingResponse(&listings[idx]))
	}

	result := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Publish cross-posts the listing to the requested channels. Each channel
// is attempted independently; a failing channel is reported in its outcome
// and never blocks the others.
func (s *ListingService) Publish(ctx context.Context, sellerID, id uuid.UUID, req PublishListingRequest) (*PublishListingResponse, error) {
	codes, err := ParseChannels(req.Channels)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Unknown marketplace channel")
	}

	l, err := s.listingRepo.FindByIDForSeller(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	if !l.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot publish a non-active listing")
	}

	draft := marketplace.ListingDraft{
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
	}

	outcomes := make([]ChannelOutcome, 0, len(codes))
	published := 0
	for _, code := range codes {
		if l.IsPublishedTo(code) {
			outcomes = append(outcomes, ChannelOutcome{Channel: code.String(), Success: false, Error: "already published"})
			continue
		}

		adapter, err := s.channels.Get(code)
		if err != nil {
			outcomes = append(outcomes, ChannelOutcome{Channel: code.String(), Success: false, Error: err.Error()})
			continue
		}

		result, err := adapter.Publish(ctx, draft)
		if err != nil {
			s.logger.Warn("channel publish failed",
				zap.String("listing_id", l.ID.String()),
				zap.String("channel", code.String()),
				zap.Error(err),
			)
			outcomes = append(outcomes, ChannelOutcome{Channel: code.String(), Success: false, Error: err.Error()})
			continue
		}

		if _, err := l.AddPublication(code, result.ExternalID, result.ExternalStatus); err != nil {
			outcomes = append(outcomes, ChannelOutcome{Channel: code.String(), Success: false, Error: err.Error()})
			continue
		}
		outcomes = append(outcomes, ChannelOutcome{Channel: code.String(), Success: true})
		published++
	}

	if published > 0 {
		// Only publication rows changed; the listing row stays untouched so
		// a concurrent price drop or sale cannot be overwritten here.
		if err := s.listingRepo.SavePublications(ctx, l); err != nil {
			return nil, err
		}
		s.publishEvents(ctx, l)
	}

	return &PublishListingResponse{
		Listing:  ToListingResponse(l),
		Outcomes: outcomes,
	}, nil
}

// UpdatePrice applies a seller-chosen price. The new price and history
// entry are written atomically; channel price updates fan out afterwards
// best-effort.
func (s *ListingService) UpdatePrice(ctx context.Context, sellerID, id uuid.UUID, req UpdatePriceRequest) (*ListingResponse, error) {
	l, err := s.listingRepo.FindByIDForSeller(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	entry, err := l.UpdatePriceManually(req.Price, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.listingRepo.SavePriceChange(ctx, l, entry); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, l)
	s.fanOutPriceUpdate(ctx, l)

	resp := ToListingResponse(l)
	return &resp, nil
}

// GetPriceHistory returns the listing's price trajectory, oldest first
func (s *ListingService) GetPriceHistory(ctx context.Context, sellerID, id uuid.UUID) ([]PriceHistoryResponse, error) {
	l, err := s.listingRepo.FindByIDForSeller(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.historyRepo.FindByListing(ctx, l.ID)
	if err != nil {
		return nil, err
	}

	items := make([]PriceHistoryResponse, 0, len(entries))
	for idx := range entries {
		items = append(items, ToPriceHistoryResponse(&entries[idx]))
	}
	return items, nil
}

// End transitions the listing to ENDED and delists it everywhere
func (s *ListingService) End(ctx context.Context, sellerID, id uuid.UUID) (*ListingResponse, error) {
	return s.close(ctx, sellerID, id, func(l *listing.Listing, now time.Time) error {
		return l.End(now)
	})
}

// Remove transitions the listing to REMOVED. Every published channel gets
// a best-effort End call first; per-channel failures are logged and the
// removal proceeds regardless.
func (s *ListingService) Remove(ctx context.Context, sellerID, id uuid.UUID) (*ListingResponse, error) {
	return s.close(ctx, sellerID, id, func(l *listing.Listing, now time.Time) error {
		return l.Remove(now)
	})
}

func (s *ListingService) close(ctx context.Context, sellerID, id uuid.UUID, transition func(*listing.Listing, time.Time) error) (*ListingResponse, error) {
	l, err := s.listingRepo.FindByIDForSeller(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	if !l.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Listing is no longer active")
	}

	s.fanOutEnd(ctx, l)

	if err := transition(l, time.Now()); err != nil {
		return nil, err
	}

	if err := s.listingRepo.UpdateStatusIfActive(ctx, l); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, l)

	resp := ToListingResponse(l)
	return &resp, nil
}

// fanOutPriceUpdate pushes the new price to every published channel.
// Failures leave the channel showing a stale price until the next decay
// cycle retries it.
func (s *ListingService) fanOutPriceUpdate(ctx context.Context, l *listing.Listing) {
	for _, pub := range l.Publications {
		adapter, err := s.channels.Get(pub.Channel)
		if err != nil {
			continue
		}
		if err := adapter.UpdatePrice(ctx, pub.ExternalID, l.Price); err != nil {
			s.logger.Warn("channel price update failed",
				zap.String("listing_id", l.ID.String()),
				zap.String("channel", pub.Channel.String()),
				zap.Error(err),
			)
		}
	}
}

func (s *ListingService) fanOutEnd(ctx context.Context, l *listing.Listing) {
	for _, pub := range l.Publications {
		adapter, err := s.channels.Get(pub.Channel)
		if err != nil {
			continue
		}
		if err := adapter.End(ctx, pub.ExternalID); err != nil {
			s.logger.Warn("channel end failed",
				zap.String("listing_id", l.ID.String()),
				zap.String("channel", pub.Channel.String()),
				zap.Error(err),
			)
		}
	}
}

func (s *ListingService) publishEvents(ctx context.Context, l *listing.Listing) {
	if s.publisher == nil {
		return
	}
	for _, event := range l.GetDomainEvents() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	l.ClearDomainEvents()
}
