package listing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/crosslist/backend/internal/domain/shared"
)

// ListingFilter defines filtering options for listing queries
type ListingFilter struct {
	shared.Filter
	Status *ListingStatus // Filter by status
}

// ListingRepository defines the interface for listing persistence.
// Implementations must support atomic conditional updates so that
// concurrent engines never clobber each other's state transitions.
type ListingRepository interface {
	// FindByID finds a listing by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)

	// FindByIDForSeller finds a listing by ID owned by a specific seller
	FindByIDForSeller(ctx context.Context, sellerID, id uuid.UUID) (*Listing, error)

	// FindBySeller finds listings for a seller with filtering
	FindBySeller(ctx context.Context, sellerID uuid.UUID, filter ListingFilter) ([]Listing, int64, error)

	// FindDecayCandidates finds active listings whose last price update is
	// at or before the cutoff and whose price is still above the minimum
	FindDecayCandidates(ctx context.Context, cutoff time.Time, limit int) ([]Listing, error)

	// FindActivePublished finds active listings with at least one publication
	FindActivePublished(ctx context.Context, limit int) ([]Listing, error)

	// Save creates a listing or rewrites an existing one together with its
	// publication records, guarded by an optimistic version check. A stale
	// aggregate returns shared.ErrConcurrencyConflict and writes nothing.
	Save(ctx context.Context, l *Listing) error

	// SavePublications upserts the listing's publication records without
	// touching the listing row itself
	SavePublications(ctx context.Context, l *Listing) error

	// SavePriceChange persists the listing's new price, decay baseline and
	// the price history entry in a single atomic write. The update is
	// conditional on the listing still being active; a lost race returns
	// shared.ErrConcurrencyConflict and writes nothing.
	SavePriceChange(ctx context.Context, l *Listing, entry *PriceHistoryEntry) error

	// UpdateStatusIfActive conditionally transitions the listing status.
	// Returns shared.ErrConcurrencyConflict when the listing was no longer
	// active (the losing writer's update is a no-op).
	UpdateStatusIfActive(ctx context.Context, l *Listing) error
}

// PriceHistoryRepository defines the interface for price history persistence
type PriceHistoryRepository interface {
	// Append appends a price history entry; entries are never updated
	Append(ctx context.Context, entry *PriceHistoryEntry) error

	// FindByListing returns the price history for a listing, oldest first
	FindByListing(ctx context.Context, listingID uuid.UUID) ([]PriceHistoryEntry, error)
}
