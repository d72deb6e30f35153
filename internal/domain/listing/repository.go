package listing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines read operations for listings
type Repository interface {
	// GetByID retrieves a listing by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Listing, error)
}

// CalendarRepository defines read operations for calendar days
type CalendarRepository interface {
	// GetByListingAndRange retrieves calendar days for a listing in
	// [start, end] inclusive, ordered by date
	GetByListingAndRange(ctx context.Context, listingID uuid.UUID, start, end time.Time) ([]*CalendarDay, error)
}
