package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"oasis/internal/domain/listing"
	"oasis/pkg/errors"
)

// Compile-time check
var _ listing.CalendarRepository = (*CalendarRepository)(nil)

// CalendarRepository implements listing.CalendarRepository using PostgreSQL
type CalendarRepository struct {
	db DBTX
}

// NewCalendarRepository creates a new calendar repository
func NewCalendarRepository(db DBTX) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// GetByListingAndRange retrieves calendar days for a listing in [start, end]
func (r *CalendarRepository) GetByListingAndRange(ctx context.Context, listingID uuid.UUID, start, end time.Time) ([]*listing.CalendarDay, error) {
	var days []*listing.CalendarDay

	query := `
		SELECT id, listing_id, date, status, price,
			   minimum_stay, maximum_stay, notes, synced_at
		FROM calendar_days
		WHERE listing_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date`

	err := r.db.SelectContext(ctx, &days, query, listingID, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get calendar days")
	}

	return days, nil
}
