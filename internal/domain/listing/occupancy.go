package listing

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"oasis/pkg/errors"
)

// DefaultOccupancyWindowDays is the trailing window used when none is given
const DefaultOccupancyWindowDays = 30

// Occupancy summarizes booked days over a trailing window.
// HasData distinguishes "0% occupied" from "no calendar rows at all".
type Occupancy struct {
	Rate       float64 `json:"occupancy_rate"`
	BookedDays int     `json:"booked_days"`
	TotalDays  int     `json:"total_days"`
	WindowDays int     `json:"window_days"`
	HasData    bool    `json:"has_data"`
}

// OccupancyCalculator derives occupancy rates from calendar data
type OccupancyCalculator struct {
	calendar CalendarRepository
	now      func() time.Time
}

// NewOccupancyCalculator creates an occupancy calculator
func NewOccupancyCalculator(calendar CalendarRepository) *OccupancyCalculator {
	return &OccupancyCalculator{
		calendar: calendar,
		now:      time.Now,
	}
}

// WithClock overrides the time source, used by tests
func (c *OccupancyCalculator) WithClock(now func() time.Time) *OccupancyCalculator {
	c.now = now
	return c
}

// Occupancy computes the occupancy rate over the trailing windowDays ending
// today. Zero calendar rows is not an error: the result carries HasData=false.
func (c *OccupancyCalculator) Occupancy(ctx context.Context, listingID uuid.UUID, windowDays int) (*Occupancy, error) {
	if listingID == uuid.Nil {
		return nil, errors.NewValidationError("listing_id", "must not be empty", listingID)
	}
	if windowDays <= 0 {
		windowDays = DefaultOccupancyWindowDays
	}

	end := c.now().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -windowDays)

	days, err := c.calendar.GetByListingAndRange(ctx, listingID, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load calendar window")
	}

	result := &Occupancy{WindowDays: windowDays}
	if len(days) == 0 {
		return result, nil
	}

	for _, day := range days {
		if day.IsBooked() {
			result.BookedDays++
		}
	}

	result.TotalDays = len(days)
	result.HasData = true
	result.Rate = round2(float64(result.BookedDays) / float64(result.TotalDays) * 100)
	return result, nil
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
