package listing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oasis/pkg/errors"
)

type mockCalendarRepo struct {
	getByListingAndRange func(ctx context.Context, listingID uuid.UUID, start, end time.Time) ([]*CalendarDay, error)
}

func (m *mockCalendarRepo) GetByListingAndRange(ctx context.Context, listingID uuid.UUID, start, end time.Time) ([]*CalendarDay, error) {
	return m.getByListingAndRange(ctx, listingID, start, end)
}

func days(total, booked int) []*CalendarDay {
	out := make([]*CalendarDay, 0, total)
	for i := 0; i < total; i++ {
		status := StatusAvailable
		if i < booked {
			status = StatusBooked
		}
		out = append(out, &CalendarDay{ID: uuid.New(), Status: status})
	}
	return out
}

func newCalculator(repo CalendarRepository) *OccupancyCalculator {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewOccupancyCalculator(repo).WithClock(func() time.Time { return fixed })
}

func TestOccupancy_NineOfThirty(t *testing.T) {
	repo := &mockCalendarRepo{
		getByListingAndRange: func(_ context.Context, _ uuid.UUID, start, end time.Time) ([]*CalendarDay, error) {
			assert.Equal(t, 30, int(end.Sub(start).Hours()/24))
			return days(30, 9), nil
		},
	}

	occ, err := newCalculator(repo).Occupancy(context.Background(), uuid.New(), 30)
	require.NoError(t, err)
	assert.Equal(t, 30.0, occ.Rate)
	assert.Equal(t, 9, occ.BookedDays)
	assert.Equal(t, 30, occ.TotalDays)
	assert.True(t, occ.HasData)
}

func TestOccupancy_RoundsToTwoDecimals(t *testing.T) {
	repo := &mockCalendarRepo{
		getByListingAndRange: func(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]*CalendarDay, error) {
			return days(3, 1), nil
		},
	}

	occ, err := newCalculator(repo).Occupancy(context.Background(), uuid.New(), 30)
	require.NoError(t, err)
	assert.Equal(t, 33.33, occ.Rate)
}

func TestOccupancy_NoDataIsNotAnError(t *testing.T) {
	repo := &mockCalendarRepo{
		getByListingAndRange: func(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]*CalendarDay, error) {
			return nil, nil
		},
	}

	occ, err := newCalculator(repo).Occupancy(context.Background(), uuid.New(), 30)
	require.NoError(t, err)
	assert.False(t, occ.HasData)
	assert.Equal(t, 0.0, occ.Rate)
	assert.Equal(t, 0, occ.TotalDays)
}

func TestOccupancy_BlockedDaysAreNotBooked(t *testing.T) {
	repo := &mockCalendarRepo{
		getByListingAndRange: func(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]*CalendarDay, error) {
			return []*CalendarDay{
				{Status: StatusBooked},
				{Status: StatusBlocked},
				{Status: StatusAvailable},
				{Status: StatusBooked},
			}, nil
		},
	}

	occ, err := newCalculator(repo).Occupancy(context.Background(), uuid.New(), 30)
	require.NoError(t, err)
	assert.Equal(t, 2, occ.BookedDays)
	assert.Equal(t, 50.0, occ.Rate)
}

func TestOccupancy_DefaultWindow(t *testing.T) {
	var gotStart, gotEnd time.Time
	repo := &mockCalendarRepo{
		getByListingAndRange: func(_ context.Context, _ uuid.UUID, start, end time.Time) ([]*CalendarDay, error) {
			gotStart, gotEnd = start, end
			return nil, nil
		},
	}

	occ, err := newCalculator(repo).Occupancy(context.Background(), uuid.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultOccupancyWindowDays, occ.WindowDays)
	assert.Equal(t, float64(DefaultOccupancyWindowDays), gotEnd.Sub(gotStart).Hours()/24)
}

func TestOccupancy_EmptyListingID(t *testing.T) {
	calc := newCalculator(&mockCalendarRepo{})
	_, err := calc.Occupancy(context.Background(), uuid.Nil, 30)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}
