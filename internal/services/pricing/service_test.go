package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oasis/internal/adapters/config"
	"oasis/internal/domain/event"
	"oasis/internal/domain/listing"
	"oasis/internal/domain/proposal"
	"oasis/pkg/errors"
)

type mockListingRepo struct {
	getByID func(ctx context.Context, id uuid.UUID) (*listing.Listing, error)
}

func (m *mockListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	return m.getByID(ctx, id)
}

type mockCalendarRepo struct {
	getByListingAndRange func(ctx context.Context, listingID uuid.UUID, start, end time.Time) ([]*listing.CalendarDay, error)
}

func (m *mockCalendarRepo) GetByListingAndRange(ctx context.Context, listingID uuid.UUID, start, end time.Time) ([]*listing.CalendarDay, error) {
	return m.getByListingAndRange(ctx, listingID, start, end)
}

type mockEventRepo struct {
	getByLocationAndRange func(ctx context.Context, location string, start, end time.Time) ([]*event.Signal, error)
	saveBatch             func(ctx context.Context, signals []*event.Signal) (int, error)
}

func (m *mockEventRepo) GetByLocationAndRange(ctx context.Context, location string, start, end time.Time) ([]*event.Signal, error) {
	return m.getByLocationAndRange(ctx, location, start, end)
}

func (m *mockEventRepo) SaveBatch(ctx context.Context, signals []*event.Signal) (int, error) {
	return m.saveBatch(ctx, signals)
}

type mockProposalRepo struct {
	createBatch  func(ctx context.Context, proposals []*proposal.Proposal) error
	getByID      func(ctx context.Context, id uuid.UUID) (*proposal.Proposal, error)
	getByListing func(ctx context.Context, listingID uuid.UUID, status proposal.Status) ([]*proposal.Proposal, error)
	update       func(ctx context.Context, p *proposal.Proposal) error
}

func (m *mockProposalRepo) CreateBatch(ctx context.Context, proposals []*proposal.Proposal) error {
	return m.createBatch(ctx, proposals)
}

func (m *mockProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*proposal.Proposal, error) {
	return m.getByID(ctx, id)
}

func (m *mockProposalRepo) GetByListing(ctx context.Context, listingID uuid.UUID, status proposal.Status) ([]*proposal.Proposal, error) {
	return m.getByListing(ctx, listingID, status)
}

func (m *mockProposalRepo) Update(ctx context.Context, p *proposal.Proposal) error {
	return m.update(ctx, p)
}

type mockPublisher struct {
	published []*proposal.Proposal
	err       error
}

func (m *mockPublisher) ProposalCreated(_ context.Context, p *proposal.Proposal) error {
	m.published = append(m.published, p)
	return m.err
}

func testClock() func() time.Time {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return fixed }
}

func date(day int) time.Time {
	return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
}

func testListing(price, floor, ceiling int64) *listing.Listing {
	return &listing.Listing{
		ID:           uuid.New(),
		Name:         "Marina View 2BR",
		City:         "Dubai",
		Price:        decimal.NewFromInt(price),
		PriceFloor:   decimal.NewFromInt(floor),
		PriceCeiling: decimal.NewFromInt(ceiling),
	}
}

// calendarWith returns n days of which booked are marked booked
func calendarWith(listingID uuid.UUID, total, booked int) []*listing.CalendarDay {
	days := make([]*listing.CalendarDay, 0, total)
	for i := 0; i < total; i++ {
		status := listing.StatusAvailable
		if i < booked {
			status = listing.StatusBooked
		}
		days = append(days, &listing.CalendarDay{
			ID:        uuid.New(),
			ListingID: listingID,
			Date:      date(1).AddDate(0, 0, -i),
			Status:    status,
		})
	}
	return days
}

func signal(name string, tier event.ImpactTier, start, end time.Time) *event.Signal {
	return &event.Signal{
		ID:             uuid.New(),
		Name:           name,
		StartDate:      start,
		EndDate:        end,
		Location:       "Dubai",
		ExpectedImpact: tier,
		Confidence:     80,
	}
}

func newTestService(
	listings *mockListingRepo,
	calendar *mockCalendarRepo,
	events *mockEventRepo,
	proposals *mockProposalRepo,
	publisher Publisher,
) *Service {
	cfg := config.PricingConfig{
		OccupancyWindowDays: 30,
		MaxIncreasePct:      40,
		MaxDecreasePct:      20,
		DefaultMarket:       "Dubai",
	}
	return NewService(listings, calendar, events, proposals, publisher, cfg).WithClock(testClock())
}

func TestGenerateProposals_HighImpactEvent(t *testing.T) {
	l := testListing(800, 560, 1200)

	listings := &mockListingRepo{
		getByID: func(_ context.Context, id uuid.UUID) (*listing.Listing, error) {
			require.Equal(t, l.ID, id)
			return l, nil
		},
	}
	calendar := &mockCalendarRepo{
		getByListingAndRange: func(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]*listing.CalendarDay, error) {
			return calendarWith(l.ID, 20, 17), nil // 85%
		},
	}
	events := &mockEventRepo{
		getByLocationAndRange: func(_ context.Context, location string, _, _ time.Time) ([]*event.Signal, error) {
			assert.Equal(t, "Dubai", location)
			return []*event.Signal{
				signal("Art Dubai", event.ImpactHigh, date(10), date(12)),
			}, nil
		},
	}
	var saved []*proposal.Proposal
	proposals := &mockProposalRepo{
		createBatch: func(_ context.Context, ps []*proposal.Proposal) error {
			saved = ps
			return nil
		},
	}
	publisher := &mockPublisher{}

	svc := newTestService(listings, calendar, events, proposals, publisher)

	result, err := svc.GenerateProposals(context.Background(), GenerateRequest{
		ListingID: l.ID,
		StartDate: date(10),
		EndDate:   date(12),
	})
	require.NoError(t, err)
	require.Len(t, result.Proposals, 1)

	p := result.Proposals[0]
	assert.True(t, decimal.NewFromInt(1000).Equal(p.ProposedPrice), "got %s", p.ProposedPrice)
	assert.Equal(t, 25, p.ChangePct)
	assert.Equal(t, proposal.RiskHigh, p.RiskLevel)
	assert.Equal(t, proposal.StatusPending, p.Status)
	assert.Equal(t, 85.0, result.Occupancy.Rate)

	set, err := p.ParseSignals()
	require.NoError(t, err)
	assert.Nil(t, set.Clamp)
	require.Len(t, set.Events, 1)
	assert.Equal(t, "Art Dubai", set.Events[0].Name)
	assert.Equal(t, 25, set.Events[0].SuggestedIncreasePct)
	assert.Equal(t, 25, set.TotalAdjustmentPct)
	assert.Equal(t, 0, set.Occupancy.AdjustmentPct)

	assert.Equal(t, saved, result.Proposals)
	assert.Len(t, publisher.published, 1)
}

func TestGenerateProposals_ClampsToCeiling(t *testing.T) {
	// Two overlapping high-impact events: 25+25 caps at 40, candidate 1260
	// exceeds ceiling 1200.
	l := testListing(900, 560, 1200)

	listings := &mockListingRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (*listing.Listing, error) { return l, nil },
	}
	calendar := &mockCalendarRepo{
		getByListingAndRange: func(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]*listing.CalendarDay, error) {
			return calendarWith(l.ID, 20, 12), nil // 60%, no adjustment
		},
	}
	events := &mockEventRepo{
		getByLocationAndRange: func(_ context.Context, _ string, _, _ time.Time) ([]*event.Signal, error) {
			return []*event.Signal{
				signal("GITEX", event.ImpactHigh, date(10), date(11)),
				signal("F1 Weekend", event.ImpactHigh, date(10), date(11)),
			}, nil
		},
	}
	proposals := &mockProposalRepo{
		createBatch: func(_ context.Context, _ []*proposal.Proposal) error { return nil },
	}

	svc := newTestService(listings, calendar, events, proposals, nil)

	result, err := svc.GenerateProposals(context.Background(), GenerateRequest{
		ListingID: l.ID,
		StartDate: date(10),
		EndDate:   date(11),
	})
	require.NoError(t, err)
	require.Len(t, result.Proposals, 1)

	p := result.Proposals[0]
	assert.True(t, decimal.NewFromInt(1200).Equal(p.ProposedPrice), "got %s", p.ProposedPrice)
	assert.Equal(t, proposal.RiskHigh, p.RiskLevel) // 900 -> 1200 is +33%

	set, err := p.ParseSignals()
	require.NoError(t, err)
	require.NotNil(t, set.Clamp)
	assert.Equal(t, "ceiling", set.Clamp.Bound)
	assert.True(t, decimal.NewFromInt(1260).Equal(set.Clamp.CandidatePrice), "got %s", set.Clamp.CandidatePrice)
	assert.Equal(t, 40, set.TotalAdjustmentPct)
	assert.Contains(t, p.Reasoning, "clamped")
}

func TestGenerateProposals_GroupsByEventCoverage(t *testing.T) {
	l := testListing(500, 300, 900)

	listings := &mockListingRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (*listing.Listing, error) { return l, nil },
	}
	calendar := &mockCalendarRepo{
		getByListingAndRange: func(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]*listing.CalendarDay, error) {
			return calendarWith(l.ID, 20, 12), nil
		},
	}
	events := &mockEventRepo{
		getByLocationAndRange: func(_ context.Context, _ string, _, _ time.Time) ([]*event.Signal, error) {
			return []*event.Signal{
				signal("Jazz Festival", event.ImpactMedium, date(11), date(12)),
			}, nil
		},
	}
	proposals := &mockProposalRepo{
		createBatch: func(_ context.Context, _ []*proposal.Proposal) error { return nil },
	}

	svc := newTestService(listings, calendar, events, proposals, nil)

	result, err := svc.GenerateProposals(context.Background(), GenerateRequest{
		ListingID: l.ID,
		StartDate: date(10),
		EndDate:   date(14),
	})
	require.NoError(t, err)
	require.Len(t, result.Proposals, 3)

	// day 10: no events
	assert.Equal(t, date(10), result.Proposals[0].DateRangeStart)
	assert.Equal(t, date(10), result.Proposals[0].DateRangeEnd)
	assert.True(t, decimal.NewFromInt(500).Equal(result.Proposals[0].ProposedPrice))

	// days 11-12: medium event, +15%
	assert.Equal(t, date(11), result.Proposals[1].DateRangeStart)
	assert.Equal(t, date(12), result.Proposals[1].DateRangeEnd)
	assert.True(t, decimal.NewFromInt(575).Equal(result.Proposals[1].ProposedPrice), "got %s", result.Proposals[1].ProposedPrice)
	assert.Equal(t, proposal.RiskMedium, result.Proposals[1].RiskLevel)

	// days 13-14: no events again, but not contiguous with day 10
	assert.Equal(t, date(13), result.Proposals[2].DateRangeStart)
	assert.Equal(t, date(14), result.Proposals[2].DateRangeEnd)
}

func TestGenerateProposals_LowOccupancyDiscount(t *testing.T) {
	l := testListing(500, 300, 900)

	listings := &mockListingRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (*listing.Listing, error) { return l, nil },
	}
	calendar := &mockCalendarRepo{
		getByListingAndRange: func(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]*listing.CalendarDay, error) {
			return calendarWith(l.ID, 20, 4), nil // 20%
		},
	}
	events := &mockEventRepo{
		getByLocationAndRange: func(_ context.Context, _ string, _, _ time.Time) ([]*event.Signal, error) {
			return nil, nil
		},
	}
	proposals := &mockProposalRepo{
		createBatch: func(_ context.Context, _ []*proposal.Proposal) error { return nil },
	}

	svc := newTestService(listings, calendar, events, proposals, nil)

	result, err := svc.GenerateProposals(context.Background(), GenerateRequest{
		ListingID: l.ID,
		StartDate: date(10),
		EndDate:   date(10),
	})
	require.NoError(t, err)
	require.Len(t, result.Proposals, 1)

	p := result.Proposals[0]
	assert.True(t, decimal.NewFromInt(475).Equal(p.ProposedPrice), "got %s", p.ProposedPrice)
	assert.Equal(t, -5, p.ChangePct)
	assert.Equal(t, proposal.RiskLow, p.RiskLevel)
}

func TestGenerateProposals_ListingNotFound(t *testing.T) {
	listings := &mockListingRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (*listing.Listing, error) {
			return nil, errors.ErrNotFound
		},
	}

	svc := newTestService(listings, nil, nil, nil, nil)

	_, err := svc.GenerateProposals(context.Background(), GenerateRequest{
		ListingID: uuid.New(),
		StartDate: date(10),
		EndDate:   date(12),
	})
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestGenerateProposals_InvalidDateRange(t *testing.T) {
	svc := newTestService(&mockListingRepo{}, nil, nil, nil, nil)

	_, err := svc.GenerateProposals(context.Background(), GenerateRequest{
		ListingID: uuid.New(),
		StartDate: date(12),
		EndDate:   date(10),
	})
	assert.ErrorIs(t, err, errors.ErrInvalidDateRange)
}

func TestGenerateProposals_ZeroCurrentPrice(t *testing.T) {
	l := testListing(0, 0, 100)

	listings := &mockListingRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (*listing.Listing, error) { return l, nil },
	}

	svc := newTestService(listings, nil, nil, nil, nil)

	_, err := svc.GenerateProposals(context.Background(), GenerateRequest{
		ListingID: l.ID,
		StartDate: date(10),
		EndDate:   date(12),
	})
	assert.ErrorIs(t, err, errors.ErrZeroCurrentPrice)
}

func TestGenerateProposals_PublishFailureIsNotFatal(t *testing.T) {
	l := testListing(500, 300, 900)

	listings := &mockListingRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (*listing.Listing, error) { return l, nil },
	}
	calendar := &mockCalendarRepo{
		getByListingAndRange: func(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]*listing.CalendarDay, error) {
			return calendarWith(l.ID, 20, 12), nil
		},
	}
	events := &mockEventRepo{
		getByLocationAndRange: func(_ context.Context, _ string, _, _ time.Time) ([]*event.Signal, error) {
			return nil, nil
		},
	}
	proposals := &mockProposalRepo{
		createBatch: func(_ context.Context, _ []*proposal.Proposal) error { return nil },
	}
	publisher := &mockPublisher{err: errors.ErrUnavailable}

	svc := newTestService(listings, calendar, events, proposals, publisher)

	result, err := svc.GenerateProposals(context.Background(), GenerateRequest{
		ListingID: l.ID,
		StartDate: date(10),
		EndDate:   date(10),
	})
	require.NoError(t, err)
	assert.Len(t, result.Proposals, 1)
}

func TestUpdateStatus_Approve(t *testing.T) {
	p := &proposal.Proposal{
		ID:     uuid.New(),
		Status: proposal.StatusPending,
	}

	var updated *proposal.Proposal
	proposals := &mockProposalRepo{
		getByID: func(_ context.Context, id uuid.UUID) (*proposal.Proposal, error) {
			require.Equal(t, p.ID, id)
			return p, nil
		},
		update: func(_ context.Context, up *proposal.Proposal) error {
			updated = up
			return nil
		},
	}

	svc := newTestService(&mockListingRepo{}, nil, nil, proposals, nil)

	got, err := svc.UpdateStatus(context.Background(), p.ID, proposal.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusApproved, got.Status)
	assert.Equal(t, got, updated)
}

func TestUpdateStatus_ExecuteStampsTime(t *testing.T) {
	p := &proposal.Proposal{
		ID:     uuid.New(),
		Status: proposal.StatusApproved,
	}

	proposals := &mockProposalRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (*proposal.Proposal, error) { return p, nil },
		update:  func(_ context.Context, _ *proposal.Proposal) error { return nil },
	}

	svc := newTestService(&mockListingRepo{}, nil, nil, proposals, nil)

	got, err := svc.UpdateStatus(context.Background(), p.ID, proposal.StatusExecuted)
	require.NoError(t, err)
	require.NotNil(t, got.ExecutedAt)
	assert.Equal(t, testClock()(), *got.ExecutedAt)
}

func TestUpdateStatus_IllegalTransition(t *testing.T) {
	p := &proposal.Proposal{
		ID:     uuid.New(),
		Status: proposal.StatusRejected,
	}

	proposals := &mockProposalRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (*proposal.Proposal, error) { return p, nil },
	}

	svc := newTestService(&mockListingRepo{}, nil, nil, proposals, nil)

	_, err := svc.UpdateStatus(context.Background(), p.ID, proposal.StatusApproved)
	assert.ErrorIs(t, err, errors.ErrInvalidTransition)
}

func TestListProposals_RejectsUnknownStatus(t *testing.T) {
	svc := newTestService(&mockListingRepo{}, nil, nil, &mockProposalRepo{}, nil)

	_, err := svc.ListProposals(context.Background(), uuid.New(), proposal.Status("archived"))
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}
