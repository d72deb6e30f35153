package agents

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oasis/internal/adapters/config"
	"oasis/internal/adapters/discovery"
	"oasis/internal/domain/event"
	"oasis/internal/domain/listing"
	"oasis/internal/services/marketsetup"
	syncsvc "oasis/internal/services/sync"
	"oasis/pkg/errors"
)

type stubListingRepo struct {
	listing *listing.Listing
}

func (s *stubListingRepo) GetByID(_ context.Context, _ uuid.UUID) (*listing.Listing, error) {
	if s.listing == nil {
		return nil, errors.ErrNotFound
	}
	return s.listing, nil
}

type stubEventRepo struct {
	cached []*event.Signal
}

func (s *stubEventRepo) GetByLocationAndRange(_ context.Context, _ string, _, _ time.Time) ([]*event.Signal, error) {
	return s.cached, nil
}

func (s *stubEventRepo) SaveBatch(_ context.Context, signals []*event.Signal) (int, error) {
	return len(signals), nil
}

type stubSearcher struct {
	result *discovery.SearchResult
}

func (s *stubSearcher) SearchEvents(_ context.Context, _ discovery.SearchRequest) (*discovery.SearchResult, error) {
	return s.result, nil
}

func TestEventSearch_CollectsCachedRun(t *testing.T) {
	l := &listing.Listing{ID: uuid.New(), City: "Dubai"}
	cached := []*event.Signal{{ID: uuid.New(), Name: "Art Dubai", Location: "Dubai"}}

	pipeline := marketsetup.NewPipeline(
		&stubListingRepo{listing: l},
		&stubEventRepo{cached: cached},
		&stubSearcher{},
		nil, nil,
		config.PricingConfig{DefaultMarket: "Dubai"},
	)
	c := NewCoordinator(nil, pipeline, nil)

	result, err := c.EventSearch(context.Background(), marketsetup.Request{
		ListingID: l.ID,
		StartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.EventsCount)
	assert.True(t, result.FromCache)
	assert.Equal(t, cached, result.Events)
}

func TestEventSearch_FetchedRunIsNotFromCache(t *testing.T) {
	l := &listing.Listing{ID: uuid.New(), City: "Dubai"}

	pipeline := marketsetup.NewPipeline(
		&stubListingRepo{listing: l},
		&stubEventRepo{},
		&stubSearcher{result: &discovery.SearchResult{
			Success: true,
			Events: []event.RawEvent{
				{Title: "GITEX", DateStart: "2026-03-10", DateEnd: "2026-03-12", Impact: "high"},
			},
		}},
		nil, nil,
		config.PricingConfig{DefaultMarket: "Dubai"},
	)
	c := NewCoordinator(nil, pipeline, nil)

	result, err := c.EventSearch(context.Background(), marketsetup.Request{
		ListingID: l.ID,
		StartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.EventsCount)
	assert.False(t, result.FromCache)
}

func TestEventSearch_ErrorTerminatesWithFailure(t *testing.T) {
	pipeline := marketsetup.NewPipeline(
		&stubListingRepo{},
		&stubEventRepo{},
		&stubSearcher{},
		nil, nil,
		config.PricingConfig{DefaultMarket: "Dubai"},
	)
	c := NewCoordinator(nil, pipeline, nil)

	_, err := c.EventSearch(context.Background(), marketsetup.Request{
		ListingID: uuid.New(),
		StartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, errors.ErrInternal)
}

func TestSyncCheck_DelegatesToService(t *testing.T) {
	synced := time.Now().Add(-1 * time.Hour)
	l := &listing.Listing{ID: uuid.New(), SyncedAt: &synced}

	svc := syncsvc.NewService(&stubListingRepo{listing: l}, config.SyncConfig{StaleAfter: 6 * time.Hour})
	c := NewCoordinator(nil, nil, svc)

	report, err := c.SyncCheck(context.Background(), l.ID)
	require.NoError(t, err)
	assert.False(t, report.Stale)
}
