package sync

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"oasis/internal/adapters/config"
	"oasis/internal/domain/listing"
	"oasis/pkg/errors"
	"oasis/pkg/logger"
)

// StalenessReport describes how fresh a listing's channel-manager data is
type StalenessReport struct {
	ListingID uuid.UUID  `json:"listing_id"`
	Stale     bool       `json:"stale"`
	SyncedAt  *time.Time `json:"synced_at,omitempty"`
	AgeHours  *float64   `json:"age_hours,omitempty"`
	Message   string     `json:"message"`
}

// Service answers staleness questions about synced listing data
type Service struct {
	listings   listing.Repository
	staleAfter time.Duration
	now        func() time.Time
	log        *logger.Logger
}

// NewService creates a sync service
func NewService(listings listing.Repository, cfg config.SyncConfig) *Service {
	return &Service{
		listings:   listings,
		staleAfter: cfg.StaleAfter,
		now:        time.Now,
		log:        logger.Get().With("component", "sync_service"),
	}
}

// WithClock overrides the time source, used by tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CheckStaleness reports whether a listing's synced data is older than the
// configured threshold. A listing that was never synced is always stale.
func (s *Service) CheckStaleness(ctx context.Context, listingID uuid.UUID) (*StalenessReport, error) {
	if listingID == uuid.Nil {
		return nil, errors.NewValidationError("listing_id", "must not be empty", listingID)
	}

	l, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if l.SyncedAt == nil {
		return &StalenessReport{
			ListingID: l.ID,
			Stale:     true,
			Message:   "Listing has never been synced",
		}, nil
	}

	age := s.now().Sub(*l.SyncedAt)
	ageHours := math.Round(age.Hours()*100) / 100
	report := &StalenessReport{
		ListingID: l.ID,
		Stale:     age > s.staleAfter,
		SyncedAt:  l.SyncedAt,
		AgeHours:  &ageHours,
	}

	if report.Stale {
		report.Message = fmt.Sprintf("Data is stale: last synced %s", humanize.Time(*l.SyncedAt))
		s.log.Warnf("Listing %s is stale (%.2fh old)", l.ID, ageHours)
	} else {
		report.Message = fmt.Sprintf("Data is fresh: last synced %s", humanize.Time(*l.SyncedAt))
	}
	return report, nil
}
