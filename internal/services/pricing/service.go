package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"oasis/internal/adapters/config"
	"oasis/internal/domain/event"
	"oasis/internal/domain/listing"
	"oasis/internal/domain/proposal"
	"oasis/internal/metrics"
	"oasis/pkg/errors"
	"oasis/pkg/logger"
)

// Publisher notifies downstream consumers about created proposals.
// Publishing is best-effort: a publish failure never fails the operation.
type Publisher interface {
	ProposalCreated(ctx context.Context, p *proposal.Proposal) error
}

// Service generates, lists and transitions pricing proposals
type Service struct {
	listings  listing.Repository
	calendar  listing.CalendarRepository
	events    event.Repository
	proposals proposal.Repository
	occupancy *listing.OccupancyCalculator
	publisher Publisher
	cfg       config.PricingConfig
	now       func() time.Time
	log       *logger.Logger
}

// NewService creates a pricing service. publisher may be nil.
func NewService(
	listings listing.Repository,
	calendar listing.CalendarRepository,
	events event.Repository,
	proposals proposal.Repository,
	publisher Publisher,
	cfg config.PricingConfig,
) *Service {
	return &Service{
		listings:  listings,
		calendar:  calendar,
		events:    events,
		proposals: proposals,
		occupancy: listing.NewOccupancyCalculator(calendar),
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
		log:       logger.Get().With("component", "pricing_service"),
	}
}

// WithClock overrides the time source, used by tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	s.occupancy.WithClock(now)
	return s
}

// GenerateRequest identifies the listing and target date range
type GenerateRequest struct {
	ListingID uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

// GenerateResult summarizes one generation call
type GenerateResult struct {
	ListingID        uuid.UUID            `json:"listing_id"`
	Proposals        []*proposal.Proposal `json:"proposals"`
	Occupancy        *listing.Occupancy   `json:"occupancy"`
	EventsConsidered int                  `json:"events_considered"`
}

// GenerateProposals produces one proposal per contiguous date sub-range that
// shares the same contributing signal set. All proposals of a call persist
// all-or-nothing in a single transaction.
func (s *Service) GenerateProposals(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	start := s.now()
	result, err := s.generate(ctx, req)
	if err != nil {
		metrics.ObserveDuration(metrics.ProposalGenerationDuration, "error", start)
		return nil, err
	}
	metrics.ObserveDuration(metrics.ProposalGenerationDuration, "success", start)
	return result, nil
}

func (s *Service) generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if req.ListingID == uuid.Nil {
		return nil, errors.NewValidationError("listing_id", "must not be empty", req.ListingID)
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, errors.Wrapf(errors.ErrInvalidDateRange, "%s..%s",
			req.StartDate.Format(event.DateLayout), req.EndDate.Format(event.DateLayout))
	}

	l, err := s.listings.GetByID(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if l.Price.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Wrapf(errors.ErrZeroCurrentPrice, "listing %s", l.ID)
	}

	occ, err := s.occupancy.Occupancy(ctx, l.ID, s.cfg.OccupancyWindowDays)
	if err != nil {
		return nil, err
	}

	location := l.City
	if location == "" {
		location = s.cfg.DefaultMarket
	}

	signals, err := s.events.GetByLocationAndRange(ctx, location, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	groups := s.groupDays(req.StartDate, req.EndDate, occ, signals)

	proposals := make([]*proposal.Proposal, 0, len(groups))
	for _, g := range groups {
		p, err := s.buildProposal(l, occ, g)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}

	if err := s.proposals.CreateBatch(ctx, proposals); err != nil {
		return nil, err
	}

	for _, p := range proposals {
		metrics.ProposalsGenerated.WithLabelValues(string(p.RiskLevel)).Inc()
		if s.publisher != nil {
			if err := s.publisher.ProposalCreated(ctx, p); err != nil {
				s.log.Warnf("Failed to publish proposal %s: %v", p.ID, err)
			}
		}
	}

	s.log.Infof("Generated %d proposals for listing %s (%s..%s, %d events considered)",
		len(proposals), l.ID,
		req.StartDate.Format(event.DateLayout), req.EndDate.Format(event.DateLayout),
		len(signals))

	return &GenerateResult{
		ListingID:        l.ID,
		Proposals:        proposals,
		Occupancy:        occ,
		EventsConsidered: len(signals),
	}, nil
}

// buildProposal prices one contiguous day group: candidate from the additive
// adjustment, clamped into [floor, ceiling], risk-classified on the clamped
// price. Clamping is always recorded in the signals payload.
func (s *Service) buildProposal(l *listing.Listing, occ *listing.Occupancy, g dayGroup) (*proposal.Proposal, error) {
	adjustment := decimal.NewFromInt(int64(g.totalPct))
	factor := decimal.NewFromInt(1).Add(adjustment.Div(decimal.NewFromInt(100)))
	candidate := l.Price.Mul(factor).Round(2)

	clamped, clampEv := proposal.Clamp(l.PriceFloor, l.PriceCeiling, candidate)
	if clampEv != nil {
		metrics.ProposalClamps.WithLabelValues(clampEv.Bound).Inc()
	}

	risk, changePct, err := proposal.ClassifyRisk(l.Price, clamped)
	if err != nil {
		return nil, err
	}

	set := proposal.SignalSet{
		Occupancy: &proposal.OccupancyEvidence{
			Rate:          occ.Rate,
			BookedDays:    occ.BookedDays,
			TotalDays:     occ.TotalDays,
			HasData:       occ.HasData,
			AdjustmentPct: g.occupancyPct,
		},
		Events:             g.evidence,
		Clamp:              clampEv,
		TotalAdjustmentPct: g.totalPct,
	}

	p := &proposal.Proposal{
		ID:             uuid.New(),
		ListingID:      l.ID,
		DateRangeStart: g.start,
		DateRangeEnd:   g.end,
		CurrentPrice:   l.Price,
		ProposedPrice:  clamped,
		ChangePct:      changePct,
		RiskLevel:      risk,
		Status:         proposal.StatusPending,
		Reasoning:      s.reasoning(occ, g, clampEv),
		CreatedAt:      s.now(),
	}
	if err := p.SetSignals(set); err != nil {
		return nil, err
	}
	return p, nil
}

// reasoning renders a short human-readable explanation of the decision
func (s *Service) reasoning(occ *listing.Occupancy, g dayGroup, clampEv *proposal.ClampEvidence) string {
	var b strings.Builder

	if occ.HasData {
		fmt.Fprintf(&b, "Occupancy %.2f%% over last %d days", occ.Rate, occ.WindowDays)
	} else {
		b.WriteString("No occupancy data for trailing window")
	}
	if g.occupancyPct != 0 {
		fmt.Fprintf(&b, " (%+d%%)", g.occupancyPct)
	}

	if len(g.evidence) > 0 {
		names := make([]string, 0, len(g.evidence))
		for _, ev := range g.evidence {
			names = append(names, fmt.Sprintf("%s (+%d%%)", ev.Name, ev.SuggestedIncreasePct))
		}
		fmt.Fprintf(&b, "; events: %s", strings.Join(names, ", "))
	} else {
		b.WriteString("; no overlapping events")
	}

	fmt.Fprintf(&b, "; combined adjustment %+d%%", g.totalPct)

	if clampEv != nil {
		fmt.Fprintf(&b, "; candidate %s clamped to %s bound %s (by %s)",
			clampEv.CandidatePrice.StringFixed(2),
			clampEv.ClampedPrice.StringFixed(2),
			clampEv.Bound,
			clampEv.Amount.StringFixed(2))
	}

	return b.String()
}

// ListProposals returns proposals for a listing, optionally filtered by status
func (s *Service) ListProposals(ctx context.Context, listingID uuid.UUID, status proposal.Status) ([]*proposal.Proposal, error) {
	if listingID == uuid.Nil {
		return nil, errors.NewValidationError("listing_id", "must not be empty", listingID)
	}
	if status != "" && !status.Valid() {
		return nil, errors.NewValidationError("status", "unknown status", status)
	}
	return s.proposals.GetByListing(ctx, listingID, status)
}

// UpdateStatus transitions a proposal through its approval lifecycle
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, next proposal.Status) (*proposal.Proposal, error) {
	if id == uuid.Nil {
		return nil, errors.NewValidationError("id", "must not be empty", id)
	}

	p, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := p.TransitionTo(next, s.now()); err != nil {
		return nil, err
	}

	if err := s.proposals.Update(ctx, p); err != nil {
		return nil, err
	}

	s.log.Infof("Proposal %s transitioned to %s", p.ID, p.Status)
	return p, nil
}
