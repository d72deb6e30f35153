package marketsetup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"oasis/internal/adapters/config"
	"oasis/internal/adapters/discovery"
	"oasis/internal/domain/event"
	"oasis/internal/domain/listing"
	"oasis/internal/metrics"
	"oasis/pkg/errors"
	"oasis/pkg/logger"
)

// Status is a pipeline stage name emitted on the progress stream
type Status string

const (
	StatusChecking Status = "checking"
	StatusFetching Status = "fetching"
	StatusSaving   Status = "saving"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// ProgressEvent is one emission of the market setup stream. Progress is
// monotone within a run: 10, 30, 60, 75, 100.
type ProgressEvent struct {
	Status      Status          `json:"status"`
	Message     string          `json:"message"`
	Progress    int             `json:"progress"`
	EventsCount *int            `json:"events_count,omitempty"`
	Events      []*event.Signal `json:"events,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// Request identifies the listing and date range to set up
type Request struct {
	ListingID uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

// Locker de-duplicates concurrent fetches for the same market window.
// Locking is best-effort: a lock failure never fails the run.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// CompletionNotifier is told about finished runs. Best-effort.
type CompletionNotifier interface {
	MarketSetupCompleted(ctx context.Context, listingID uuid.UUID, location string, eventsCount int, fromCache bool) error
}

const (
	fetchLockTTL = 2 * time.Minute

	// how long a run waits on the cache while another run holds the fetch lock
	peerFillWait = 30 * time.Second
	peerFillPoll = 2 * time.Second
)

// Pipeline runs the cache-first market setup flow: check the event signal
// cache for the requested window, and only on a miss call the external
// discovery collaborator, normalize its records and persist the batch.
type Pipeline struct {
	listings listing.Repository
	events   event.Repository
	searcher discovery.Searcher
	locker   Locker
	notifier CompletionNotifier
	market   string
	lockWait time.Duration
	lockPoll time.Duration
	now      func() time.Time
	log      *logger.Logger
}

// NewPipeline creates a market setup pipeline. locker and notifier may be nil.
func NewPipeline(
	listings listing.Repository,
	events event.Repository,
	searcher discovery.Searcher,
	locker Locker,
	notifier CompletionNotifier,
	cfg config.PricingConfig,
) *Pipeline {
	return &Pipeline{
		listings: listings,
		events:   events,
		searcher: searcher,
		locker:   locker,
		notifier: notifier,
		market:   cfg.DefaultMarket,
		lockWait: peerFillWait,
		lockPoll: peerFillPoll,
		now:      time.Now,
		log:      logger.Get().With("component", "market_setup_pipeline"),
	}
}

// WithClock overrides the time source, used by tests
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Run executes the pipeline and streams progress on the returned channel.
// The channel always terminates: the final emission is either complete or
// error. Consumers may stop reading at any point; committed state is never
// affected by an abandoned stream.
func (p *Pipeline) Run(ctx context.Context, req Request) <-chan ProgressEvent {
	out := make(chan ProgressEvent, 8)
	go func() {
		defer close(out)
		p.run(ctx, req, out)
	}()
	return out
}

func (p *Pipeline) run(ctx context.Context, req Request, out chan<- ProgressEvent) {
	if req.ListingID == uuid.Nil {
		p.fail(ctx, out, "listing_id must not be empty")
		return
	}
	if req.EndDate.Before(req.StartDate) {
		p.fail(ctx, out, fmt.Sprintf("invalid date range %s..%s",
			req.StartDate.Format(event.DateLayout), req.EndDate.Format(event.DateLayout)))
		return
	}

	l, err := p.listings.GetByID(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			p.fail(ctx, out, fmt.Sprintf("listing %s not found", req.ListingID))
		} else {
			p.log.Errorf("Failed to load listing %s: %v", req.ListingID, err)
			p.fail(ctx, out, "failed to load listing")
		}
		return
	}

	location := l.City
	if location == "" {
		location = p.market
	}

	if !p.emit(ctx, out, ProgressEvent{
		Status:   StatusChecking,
		Message:  fmt.Sprintf("Checking cached events for %s", location),
		Progress: 10,
	}) {
		return
	}

	cached, err := p.events.GetByLocationAndRange(ctx, location, req.StartDate, req.EndDate)
	if err != nil {
		p.log.Errorf("Event cache lookup failed for %s: %v", location, err)
		p.fail(ctx, out, "failed to check event cache")
		return
	}

	if len(cached) > 0 {
		metrics.EventCacheLookups.WithLabelValues("hit").Inc()
		p.complete(ctx, out, l.ID, location, cached, true)
		return
	}
	metrics.EventCacheLookups.WithLabelValues("miss").Inc()

	if !p.emit(ctx, out, ProgressEvent{
		Status:   StatusFetching,
		Message:  fmt.Sprintf("Discovering events in %s", location),
		Progress: 30,
	}) {
		return
	}

	lockKey := fmt.Sprintf("market_setup:%s:%s:%s",
		location, req.StartDate.Format(event.DateLayout), req.EndDate.Format(event.DateLayout))
	if p.locker != nil {
		acquired, err := p.locker.TryLock(ctx, lockKey, fetchLockTTL)
		if err != nil {
			p.log.Warnf("Fetch lock unavailable for %s: %v", lockKey, err)
		} else if acquired {
			defer func() {
				if err := p.locker.Unlock(context.WithoutCancel(ctx), lockKey); err != nil {
					p.log.Warnf("Failed to release fetch lock %s: %v", lockKey, err)
				}
			}()
		} else {
			// Another run is already fetching this window. Wait for it to
			// commit its batch and serve from cache instead of fetching twice.
			if peer := p.awaitPeerFill(ctx, location, req); len(peer) > 0 {
				metrics.EventCacheLookups.WithLabelValues("hit").Inc()
				p.complete(ctx, out, l.ID, location, peer, true)
				return
			}
			p.log.Warnf("Fetch lock %s held elsewhere but cache stayed empty, fetching anyway", lockKey)
		}
	}

	result, err := p.searcher.SearchEvents(ctx, discovery.SearchRequest{
		ListingID: l.ID,
		Location:  location,
		StartDate: req.StartDate.Format(event.DateLayout),
		EndDate:   req.EndDate.Format(event.DateLayout),
	})
	if err != nil {
		p.log.Errorf("Event discovery failed for %s: %v", location, err)
		p.fail(ctx, out, "event discovery failed")
		return
	}
	if !result.Success {
		p.fail(ctx, out, fmt.Sprintf("event discovery failed: %s", result.Error))
		return
	}

	if !p.emit(ctx, out, ProgressEvent{
		Status:   StatusFetching,
		Message:  fmt.Sprintf("Found %d candidate events", len(result.Events)),
		Progress: 60,
	}) {
		return
	}

	signals := p.normalize(result.Events, location)

	if !p.emit(ctx, out, ProgressEvent{
		Status:   StatusSaving,
		Message:  fmt.Sprintf("Saving %d events", len(signals)),
		Progress: 75,
	}) {
		return
	}

	if len(signals) > 0 {
		saved, err := p.events.SaveBatch(ctx, signals)
		if err != nil {
			p.log.Errorf("Failed to save %d signals for %s: %v", len(signals), location, err)
			p.fail(ctx, out, "failed to save events")
			return
		}
		if saved < len(signals) {
			p.log.Infof("Saved %d of %d signals for %s (duplicates skipped)", saved, len(signals), location)
		}
	}

	p.complete(ctx, out, l.ID, location, signals, false)
}

// awaitPeerFill polls the event cache while a concurrent run holds the
// fetch lock for the same window. Returns the cached signals once the holder
// commits them, or nil when the wait expires.
func (p *Pipeline) awaitPeerFill(ctx context.Context, location string, req Request) []*event.Signal {
	deadline := time.NewTimer(p.lockWait)
	defer deadline.Stop()
	poll := time.NewTicker(p.lockPoll)
	defer poll.Stop()

	for {
		cached, err := p.events.GetByLocationAndRange(ctx, location, req.StartDate, req.EndDate)
		if err != nil {
			p.log.Warnf("Event cache re-check failed for %s: %v", location, err)
		} else if len(cached) > 0 {
			return cached
		}

		select {
		case <-ctx.Done():
			return nil
		case <-deadline.C:
			return nil
		case <-poll.C:
		}
	}
}

// normalize converts raw discovery records to signals, skipping records that
// fail validation individually
func (p *Pipeline) normalize(raw []event.RawEvent, location string) []*event.Signal {
	now := p.now()
	signals := make([]*event.Signal, 0, len(raw))
	for _, r := range raw {
		sig, err := event.Normalize(r, location, now)
		if err != nil {
			p.log.Warnf("Skipping event %q: %v", r.Title, err)
			continue
		}
		signals = append(signals, sig)
	}
	return signals
}

func (p *Pipeline) complete(ctx context.Context, out chan<- ProgressEvent, listingID uuid.UUID, location string, signals []*event.Signal, fromCache bool) {
	metrics.PipelineStages.WithLabelValues(string(StatusComplete)).Inc()

	msg := fmt.Sprintf("Market setup complete: %d events", len(signals))
	if fromCache {
		msg = fmt.Sprintf("Market setup complete: %d cached events", len(signals))
	}

	count := len(signals)
	p.emit(ctx, out, ProgressEvent{
		Status:      StatusComplete,
		Message:     msg,
		Progress:    100,
		EventsCount: &count,
		Events:      signals,
	})

	if p.notifier != nil {
		if err := p.notifier.MarketSetupCompleted(ctx, listingID, location, count, fromCache); err != nil {
			p.log.Warnf("Failed to publish market setup completion: %v", err)
		}
	}
}

func (p *Pipeline) fail(ctx context.Context, out chan<- ProgressEvent, msg string) {
	metrics.PipelineStages.WithLabelValues(string(StatusError)).Inc()
	p.emit(ctx, out, ProgressEvent{
		Status:   StatusError,
		Message:  "Market setup failed",
		Progress: 0,
		Error:    msg,
	})
}

// emit sends one progress event, giving up when the consumer is gone
func (p *Pipeline) emit(ctx context.Context, out chan<- ProgressEvent, ev ProgressEvent) bool {
	if ev.Status != StatusComplete && ev.Status != StatusError {
		metrics.PipelineStages.WithLabelValues(string(ev.Status)).Inc()
	}
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
