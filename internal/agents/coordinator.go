package agents

import (
	"context"
	"time"

	"github.com/google/uuid"

	"oasis/internal/domain/event"
	"oasis/internal/metrics"
	"oasis/internal/services/marketsetup"
	"oasis/internal/services/pricing"
	syncsvc "oasis/internal/services/sync"
	"oasis/pkg/errors"
	"oasis/pkg/logger"
)

// Operation names the fixed operations the coordinator can run
type Operation string

const (
	OpSyncCheck       Operation = "sync_check"
	OpEventSearch     Operation = "event_search"
	OpProposalCompose Operation = "proposal_compose"
)

// Coordinator runs the revenue-management operations as a fixed, statically
// typed set. Each operation is a direct call into the owning service; the
// coordinator adds uniform logging, metrics and error normalization.
type Coordinator struct {
	pricing  *pricing.Service
	pipeline *marketsetup.Pipeline
	sync     *syncsvc.Service
	log      *logger.Logger
}

// NewCoordinator creates a coordinator over the three services
func NewCoordinator(pricingSvc *pricing.Service, pipeline *marketsetup.Pipeline, syncSvc *syncsvc.Service) *Coordinator {
	return &Coordinator{
		pricing:  pricingSvc,
		pipeline: pipeline,
		sync:     syncSvc,
		log:      logger.Get().With("component", "coordinator"),
	}
}

// SyncCheck reports staleness of a listing's synced data
func (c *Coordinator) SyncCheck(ctx context.Context, listingID uuid.UUID) (*syncsvc.StalenessReport, error) {
	return run(c, ctx, OpSyncCheck, func(ctx context.Context) (*syncsvc.StalenessReport, error) {
		return c.sync.CheckStaleness(ctx, listingID)
	})
}

// EventSearchResult is the collected outcome of a full pipeline run
type EventSearchResult struct {
	Events      []*event.Signal `json:"events"`
	EventsCount int             `json:"events_count"`
	FromCache   bool            `json:"from_cache"`
}

// EventSearch runs the market setup pipeline to completion and collects the
// final state. Streaming consumers should use the pipeline directly.
func (c *Coordinator) EventSearch(ctx context.Context, req marketsetup.Request) (*EventSearchResult, error) {
	return run(c, ctx, OpEventSearch, func(ctx context.Context) (*EventSearchResult, error) {
		var final marketsetup.ProgressEvent
		sawFetch := false
		for ev := range c.pipeline.Run(ctx, req) {
			if ev.Status == marketsetup.StatusFetching {
				sawFetch = true
			}
			final = ev
		}

		switch final.Status {
		case marketsetup.StatusComplete:
			count := 0
			if final.EventsCount != nil {
				count = *final.EventsCount
			}
			return &EventSearchResult{
				Events:      final.Events,
				EventsCount: count,
				FromCache:   !sawFetch,
			}, nil
		case marketsetup.StatusError:
			return nil, errors.Wrap(errors.ErrInternal, final.Error)
		default:
			return nil, errors.Wrap(errors.ErrInternal, "pipeline stream ended without terminal state")
		}
	})
}

// ProposalCompose generates pricing proposals for a listing and date range
func (c *Coordinator) ProposalCompose(ctx context.Context, req pricing.GenerateRequest) (*pricing.GenerateResult, error) {
	return run(c, ctx, OpProposalCompose, func(ctx context.Context) (*pricing.GenerateResult, error) {
		return c.pricing.GenerateProposals(ctx, req)
	})
}

// run wraps one operation with logging, duration and outcome metrics
func run[T any](c *Coordinator, ctx context.Context, op Operation, fn func(ctx context.Context) (T, error)) (T, error) {
	start := time.Now()
	c.log.Debugf("Running operation %s", op)

	result, err := fn(ctx)

	metrics.ObserveDuration(metrics.OperationDuration, string(op), start)
	if err != nil {
		metrics.OperationRuns.WithLabelValues(string(op), "error").Inc()
		c.log.Errorf("Operation %s failed after %s: %v", op, time.Since(start).Round(time.Millisecond), err)
		return result, err
	}

	metrics.OperationRuns.WithLabelValues(string(op), "success").Inc()
	c.log.Infof("Operation %s completed in %s", op, time.Since(start).Round(time.Millisecond))
	return result, nil
}
