package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"oasis/internal/adapters/kafka"
	"oasis/internal/domain/proposal"
	"oasis/pkg/logger"
)

// BaseEvent carries fields common to all published events
type BaseEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewBaseEvent creates the common envelope for an event
func NewBaseEvent(eventType, source string) BaseEvent {
	return BaseEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		Source:     source,
		OccurredAt: time.Now().UTC(),
	}
}

// ProposalCreatedEvent announces a freshly generated pricing proposal
type ProposalCreatedEvent struct {
	BaseEvent
	ProposalID    string `json:"proposal_id"`
	ListingID     string `json:"listing_id"`
	DateStart     string `json:"date_start"`
	DateEnd       string `json:"date_end"`
	CurrentPrice  string `json:"current_price"`
	ProposedPrice string `json:"proposed_price"`
	ChangePct     int    `json:"change_pct"`
	RiskLevel     string `json:"risk_level"`
}

// MarketSetupCompletedEvent announces a finished market setup run
type MarketSetupCompletedEvent struct {
	BaseEvent
	ListingID   string `json:"listing_id"`
	Location    string `json:"location"`
	EventsCount int    `json:"events_count"`
	FromCache   bool   `json:"from_cache"`
}

// Publisher publishes domain events to Kafka as JSON
type Publisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(producer *kafka.Producer) *Publisher {
	return &Publisher{
		producer: producer,
		log:      logger.Get().With("component", "event_publisher"),
	}
}

const dateLayout = "2006-01-02"

// ProposalCreated publishes a proposal-created event keyed by listing so
// consumers see one listing's proposals in order
func (p *Publisher) ProposalCreated(ctx context.Context, pr *proposal.Proposal) error {
	event := ProposalCreatedEvent{
		BaseEvent:     NewBaseEvent("proposal.created", "pricing_service"),
		ProposalID:    pr.ID.String(),
		ListingID:     pr.ListingID.String(),
		DateStart:     pr.DateRangeStart.Format(dateLayout),
		DateEnd:       pr.DateRangeEnd.Format(dateLayout),
		CurrentPrice:  pr.CurrentPrice.StringFixed(2),
		ProposedPrice: pr.ProposedPrice.StringFixed(2),
		ChangePct:     pr.ChangePct,
		RiskLevel:     string(pr.RiskLevel),
	}
	return p.producer.Publish(ctx, kafka.TopicPricingEvents, pr.ListingID.String(), event)
}

// MarketSetupCompleted publishes a market-setup-completed event
func (p *Publisher) MarketSetupCompleted(ctx context.Context, listingID uuid.UUID, location string, eventsCount int, fromCache bool) error {
	event := MarketSetupCompletedEvent{
		BaseEvent:   NewBaseEvent("market_setup.completed", "market_setup_pipeline"),
		ListingID:   listingID.String(),
		Location:    location,
		EventsCount: eventsCount,
		FromCache:   fromCache,
	}
	return p.producer.Publish(ctx, kafka.TopicMarketEvents, listingID.String(), event)
}
