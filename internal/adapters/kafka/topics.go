package kafka

// Topic names for domain events
const (
	// TopicPricingEvents carries proposal lifecycle events
	TopicPricingEvents = "oasis.pricing.events"

	// TopicMarketEvents carries market setup pipeline events
	TopicMarketEvents = "oasis.market.events"
)
