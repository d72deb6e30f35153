package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Pricing metrics
	ProposalsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oasis_proposals_generated_total",
			Help: "Total number of pricing proposals generated",
		},
		[]string{"risk_level"},
	)

	ProposalGenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oasis_proposal_generation_duration_seconds",
			Help:    "Proposal generation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"status"}, // status: success|error
	)

	ProposalClamps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oasis_proposal_clamps_total",
			Help: "Total number of proposals whose candidate price was clamped",
		},
		[]string{"bound"}, // bound: floor|ceiling
	)

	// Market setup pipeline metrics
	PipelineStages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oasis_market_setup_stages_total",
			Help: "Total number of market setup stage transitions",
		},
		[]string{"stage"}, // checking|fetching|saving|complete|error
	)

	EventCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oasis_event_cache_lookups_total",
			Help: "Event signal cache lookups by outcome",
		},
		[]string{"result"}, // hit|miss
	)

	// Discovery collaborator metrics
	DiscoveryCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oasis_discovery_calls_total",
			Help: "Total calls to the external event discovery collaborator",
		},
		[]string{"status"}, // success|error
	)

	DiscoveryLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "oasis_discovery_latency_seconds",
			Help:    "External event discovery latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	// Coordinator metrics
	OperationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oasis_operation_runs_total",
			Help: "Total coordinator operation executions",
		},
		[]string{"operation", "status"}, // status: success|error
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oasis_operation_duration_seconds",
			Help:    "Coordinator operation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(
		ProposalsGenerated,
		ProposalGenerationDuration,
		ProposalClamps,
		PipelineStages,
		EventCacheLookups,
		DiscoveryCalls,
		DiscoveryLatency,
		OperationRuns,
		OperationDuration,
	)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDuration records a duration into a histogram vec with a label
func ObserveDuration(h *prometheus.HistogramVec, label string, start time.Time) {
	h.WithLabelValues(label).Observe(time.Since(start).Seconds())
}
