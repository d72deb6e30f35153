package proposal

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"oasis/pkg/errors"
)

// Status represents proposal lifecycle state
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExecuted Status = "executed"
)

// Valid checks if status is valid
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected || s == StatusExecuted
}

// RiskLevel is the qualitative bucket derived from price change magnitude
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Proposal is a pricing recommendation for a listing over a date range.
// Invariant: ProposedPrice lies within the listing's [floor, ceiling] at
// creation time.
type Proposal struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ListingID uuid.UUID `db:"listing_id" json:"listing_id"`

	DateRangeStart time.Time `db:"date_range_start" json:"date_range_start"`
	DateRangeEnd   time.Time `db:"date_range_end" json:"date_range_end"`

	CurrentPrice  decimal.Decimal `db:"current_price" json:"current_price"`
	ProposedPrice decimal.Decimal `db:"proposed_price" json:"proposed_price"`
	ChangePct     int             `db:"change_pct" json:"change_pct"`

	RiskLevel RiskLevel `db:"risk_level" json:"risk_level"`
	Status    Status    `db:"status" json:"status"`

	Reasoning string          `db:"reasoning" json:"reasoning"`
	Signals   json.RawMessage `db:"signals" json:"signals,omitempty"`

	ExecutedAt *time.Time `db:"executed_at" json:"executed_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// SetSignals serializes the evidence payload onto the proposal
func (p *Proposal) SetSignals(set SignalSet) error {
	data, err := json.Marshal(set)
	if err != nil {
		return errors.Wrap(err, "failed to marshal signals")
	}
	p.Signals = data
	return nil
}

// ParseSignals deserializes the evidence payload
func (p *Proposal) ParseSignals() (*SignalSet, error) {
	var set SignalSet
	if len(p.Signals) == 0 {
		return &set, nil
	}
	if err := json.Unmarshal(p.Signals, &set); err != nil {
		return nil, errors.Wrap(err, "failed to parse signals")
	}
	return &set, nil
}

// TransitionTo advances the proposal status. Legal transitions:
// pending -> approved | rejected, approved -> executed. Executing stamps
// ExecutedAt.
func (p *Proposal) TransitionTo(next Status, now time.Time) error {
	if !next.Valid() {
		return errors.NewValidationError("status", "unknown status", next)
	}

	legal := false
	switch p.Status {
	case StatusPending:
		legal = next == StatusApproved || next == StatusRejected
	case StatusApproved:
		legal = next == StatusExecuted
	}
	if !legal {
		return errors.Wrapf(errors.ErrInvalidTransition, "%s -> %s", p.Status, next)
	}

	p.Status = next
	if next == StatusExecuted {
		p.ExecutedAt = &now
	}
	return nil
}

// SignalSet is the structured evidence bundle attached to a proposal. It
// carries enough to reconstruct the pricing decision without re-querying.
type SignalSet struct {
	Occupancy          *OccupancyEvidence   `json:"occupancy,omitempty"`
	Events             []EventEvidence      `json:"events,omitempty"`
	Clamp              *ClampEvidence       `json:"clamp,omitempty"`
	Seasonality        *SeasonalityEvidence `json:"seasonality,omitempty"`
	TotalAdjustmentPct int                  `json:"total_adjustment_pct"`
}

// OccupancyEvidence records the occupancy signal used in a proposal
type OccupancyEvidence struct {
	Rate          float64 `json:"rate"`
	BookedDays    int     `json:"booked_days"`
	TotalDays     int     `json:"total_days"`
	HasData       bool    `json:"has_data"`
	AdjustmentPct int     `json:"adjustment_pct"`
}

// EventEvidence records one contributing event signal
type EventEvidence struct {
	Name                 string `json:"name"`
	ImpactTier           string `json:"impact_tier"`
	ImpactLevel          int    `json:"impact_level"`
	SuggestedIncreasePct int    `json:"suggested_increase_pct"`
	Confidence           int    `json:"confidence"`
}

// ClampEvidence records that the candidate price was clamped into the
// listing's bounds, and by how much. Its presence is mandatory whenever a
// clamp occurred: a clamped price must never be logged as proposed silently.
type ClampEvidence struct {
	CandidatePrice decimal.Decimal `json:"candidate_price"`
	ClampedPrice   decimal.Decimal `json:"clamped_price"`
	Bound          string          `json:"bound"` // "floor" or "ceiling"
	Amount         decimal.Decimal `json:"amount"`
}

// SeasonalityEvidence is a placeholder for seasonal adjustment signals
type SeasonalityEvidence struct {
	Label         string `json:"label"`
	AdjustmentPct int    `json:"adjustment_pct"`
}
