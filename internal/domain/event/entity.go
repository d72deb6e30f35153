package event

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"oasis/pkg/errors"
)

// ImpactTier is the qualitative demand impact of an event
type ImpactTier string

const (
	ImpactHigh   ImpactTier = "high"
	ImpactMedium ImpactTier = "medium"
	ImpactLow    ImpactTier = "low"
)

// Valid checks if the tier is valid
func (t ImpactTier) Valid() bool {
	return t == ImpactHigh || t == ImpactMedium || t == ImpactLow
}

// Signal is a cached record of an external demand-affecting event.
// Signals are immutable once created: the cache is authoritative for its
// (location, date range) and is never re-validated against the source.
type Signal struct {
	ID uuid.UUID `db:"id" json:"id"`

	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"` // StartDate <= EndDate
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Location  string    `db:"location" json:"location"`

	ExpectedImpact ImpactTier `db:"expected_impact" json:"expected_impact"`
	Confidence     int        `db:"confidence" json:"confidence"` // 0-100
	Description    string     `db:"description" json:"description"`
	Source         string     `db:"source" json:"source"`

	SuggestedPremiumPct int `db:"suggested_premium_pct" json:"suggested_premium_pct"`

	FetchedAt time.Time `db:"fetched_at" json:"fetched_at"`
}

// Overlaps reports whether the signal's date range intersects [start, end].
// Boundaries are inclusive: touching ranges overlap.
func (s *Signal) Overlaps(start, end time.Time) bool {
	return !s.StartDate.After(end) && !s.EndDate.Before(start)
}

// RawEvent is one record returned by the external event-discovery collaborator
type RawEvent struct {
	Title               string  `json:"title"`
	DateStart           string  `json:"date_start"` // YYYY-MM-DD
	DateEnd             string  `json:"date_end"`   // YYYY-MM-DD
	Impact              string   `json:"impact"`
	Confidence          *float64 `json:"confidence"` // 0-1, nil when the source omitted it
	Description         string  `json:"description"`
	Source              string  `json:"source"`
	SuggestedPremiumPct int     `json:"suggested_premium_pct"`
}

// DateLayout is the wire format for event dates
const DateLayout = "2006-01-02"

// Normalize converts a raw discovery record into a Signal for the given
// location. Confidence scales 0-1 to 0-100, defaulting to 50 when the source
// omitted it. An impact that names a known category (sports, cultural, ...)
// is scored through the category table; a missing or unrecognized impact
// defaults to medium. Records with malformed dates are rejected per record.
func Normalize(raw RawEvent, location string, now time.Time) (*Signal, error) {
	if strings.TrimSpace(raw.Title) == "" {
		return nil, errors.NewValidationError("title", "must not be empty", raw.Title)
	}

	start, err := time.Parse(DateLayout, raw.DateStart)
	if err != nil {
		return nil, errors.NewValidationError("date_start", "malformed date", raw.DateStart)
	}
	end, err := time.Parse(DateLayout, raw.DateEnd)
	if err != nil {
		return nil, errors.NewValidationError("date_end", "malformed date", raw.DateEnd)
	}
	if end.Before(start) {
		return nil, errors.Wrapf(errors.ErrInvalidDateRange, "event %q", raw.Title)
	}

	impact := ImpactTier(strings.ToLower(strings.TrimSpace(raw.Impact)))
	description := raw.Description
	suggested := raw.SuggestedPremiumPct
	if !impact.Valid() {
		if KnownCategory(raw.Impact) {
			scored := ScoreImpact(raw.Title, raw.Impact)
			impact = TierForLevel(scored.ImpactLevel)
			if suggested <= 0 {
				suggested = scored.SuggestedIncrease
			}
			if description == "" {
				description = scored.Reasoning
			}
		} else {
			impact = ImpactMedium
		}
	}

	confidence := 50
	if raw.Confidence != nil {
		confidence = int(*raw.Confidence * 100)
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 100 {
			confidence = 100
		}
	}

	return &Signal{
		ID:                  uuid.New(),
		Name:                raw.Title,
		StartDate:           start,
		EndDate:             end,
		Location:            location,
		ExpectedImpact:      impact,
		Confidence:          confidence,
		Description:         description,
		Source:              raw.Source,
		SuggestedPremiumPct: suggested,
		FetchedAt:           now,
	}, nil
}
