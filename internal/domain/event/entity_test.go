package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oasis/pkg/errors"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func conf(v float64) *float64 {
	return &v
}

func TestOverlaps(t *testing.T) {
	s := &Signal{StartDate: day(10), EndDate: day(12)}

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"fully inside", day(10), day(12), true},
		{"straddles start", day(8), day(10), true},
		{"straddles end", day(12), day(14), true},
		{"touching start boundary", day(5), day(10), true},
		{"touching end boundary", day(12), day(20), true},
		{"single day inside", day(11), day(11), true},
		{"before", day(5), day(9), false},
		{"after", day(13), day(20), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Overlaps(tt.start, tt.end))
		})
	}
}

func TestNormalize(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	raw := RawEvent{
		Title:               "Dubai Shopping Festival",
		DateStart:           "2026-03-10",
		DateEnd:             "2026-03-20",
		Impact:              "High",
		Confidence:          conf(0.85),
		Description:         "City-wide retail festival",
		Source:              "web",
		SuggestedPremiumPct: 20,
	}

	sig, err := Normalize(raw, "Dubai", now)
	require.NoError(t, err)
	assert.Equal(t, "Dubai Shopping Festival", sig.Name)
	assert.Equal(t, "Dubai", sig.Location)
	assert.Equal(t, ImpactHigh, sig.ExpectedImpact)
	assert.Equal(t, 85, sig.Confidence)
	assert.Equal(t, 20, sig.SuggestedPremiumPct)
	assert.Equal(t, day(10), sig.StartDate)
	assert.Equal(t, day(20), sig.EndDate)
	assert.Equal(t, now, sig.FetchedAt)
}

func TestNormalize_UnknownImpactDefaultsToMedium(t *testing.T) {
	raw := RawEvent{Title: "Mystery", DateStart: "2026-03-10", DateEnd: "2026-03-10", Impact: "enormous"}

	sig, err := Normalize(raw, "Dubai", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ImpactMedium, sig.ExpectedImpact)
}

func TestNormalize_CategoryImpactIsScored(t *testing.T) {
	// sources sometimes label events with a category instead of a tier
	raw := RawEvent{Title: "Dubai World Cup", DateStart: "2026-03-28", DateEnd: "2026-03-28", Impact: "sports"}

	sig, err := Normalize(raw, "Dubai", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ImpactHigh, sig.ExpectedImpact)
	assert.Equal(t, 25, sig.SuggestedPremiumPct)
	assert.Contains(t, sig.Description, "impact level 4/5")

	raw.Impact = "business"
	raw.SuggestedPremiumPct = 12
	raw.Description = "Trade show"
	sig, err = Normalize(raw, "Dubai", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ImpactMedium, sig.ExpectedImpact)
	assert.Equal(t, 12, sig.SuggestedPremiumPct, "an explicit premium wins over the table")
	assert.Equal(t, "Trade show", sig.Description)
}

func TestNormalize_MissingConfidenceDefaultsToFifty(t *testing.T) {
	raw := RawEvent{Title: "No confidence", DateStart: "2026-03-10", DateEnd: "2026-03-10"}

	sig, err := Normalize(raw, "Dubai", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 50, sig.Confidence)
}

func TestNormalize_ClampsConfidence(t *testing.T) {
	raw := RawEvent{Title: "Over", DateStart: "2026-03-10", DateEnd: "2026-03-10", Confidence: conf(1.7)}
	sig, err := Normalize(raw, "Dubai", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 100, sig.Confidence)

	raw.Confidence = conf(-0.2)
	sig, err = Normalize(raw, "Dubai", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, sig.Confidence)
}

func TestNormalize_Rejections(t *testing.T) {
	now := time.Now()

	_, err := Normalize(RawEvent{Title: " ", DateStart: "2026-03-10", DateEnd: "2026-03-10"}, "Dubai", now)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = Normalize(RawEvent{Title: "Bad start", DateStart: "10/03/2026", DateEnd: "2026-03-10"}, "Dubai", now)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = Normalize(RawEvent{Title: "Bad end", DateStart: "2026-03-10", DateEnd: "soon"}, "Dubai", now)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)

	_, err = Normalize(RawEvent{Title: "Inverted", DateStart: "2026-03-12", DateEnd: "2026-03-10"}, "Dubai", now)
	assert.ErrorIs(t, err, errors.ErrInvalidDateRange)
}
