package pricing

import (
	"fmt"
	"strings"
	"time"

	"oasis/internal/domain/event"
	"oasis/internal/domain/listing"
	"oasis/internal/domain/proposal"
)

// dayGroup is a contiguous run of days sharing an identical contributing
// signal set, priced as one proposal
type dayGroup struct {
	start, end   time.Time
	occupancyPct int
	evidence     []proposal.EventEvidence
	totalPct     int
}

// occupancyAdjustment maps the trailing occupancy rate to a percentage
// adjustment. A listing with no calendar data contributes nothing.
func (s *Service) occupancyAdjustment(occ *listing.Occupancy) int {
	if !occ.HasData {
		return 0
	}
	switch {
	case occ.Rate >= 90:
		return 10
	case occ.Rate < 40:
		return -5
	default:
		return 0
	}
}

// eventIncrease derives the percentage increase one signal contributes.
// A positive cached premium wins; otherwise the impact tier decides.
func eventIncrease(sig *event.Signal) int {
	if sig.SuggestedPremiumPct > 0 {
		return sig.SuggestedPremiumPct
	}
	return event.IncreaseForLevel(event.ScoreTier(sig.ExpectedImpact))
}

// groupDays walks the requested range day by day, computes each day's
// contributing signals, and merges consecutive days with an identical
// signal key into one group. The combined adjustment of a group is the sum
// of the occupancy adjustment and every overlapping event's increase,
// capped to [-MaxDecreasePct, +MaxIncreasePct].
func (s *Service) groupDays(start, end time.Time, occ *listing.Occupancy, signals []*event.Signal) []dayGroup {
	occPct := s.occupancyAdjustment(occ)

	var groups []dayGroup
	var currentKey string

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		overlapping := make([]*event.Signal, 0, len(signals))
		for _, sig := range signals {
			if sig.Overlaps(day, day) {
				overlapping = append(overlapping, sig)
			}
		}

		key := dayKey(overlapping)
		if len(groups) > 0 && key == currentKey {
			groups[len(groups)-1].end = day
			continue
		}

		evidence := make([]proposal.EventEvidence, 0, len(overlapping))
		total := occPct
		for _, sig := range overlapping {
			inc := eventIncrease(sig)
			total += inc
			evidence = append(evidence, proposal.EventEvidence{
				Name:                 sig.Name,
				ImpactTier:           string(sig.ExpectedImpact),
				ImpactLevel:          event.ScoreTier(sig.ExpectedImpact),
				SuggestedIncreasePct: inc,
				Confidence:           sig.Confidence,
			})
		}

		groups = append(groups, dayGroup{
			start:        day,
			end:          day,
			occupancyPct: occPct,
			evidence:     evidence,
			totalPct:     s.capAdjustment(total),
		})
		currentKey = key
	}

	return groups
}

func (s *Service) capAdjustment(pct int) int {
	if pct > s.cfg.MaxIncreasePct {
		return s.cfg.MaxIncreasePct
	}
	if pct < -s.cfg.MaxDecreasePct {
		return -s.cfg.MaxDecreasePct
	}
	return pct
}

// dayKey identifies a day's signal set. Signals come from the repository in
// a stable order, so concatenated IDs are a sufficient identity.
func dayKey(overlapping []*event.Signal) string {
	if len(overlapping) == 0 {
		return ""
	}
	var b strings.Builder
	for _, sig := range overlapping {
		fmt.Fprintf(&b, "%s|", sig.ID)
	}
	return b.String()
}
