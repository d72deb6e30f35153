package proposal

import (
	"github.com/shopspring/decimal"
)

// Clamp bounds candidate into [floor, ceiling]. It never fails and always
// returns an in-range price. When clamping occurred the returned evidence is
// non-nil; callers that persist a clamped price must record it in the
// proposal's signals payload.
func Clamp(floor, ceiling, candidate decimal.Decimal) (decimal.Decimal, *ClampEvidence) {
	if candidate.LessThan(floor) {
		return floor, &ClampEvidence{
			CandidatePrice: candidate,
			ClampedPrice:   floor,
			Bound:          "floor",
			Amount:         floor.Sub(candidate),
		}
	}
	if candidate.GreaterThan(ceiling) {
		return ceiling, &ClampEvidence{
			CandidatePrice: candidate,
			ClampedPrice:   ceiling,
			Bound:          "ceiling",
			Amount:         candidate.Sub(ceiling),
		}
	}
	return candidate, nil
}
