package event

import (
	"fmt"
	"strings"
)

// Category impact levels on a 1-5 scale. Unknown categories score as local
// events. The mapping is a fixed table, not a model call.
var categoryImpact = map[string]int{
	"religious":     5, // Ramadan, Eid
	"international": 5, // Expo, major conferences
	"sports":        4, // F1, golf tournaments
	"cultural":      4, // Shopping Festival, Food Festival
	"business":      3, // Trade shows, conferences
	"local":         2,
}

const defaultImpactLevel = 2

// Impact is the deterministic pricing impact assessment of one event
type Impact struct {
	EventName         string `json:"event_name"`
	ImpactLevel       int    `json:"impact_level"` // 1-5
	SuggestedIncrease int    `json:"suggested_increase"`
	Recommendation    string `json:"recommendation"`
	Reasoning         string `json:"reasoning"`
}

// ScoreImpact maps an event category to a demand-impact level and a suggested
// percentage price increase.
func ScoreImpact(name, category string) Impact {
	normalized := strings.ToLower(strings.TrimSpace(category))

	level, ok := categoryImpact[normalized]
	if !ok {
		level = defaultImpactLevel
	}

	increase := IncreaseForLevel(level)

	var recommendation string
	switch {
	case level >= 4:
		recommendation = "High impact event - significant price increase recommended"
	case level == 3:
		recommendation = "Medium impact event - moderate price increase"
	default:
		recommendation = "Low impact event - slight price adjustment"
	}

	label := normalized
	if label == "" {
		label = "uncategorized"
	}

	return Impact{
		EventName:         name,
		ImpactLevel:       level,
		SuggestedIncrease: increase,
		Recommendation:    recommendation,
		Reasoning:         fmt.Sprintf("%s event with impact level %d/5", capitalize(label), level),
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// IncreaseForLevel maps an impact level to the suggested percentage price
// increase: level >= 4 -> 25%, level 3 -> 15%, level <= 2 -> 5%.
func IncreaseForLevel(level int) int {
	switch {
	case level >= 4:
		return 25
	case level == 3:
		return 15
	default:
		return 5
	}
}

// TierForLevel collapses the 1-5 impact scale back to a signal tier.
func TierForLevel(level int) ImpactTier {
	switch {
	case level >= 4:
		return ImpactHigh
	case level == 3:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// KnownCategory reports whether category is in the scoring table.
func KnownCategory(category string) bool {
	_, ok := categoryImpact[strings.ToLower(strings.TrimSpace(category))]
	return ok
}

// ScoreTier maps a cached signal's impact tier onto the same 1-5 scale,
// used when the original category string is no longer available.
func ScoreTier(tier ImpactTier) int {
	switch tier {
	case ImpactHigh:
		return 4
	case ImpactLow:
		return 2
	default:
		return 3
	}
}
